// Package ledger implements a single node chain that executes the calls to the
// course marketplace.
//
// The chain holds the state in memory and mines a block for every batch of
// transactions. The transactions of a block are executed one after the other
// and each of them is either fully applied or discarded. The chain can
// optionally persist the state and the blocks into a key/value database so
// that it can be reloaded later.
package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sync"

	haven "github.com/Veronica1088/clarity-skill-haven"
	"github.com/Veronica1088/clarity-skill-haven/contracts/coin"
	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/execution"
	"github.com/Veronica1088/clarity-skill-haven/core/execution/native"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/kv"
	"github.com/Veronica1088/clarity-skill-haven/core/store/mem"
	"github.com/Veronica1088/clarity-skill-haven/core/txn"
	"github.com/Veronica1088/clarity-skill-haven/core/validation"
	"github.com/Veronica1088/clarity-skill-haven/core/validation/simple"
	"github.com/Veronica1088/clarity-skill-haven/crypto/ed25519"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

var (
	promHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skillhaven_ledger_height",
		Help: "number of blocks mined by the chain",
	})

	promBlockSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skillhaven_ledger_block_transactions",
		Help:    "number of transactions per block",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
)

func init() {
	haven.PromCollectors = append(haven.PromCollectors, promHeight, promBlockSize)
}

var (
	stateBucket  = []byte("state")
	blocksBucket = []byte("blocks")
)

// errDiscard is used to throw away the staged snapshot of a query.
var errDiscard = xerrors.New("discard")

// Allocation is an initial balance of an account.
type Allocation struct {
	Account access.Identity
	Amount  uint64
}

type config struct {
	db       kv.DB
	genesis  []Allocation
	identFac access.IdentityFactory
	logger   zerolog.Logger
}

// Option is the type of options to create a chain.
type Option func(*config)

// WithDB is an option to persist the state and the blocks into the database.
// An existing state is loaded when the chain is created.
func WithDB(db kv.DB) Option {
	return func(cfg *config) {
		cfg.db = db
	}
}

// WithGenesis is an option to set the initial balances of the accounts. It is
// ignored when the chain is loaded from a database that already has blocks.
func WithGenesis(allocs ...Allocation) Option {
	return func(cfg *config) {
		cfg.genesis = append(cfg.genesis, allocs...)
	}
}

// WithIdentityFactory is an option to set the factory that parses the
// identities stored in the state. It defaults to Ed25519 public keys.
func WithIdentityFactory(f access.IdentityFactory) Option {
	return func(cfg *config) {
		cfg.identFac = f
	}
}

// WithLogger is an option to set the logger of the chain.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Chain is a single writer ledger. Blocks are mined one at a time so that the
// execution of the transactions is serialized.
type Chain struct {
	sync.Mutex

	trie       *mem.Trie
	height     uint64
	exec       *native.Service
	validation validation.Service
	db         kv.DB
	watcher    *watcher
	logger     zerolog.Logger
}

// NewChain creates a new chain with the coin and the marketplace contracts
// deployed.
func NewChain(opts ...Option) (*Chain, error) {
	cfg := config{
		identFac: ed25519.NewPublicKeyFactory(),
		logger:   haven.Logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	exec := native.NewExecution()
	coin.RegisterContract(exec, coin.NewContract(cfg.identFac))
	skillhaven.RegisterContract(exec, skillhaven.NewContract(cfg.identFac))

	chain := &Chain{
		trie:       mem.NewTrie(),
		exec:       exec,
		validation: simple.NewService(exec),
		db:         cfg.db,
		watcher:    newWatcher(),
		logger:     cfg.logger.With().Stringer("chain", xid.New()).Logger(),
	}

	loaded, err := chain.load()
	if err != nil {
		return nil, xerrors.Errorf("failed to load: %v", err)
	}

	if !loaded {
		err = chain.init(cfg.genesis)
		if err != nil {
			return nil, xerrors.Errorf("genesis failed: %v", err)
		}
	}

	promHeight.Set(float64(chain.height))

	chain.logger.Info().
		Uint64("height", chain.height).
		Bool("loaded", loaded).
		Msg("chain ready")

	return chain, nil
}

// Height returns the number of blocks mined since the genesis.
func (c *Chain) Height() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.height
}

// Root returns the fingerprint of the current state.
func (c *Chain) Root() []byte {
	c.Lock()
	defer c.Unlock()

	return c.trie.GetRoot()
}

// Read calls the function with a read-only view of the current state.
func (c *Chain) Read(fn func(store.Readable) error) error {
	c.Lock()
	defer c.Unlock()

	return fn(c.trie)
}

// Query executes the transaction on the current state and returns the result
// without applying any change.
func (c *Chain) Query(tx txn.Transaction) (execution.Result, error) {
	c.Lock()
	defer c.Unlock()

	var res execution.Result

	_, err := c.trie.Stage(func(snap store.Snapshot) error {
		var err error
		res, err = c.exec.Execute(snap, execution.Step{Current: tx})
		if err != nil {
			return err
		}

		return errDiscard
	})

	if err != errDiscard {
		return res, xerrors.Errorf("failed to execute: %v", err)
	}

	return res, nil
}

// MineBlock executes the transactions in order and appends a block with their
// receipts. A rejected transaction does not prevent the others to be applied.
func (c *Chain) MineBlock(txs ...txn.Transaction) (Block, error) {
	c.Lock()
	defer c.Unlock()

	data, next, err := c.validation.Validate(c.trie, txs)
	if err != nil {
		return Block{}, xerrors.Errorf("failed to validate: %v", err)
	}

	trie, ok := next.(*mem.Trie)
	if !ok {
		return Block{}, xerrors.Errorf("invalid trie type '%T'", next)
	}

	trie = trie.Collapse()

	block := Block{
		Index:    c.height + 1,
		Root:     hex.EncodeToString(trie.GetRoot()),
		Receipts: make([]Receipt, 0, len(txs)),
	}

	for _, res := range data.GetTransactionResults() {
		receipt, err := newReceipt(res)
		if err != nil {
			return Block{}, xerrors.Errorf("failed to make receipt: %v", err)
		}

		block.Receipts = append(block.Receipts, receipt)
	}

	err = c.persist(trie, &block)
	if err != nil {
		return Block{}, xerrors.Errorf("failed to persist block: %v", err)
	}

	c.trie = trie
	c.height = block.Index

	promHeight.Set(float64(c.height))
	promBlockSize.Observe(float64(len(txs)))

	c.logger.Debug().
		Uint64("index", block.Index).
		Int("txs", len(txs)).
		Int("rejected", block.Rejected()).
		Str("root", block.Root).
		Msg("block mined")

	missed := c.watcher.notify(block)
	if missed > 0 {
		c.logger.Warn().
			Uint64("index", block.Index).
			Int("subscribers", missed).
			Msg("block not delivered to slow subscribers")
	}

	return block, nil
}

// Blocks returns the blocks stored in the database in order. It returns nil
// when the chain is not persisted.
func (c *Chain) Blocks() ([]Block, error) {
	if c.db == nil {
		return nil, nil
	}

	var blocks []Block

	err := c.db.View(func(tx kv.ReadableTx) error {
		bucket := tx.GetBucket(blocksBucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(key, value []byte) error {
			var block Block

			err := json.Unmarshal(value, &block)
			if err != nil {
				return xerrors.Errorf("malformed block: %v", err)
			}

			blocks = append(blocks, block)

			return nil
		})
	})

	if err != nil {
		return nil, xerrors.Errorf("failed to read blocks: %v", err)
	}

	return blocks, nil
}

func (c *Chain) init(allocs []Allocation) error {
	for _, alloc := range allocs {
		err := coin.Mint(c.trie, alloc.Account, alloc.Amount)
		if err != nil {
			return xerrors.Errorf("failed to mint for %v: %v", alloc.Account, err)
		}
	}

	return c.persist(c.trie, nil)
}

// load reads the state and the height from the database if any. It returns
// true when a state has been found.
func (c *Chain) load() (bool, error) {
	if c.db == nil {
		return false, nil
	}

	found := false

	err := c.db.View(func(tx kv.ReadableTx) error {
		state := tx.GetBucket(stateBucket)
		if state == nil {
			return nil
		}

		found = true

		err := state.ForEach(func(key, value []byte) error {
			return c.trie.Set(key, value)
		})
		if err != nil {
			return xerrors.Errorf("while reading state: %v", err)
		}

		blocks := tx.GetBucket(blocksBucket)
		if blocks == nil {
			return nil
		}

		return blocks.ForEach(func(key, value []byte) error {
			c.height = binary.BigEndian.Uint64(key)
			return nil
		})
	})

	if err != nil {
		return false, err
	}

	return found, nil
}

// persist writes the state and the block in a single database transaction.
// The block is nil for the genesis.
func (c *Chain) persist(trie *mem.Trie, block *Block) error {
	if c.db == nil {
		return nil
	}

	return c.db.Update(func(tx kv.WritableTx) error {
		state, err := tx.GetBucketOrCreate(stateBucket)
		if err != nil {
			return xerrors.Errorf("bucket failed: %v", err)
		}

		stale := [][]byte{}
		err = state.ForEach(func(key, value []byte) error {
			current, err := trie.Get(key)
			if err != nil {
				return xerrors.Errorf("while reading trie: %v", err)
			}

			if current == nil {
				stale = append(stale, append([]byte{}, key...))
			}

			return nil
		})
		if err != nil {
			return xerrors.Errorf("while scanning state: %v", err)
		}

		for _, key := range stale {
			err = state.Delete(key)
			if err != nil {
				return xerrors.Errorf("while deleting: %v", err)
			}
		}

		err = trie.ForEach(state.Set)
		if err != nil {
			return xerrors.Errorf("while writing state: %v", err)
		}

		if block == nil {
			return nil
		}

		blocks, err := tx.GetBucketOrCreate(blocksBucket)
		if err != nil {
			return xerrors.Errorf("bucket failed: %v", err)
		}

		data, err := json.Marshal(block)
		if err != nil {
			return xerrors.Errorf("failed to encode block: %v", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, block.Index)

		err = blocks.Set(key, data)
		if err != nil {
			return xerrors.Errorf("while writing block: %v", err)
		}

		return nil
	})
}
