package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	haven "github.com/Veronica1088/clarity-skill-haven"
	"github.com/Veronica1088/clarity-skill-haven/cli"
	"github.com/Veronica1088/clarity-skill-haven/contracts/skillhaven"
	"github.com/Veronica1088/clarity-skill-haven/core/access"
	"github.com/Veronica1088/clarity-skill-haven/core/store"
	"github.com/Veronica1088/clarity-skill-haven/core/store/kv"
	"github.com/Veronica1088/clarity-skill-haven/crypto/ed25519"
	"github.com/Veronica1088/clarity-skill-haven/ledger"
	"github.com/Veronica1088/clarity-skill-haven/ledger/scenario"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/xerrors"
)

type runAction struct {
	out io.Writer
}

// Execute plays the scenario and optionally prints the metrics.
func (a runAction) Execute(flags cli.Flags) error {
	s, err := scenario.Load(flags.Path("scenario"))
	if err != nil {
		return xerrors.Errorf("failed to load scenario: %v", err)
	}

	opts := []ledger.Option{}

	if flags.Path("db") != "" {
		db, err := kv.New(flags.Path("db"))
		if err != nil {
			return xerrors.Errorf("failed to open db: %v", err)
		}

		defer db.Close()

		opts = append(opts, ledger.WithDB(db))
	}

	devnet, err := ledger.NewDevnet(s.Wallets, s.Balance, opts...)
	if err != nil {
		return xerrors.Errorf("failed to create devnet: %v", err)
	}

	_, err = scenario.Run(devnet, s, a.out)
	if err != nil {
		return xerrors.Errorf("scenario failed: %v", err)
	}

	fmt.Fprintf(a.out, "height %d, root %x\n", devnet.Height(), devnet.Root())

	if !flags.Bool("metrics") {
		return nil
	}

	registry := prometheus.NewRegistry()

	for _, c := range haven.PromCollectors {
		err = registry.Register(c)
		if err != nil {
			return xerrors.Errorf("failed to register: %v", err)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		return xerrors.Errorf("failed to gather metrics: %v", err)
	}

	return writeMetrics(a.out, families)
}

func writeMetrics(out io.Writer, families []*dto.MetricFamily) error {
	for _, family := range families {
		_, err := expfmt.MetricFamilyToText(out, family)
		if err != nil {
			return xerrors.Errorf("failed to write metric: %v", err)
		}
	}

	return nil
}

type courseAction struct {
	out io.Writer
}

// Execute prints the course, or the number of courses when the identifier is
// zero.
func (a courseAction) Execute(flags cli.Flags) error {
	return readChain(flags.Path("db"), func(r store.Readable) error {
		id := flags.Int("id")
		if id < 0 {
			return xerrors.Errorf("invalid course id %d", id)
		}

		if id == 0 {
			count, err := skillhaven.CourseCount(r)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%d course(s)\n", count)

			return nil
		}

		course, err := skillhaven.GetCourse(r, uint64(id))
		if err != nil {
			return err
		}

		return printJSON(a.out, course)
	})
}

type enrollmentAction struct {
	out io.Writer
}

// Execute prints the enrollment of the student to the course.
func (a enrollmentAction) Execute(flags cli.Flags) error {
	student, err := parseIdentity(flags.String("student"))
	if err != nil {
		return xerrors.Errorf("invalid student: %v", err)
	}

	id := flags.Int("id")
	if id <= 0 {
		return xerrors.Errorf("invalid course id %d", id)
	}

	return readChain(flags.Path("db"), func(r store.Readable) error {
		enrollment, err := skillhaven.GetEnrollment(r, student, uint64(id))
		if err != nil {
			return err
		}

		return printJSON(a.out, enrollment)
	})
}

// parseIdentity returns the identity of the text representation of a public
// key, or the identity of the wallet of a development network.
func parseIdentity(text string) (access.Identity, error) {
	if strings.Contains(text, ":") {
		return ed25519.NewPublicKeyFactory().IdentityOf([]byte(text))
	}

	return ledger.WalletIdentity(text), nil
}

func readChain(path string, fn func(store.Readable) error) error {
	db, err := kv.New(path)
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	chain, err := ledger.NewChain(ledger.WithDB(db))
	if err != nil {
		return xerrors.Errorf("failed to load chain: %v", err)
	}

	return chain.Read(fn)
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	fmt.Fprintln(out, string(data))

	return nil
}
