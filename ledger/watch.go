package ledger

import (
	"context"
	"sync"
)

const watchBufferSize = 100

// watcher notifies the mined blocks to the registered channels.
type watcher struct {
	sync.RWMutex

	observers map[chan Block]struct{}
}

func newWatcher() *watcher {
	return &watcher{
		observers: make(map[chan Block]struct{}),
	}
}

func (w *watcher) add(ch chan Block) {
	w.Lock()
	w.observers[ch] = struct{}{}
	w.Unlock()
}

func (w *watcher) remove(ch chan Block) {
	w.Lock()
	delete(w.observers, ch)
	w.Unlock()
}

// notify sends the block to every observer without waiting. An observer with a
// full buffer misses the block. It returns the number of observers that missed
// it.
func (w *watcher) notify(block Block) int {
	w.RLock()
	defer w.RUnlock()

	missed := 0

	for ch := range w.observers {
		select {
		case ch <- block:
		default:
			missed++
		}
	}

	return missed
}

// Watch returns a channel populated with the blocks mined after the call. The
// channel is closed when the context is done. A subscriber that does not keep
// up with the chain misses the blocks mined while its buffer is full.
func (c *Chain) Watch(ctx context.Context) <-chan Block {
	ch := make(chan Block, watchBufferSize)

	c.watcher.add(ch)

	go func() {
		<-ctx.Done()
		c.watcher.remove(ch)
		close(ch)
	}()

	return ch
}
