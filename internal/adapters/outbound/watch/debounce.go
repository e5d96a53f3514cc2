// Package watch re-runs work when theme files change.
package watch

import (
	"sort"
	"sync"
	"time"
)

// Batcher collects changed paths and hands them over as one sorted batch
// once no new path has arrived for the quiet period.
type Batcher struct {
	quiet   time.Duration
	deliver func([]string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool
	stopped bool
}

// NewBatcher returns a Batcher that calls deliver with each settled batch.
func NewBatcher(quiet time.Duration, deliver func([]string)) *Batcher {
	return &Batcher{
		quiet:   quiet,
		deliver: deliver,
		pending: make(map[string]bool),
	}
}

// Add records path and restarts the quiet period. Repeated paths are
// delivered once.
func (b *Batcher) Add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.pending[path] = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.flush)
}

func (b *Batcher) flush() {
	b.mu.Lock()
	if b.stopped || len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(b.pending))
	for p := range b.pending {
		batch = append(batch, p)
	}
	b.pending = make(map[string]bool)
	b.mu.Unlock()

	sort.Strings(batch)
	b.deliver(batch)
}

// Stop drops the pending batch and ignores later paths.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	b.pending = make(map[string]bool)
	if b.timer != nil {
		b.timer.Stop()
	}
}
