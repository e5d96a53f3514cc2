package watch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(batch []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, batch)
}

func (b *batches) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestBatcher_CoalescesRapidPaths(t *testing.T) {
	var rec batches
	b := NewBatcher(50*time.Millisecond, rec.add)
	defer b.Stop()

	for _, p := range []string{"sections/b.liquid", "snippets/a.liquid", "sections/b.liquid"} {
		b.Add(p)
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for the quiet period to expire
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, [][]string{{"sections/b.liquid", "snippets/a.liquid"}}, rec.all())
}

func TestBatcher_SeparateBatchesAfterQuietPeriod(t *testing.T) {
	var rec batches
	b := NewBatcher(30*time.Millisecond, rec.add)
	defer b.Stop()

	b.Add("layout/theme.liquid")
	time.Sleep(120 * time.Millisecond)
	b.Add("config/settings_data.json")
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, [][]string{{"layout/theme.liquid"}, {"config/settings_data.json"}}, rec.all())
}

func TestBatcher_Stop(t *testing.T) {
	var rec batches
	b := NewBatcher(50*time.Millisecond, rec.add)

	b.Add("sections/a.liquid")
	b.Stop()
	b.Add("sections/b.liquid")

	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, rec.all())
}
