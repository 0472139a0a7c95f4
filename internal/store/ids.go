package store

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces journal entry ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids. It is stateless and
// safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids in order and panics once they
// are exhausted.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator returns a generator for ids.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Clock hands out strictly increasing sequence numbers.
type Clock interface {
	Next() int64
}

// logicalClock is the default Clock, resumed from the journal's last seq.
type logicalClock struct {
	seq atomic.Int64
}

func newClockAt(start int64) *logicalClock {
	c := &logicalClock{}
	c.seq.Store(start)
	return c
}

func (c *logicalClock) Next() int64 {
	return c.seq.Add(1)
}
