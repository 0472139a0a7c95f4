package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs hands out ids of the form "<prefix>-0001", "<prefix>-0002", ...
// It satisfies store.IDGenerator.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs returns a generator for prefix. An empty prefix uses "stmt".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "stmt"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
