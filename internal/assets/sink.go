package assets

import (
	"sort"
	"sync"

	"github.com/Faultbox/midgard-shapebake/pkg/anim"
)

// Changes collects what a bake modified so the caller knows what to save.
type Changes struct {
	mu    sync.Mutex
	dirty map[string]bool
	pairs []anim.ClipPair
}

// NewChanges creates an empty change set.
func NewChanges() *Changes {
	return &Changes{dirty: make(map[string]bool)}
}

// RecordOverrides remembers clip pairs installed by the bake.
func (c *Changes) RecordOverrides(pairs []anim.ClipPair) {
	c.mu.Lock()
	c.pairs = append(c.pairs, pairs...)
	c.mu.Unlock()
}

// MarkDirty flags an asset as modified.
func (c *Changes) MarkDirty(asset string) {
	c.mu.Lock()
	c.dirty[asset] = true
	c.mu.Unlock()
}

// Dirty returns the modified assets in sorted order.
func (c *Changes) Dirty() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.dirty))
	for a := range c.dirty {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Pairs returns the recorded clip pairs.
func (c *Changes) Pairs() []anim.ClipPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]anim.ClipPair(nil), c.pairs...)
}
