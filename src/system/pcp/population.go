package pcp

import "sync"

// ConcurrentPopulationContext makes Add safe for concurrent use while it is
// open. Only one context may be open per index at a time.
//
//	pop := idx.NewConcurrentPopulationContext()
//	defer pop.Close()
type ConcurrentPopulationContext struct {
	index *Index
	mu    sync.Mutex
}

// NewConcurrentPopulationContext opens a population scope on the index. It
// panics with a *CodingError if another scope is already open.
func (idx *Index) NewConcurrentPopulationContext() *ConcurrentPopulationContext {
	ctx := &ConcurrentPopulationContext{index: idx}
	if !idx.population.CompareAndSwap(nil, ctx) {
		idx.codingError("NewConcurrentPopulationContext", "a concurrent population context is already open")
	}
	return ctx
}

// Close ends the scope. Closing twice is harmless.
func (c *ConcurrentPopulationContext) Close() {
	c.index.population.CompareAndSwap(c, nil)
}

// lock and unlock are no-ops on a nil context so Add can call them
// unconditionally outside a population scope.
func (c *ConcurrentPopulationContext) lock() {
	if c != nil {
		c.mu.Lock()
	}
}

func (c *ConcurrentPopulationContext) unlock() {
	if c != nil {
		c.mu.Unlock()
	}
}
