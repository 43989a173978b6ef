package store

import (
	"sort"
	"sync"
)

// PageCount pairs a page with its visit count.
type PageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// PageCounter tracks per-page visit counts. Counts are incremented on
// pageview events only, never decremented, and persist until Reset.
type PageCounter struct {
	mu     sync.RWMutex
	counts map[string]int
	order  []string // pages in first-counted order, for stable tie-breaking
}

func NewPageCounter() *PageCounter {
	return &PageCounter{counts: make(map[string]int)}
}

func (c *PageCounter) Increment(page string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counts[page]; !ok {
		c.order = append(c.order, page)
	}
	c.counts[page]++
}

func (c *PageCounter) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.counts))
	for page, n := range c.counts {
		out[page] = n
	}
	return out
}

// Top returns up to n pages sorted by count descending. Pages with equal
// counts keep their first-counted order.
func (c *PageCounter) Top(n int) []PageCount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PageCount, 0, len(c.order))
	for _, page := range c.order {
		out = append(out, PageCount{Page: page, Count: c.counts[page]})
	}
	// Stable sort keeps the first-counted order among equal counts.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func (c *PageCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
	c.order = nil
}
