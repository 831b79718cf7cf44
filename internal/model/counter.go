package model

import (
	"encoding/json"
	"sort"
)

// Counter is a token frequency table plus the number of Update calls that
// produced it (one call per corpus record, so UpdateCalls is the record
// count behind the frequencies).
type Counter struct {
	counts  map[string]int64
	updates int64
}

// TokenCount is one (label, frequency) entry of a Counter.
type TokenCount struct {
	Label string
	Count int64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// Update credits every token with one occurrence and records one update call.
func (c *Counter) Update(tokens []string) {
	for _, t := range tokens {
		c.counts[t]++
	}
	c.updates++
}

// Add credits label with n occurrences without recording an update call.
func (c *Counter) Add(label string, n int64) {
	c.counts[label] += n
}

// Set forces label's frequency to n.
func (c *Counter) Set(label string, n int64) {
	c.counts[label] = n
}

// Absorb folds other's counts and update calls into c.
func (c *Counter) Absorb(other *Counter) {
	for label, n := range other.counts {
		c.counts[label] += n
	}
	c.updates += other.updates
}

// Count returns label's frequency, zero when absent.
func (c *Counter) Count(label string) int64 {
	return c.counts[label]
}

// Each calls fn for every (label, count) pair in unspecified order.
func (c *Counter) Each(fn func(label string, count int64)) {
	for label, count := range c.counts {
		fn(label, count)
	}
}

// Len returns the number of distinct tokens.
func (c *Counter) Len() int {
	return len(c.counts)
}

// UpdateCalls returns the number of Update invocations behind the counts.
func (c *Counter) UpdateCalls() int64 {
	return c.updates
}

// SetUpdateCalls overrides the update-call count, used when counts are
// rebuilt from per-word credits but still describe the original corpus.
func (c *Counter) SetUpdateCalls(n int64) {
	c.updates = n
}

// MostCommon returns the n highest-frequency tokens. Ties break by label so
// the order is reproducible across runs; n <= 0 returns every token.
func (c *Counter) MostCommon(n int) []TokenCount {
	items := make([]TokenCount, 0, len(c.counts))
	for label, count := range c.counts {
		items = append(items, TokenCount{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

// Top returns a new Counter holding only the n highest-frequency tokens,
// carrying the update-call count over unchanged.
func (c *Counter) Top(n int) *Counter {
	top := NewCounter()
	top.updates = c.updates
	for _, tc := range c.MostCommon(n) {
		top.counts[tc.Label] = tc.Count
	}
	return top
}

type counterJSON struct {
	Dict        map[string]int64 `json:"dict"`
	UpdateCalls int64            `json:"update_calls"`
}

// MarshalJSON renders the persisted form {"dict": …, "update_calls": …}.
func (c *Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(counterJSON{Dict: c.counts, UpdateCalls: c.updates})
}

// UnmarshalJSON parses the persisted form.
func (c *Counter) UnmarshalJSON(data []byte) error {
	var raw counterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.counts = raw.Dict
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	c.updates = raw.UpdateCalls
	return nil
}
