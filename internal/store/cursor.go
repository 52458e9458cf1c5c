package store

import "sync"

// Cursor hands out previously recorded interactions in storage order and
// enforces the replay cap. Once Next reports exhaustion it keeps reporting
// exhaustion for the rest of the session; there is no retroactive replay.
type Cursor struct {
	mu        sync.Mutex
	available []Interaction
	limit     int
	consumed  int
}

// NewCursor builds a cursor over the loaded interactions. A negative limit
// means "replay everything available"; a limit above the number of available
// interactions is clamped.
func NewCursor(available []Interaction, limit int) *Cursor {
	if limit < 0 || limit > len(available) {
		limit = len(available)
	}
	return &Cursor{available: available, limit: limit}
}

// Next returns the next unconsumed interaction, or false once the replay cap
// or the available records are exhausted. This is the sole replay-vs-live
// decision point; the read-and-increment is a single critical section.
func (c *Cursor) Next() (Interaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed >= c.limit {
		return Interaction{}, false
	}
	it := c.available[c.consumed]
	c.consumed++
	return it, true
}

// Consumed returns how many interactions have been served so far.
func (c *Cursor) Consumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed
}

// Remaining returns how many interactions may still be served.
func (c *Cursor) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit - c.consumed
}

// Exhausted reports whether replay is over for this session.
func (c *Cursor) Exhausted() bool {
	return c.Remaining() == 0
}

// Limit returns the effective replay cap after clamping.
func (c *Cursor) Limit() int {
	return c.limit
}
