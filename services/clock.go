package services

import (
	"sync"
	"time"
)

// monotonicClock hands out strictly increasing UTC timestamps. Message
// ordering queries (recent N, last-by-sender) rely on timestamps never
// repeating, and wall clocks can stall or step backwards.
type monotonicClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}
