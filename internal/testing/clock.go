package testing

import (
	"sync/atomic"
	"time"
)

// DefaultTime is where a new ManualClock starts.
var DefaultTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ManualClock is a node.Clock that only moves when told to. It keeps whole
// seconds, the resolution locks are timed at.
type ManualClock struct {
	unix atomic.Int64
}

func NewManualClock() *ManualClock {
	c := &ManualClock{}
	c.Set(DefaultTime)
	return c
}

func (c *ManualClock) Now() time.Time {
	return time.Unix(c.unix.Load(), 0).UTC()
}

// Unix returns the clock reading in unix seconds.
func (c *ManualClock) Unix() uint64 {
	return uint64(c.unix.Load())
}

// Advance moves the clock forward by d, truncated to seconds.
func (c *ManualClock) Advance(d time.Duration) {
	c.unix.Add(int64(d / time.Second))
}

func (c *ManualClock) Set(t time.Time) {
	c.unix.Store(t.Unix())
}
