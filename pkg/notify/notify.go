// Package notify holds the single transient status message the UI renders.
// New messages overwrite the pending one; there is no queue.
package notify

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Second

// Channel keeps at most one live message and expires it after TTL.
type Channel struct {
	mu       sync.Mutex
	msg      string
	live     bool
	gen      uint64
	timer    *time.Timer
	ttl      time.Duration
	onChange func(string)
}

// New builds a channel with the given TTL; ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{ttl: ttl}
}

// OnChange registers a hook invoked (outside the lock) with each published
// message and with "" on clear/expiry. One consumer slot, like the message.
func (c *Channel) OnChange(fn func(string)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Publish overwrites any pending message and restarts the expiry timer.
func (c *Channel) Publish(msg string) {
	c.mu.Lock()
	c.msg = msg
	c.live = true
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(gen) })
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Clear cancels the timer and drops the message immediately.
func (c *Channel) Clear() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.msg = ""
	c.live = false
	c.gen++
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn("")
	}
}

// Current returns the live message, if any.
func (c *Channel) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg, c.live
}

// expire clears the message only if no newer Publish/Clear happened since
// the timer was armed.
func (c *Channel) expire(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.msg = ""
	c.live = false
	c.timer = nil
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn("")
	}
}
