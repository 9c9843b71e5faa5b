// Package overlay turns the dream toggle into edge-triggered hook calls.
package overlay

import (
	"sync"
	"time"
)

// DefaultDelay is how long after an activation edge the activated
// notification fires.
const DefaultDelay = 100 * time.Millisecond

// Hooks are called by the controller. Activate and Deactivate run
// synchronously inside the toggle call; Activated runs later on the timer's
// goroutine.
type Hooks struct {
	Activate   func()
	Deactivate func()
	Activated  func()
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Controller.
type Option func(*Controller)

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) { c.after = fn }
}

// Controller tracks the overlay flag and fires hooks on its edges only.
type Controller struct {
	mu      sync.Mutex
	hooks   Hooks
	delay   time.Duration
	after   AfterFunc
	active  bool
	gen     uint64
	pending Timer
	fired   int
}

// New returns an inactive controller that reports activation delay after
// each false-to-true edge.
func New(hooks Hooks, delay time.Duration, opts ...Option) *Controller {
	if delay < 0 {
		delay = 0
	}
	c := &Controller{
		hooks: hooks,
		delay: delay,
		after: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Activate reports whether this call was a false→true edge.
func (c *Controller) Activate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return false
	}
	c.active = true
	c.gen++
	if c.hooks.Activate != nil {
		c.hooks.Activate()
	}
	gen := c.gen
	c.pending = c.after(c.delay, func() { c.notify(gen) })
	return true
}

// Deactivate reports whether this call was a true→false edge. A pending
// activated notification is cancelled.
func (c *Controller) Deactivate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return false
	}
	c.active = false
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	if c.hooks.Deactivate != nil {
		c.hooks.Deactivate()
	}
	return true
}

// Set toggles to the given state and reports whether it was an edge.
func (c *Controller) Set(active bool) bool {
	if active {
		return c.Activate()
	}
	return c.Deactivate()
}

// Active reports whether the overlay is on.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Fired returns how many activated notifications have been delivered.
func (c *Controller) Fired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

func (c *Controller) notify(gen uint64) {
	c.mu.Lock()
	// a stale timer may still fire after Stop lost the race
	if gen != c.gen || !c.active {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.fired++
	c.mu.Unlock()

	if c.hooks.Activated != nil {
		c.hooks.Activated()
	}
}
