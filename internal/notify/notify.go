// Package notify holds the user-facing "last error" shared by the mutation
// engine, the drag-and-drop reconciler and the replica adapter.
package notify

import (
	"sync"
	"time"
)

// Level represents the severity of a notice.
type Level int

const (
	// LevelInfo is informational
	LevelInfo Level = iota
	// LevelWarning flags something the user may want to refresh
	LevelWarning
	// LevelError reports a failed write that has been rolled back
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 4 * time.Second

// Notice is a single message with a severity level.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Center keeps the most recent notice and clears it after a fixed interval.
// A new notice replaces the previous one and restarts the interval.
type Center struct {
	mu        sync.Mutex
	ttl       time.Duration
	current   *Notice
	timer     *time.Timer
	gen       uint64
	listeners []func(Notice, bool)
}

// NewCenter creates a Center whose notices expire after ttl.
// A non-positive ttl keeps notices until cleared.
func NewCenter(ttl time.Duration) *Center {
	return &Center{ttl: ttl}
}

// Set replaces the current notice.
func (c *Center) Set(level Level, message string) {
	n := Notice{Level: level, Message: message, At: time.Now()}

	c.mu.Lock()
	c.current = &n
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.ttl > 0 {
		c.timer = time.AfterFunc(c.ttl, func() { c.expire(gen) })
	}
	listeners := append([]func(Notice, bool){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(n, true)
	}
}

// Error sets an error-level notice.
func (c *Center) Error(message string) { c.Set(LevelError, message) }

// Warn sets a warning-level notice.
func (c *Center) Warn(message string) { c.Set(LevelWarning, message) }

// Info sets an info-level notice.
func (c *Center) Info(message string) { c.Set(LevelInfo, message) }

// Last returns the current notice, if any.
func (c *Center) Last() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notice{}, false
	}
	return *c.current, true
}

// HasError reports whether the current notice is an error.
func (c *Center) HasError() bool {
	n, ok := c.Last()
	return ok && n.Level == LevelError
}

// Clear removes the current notice.
func (c *Center) Clear() {
	c.mu.Lock()
	c.gen++
	c.clearLocked()
}

// OnChange registers fn to be called when a notice is set (true) or cleared (false).
func (c *Center) OnChange(fn func(n Notice, active bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Center) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.clearLocked()
}

// clearLocked must be called with mu held; it releases it.
func (c *Center) clearLocked() {
	prev := c.current
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	listeners := append([]func(Notice, bool){}, c.listeners...)
	c.mu.Unlock()

	if prev == nil {
		return
	}
	for _, fn := range listeners {
		fn(*prev, false)
	}
}
