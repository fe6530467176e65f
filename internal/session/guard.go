package session

import "sync"

// Guard serializes access to a controller for callers on other goroutines,
// such as the preferences watcher or the MCP transport.
type Guard struct {
	mu sync.Mutex
	c  *Controller
}

// NewGuard wraps c
func NewGuard(c *Controller) *Guard {
	return &Guard{c: c}
}

// Do runs fn with exclusive access to the controller
func (g *Guard) Do(fn func(c *Controller) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.c)
}

// Drain runs the controller's queued callbacks under the lock
func (g *Guard) Drain() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Queue().Drain()
}
