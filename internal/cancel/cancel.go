// Package cancel provides the cooperative cancellation token shared by the
// search and copy phases of a task.
package cancel

import "sync"

// Token is a mutex-guarded running flag. Long-running loops poll Running at
// every unit-of-work boundary (per directory, per file, per hash chunk) and
// stop promptly once it reports false. There is no preemptive cancellation.
type Token struct {
	mu      sync.Mutex
	running bool
}

// NewToken returns a token in the running state.
func NewToken() *Token {
	return &Token{running: true}
}

// Running reports whether work should continue.
func (t *Token) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Stop clears the running flag. Idempotent; the effect is observed
// asynchronously at the next poll point.
func (t *Token) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Reset re-arms the token for a new task.
func (t *Token) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}
