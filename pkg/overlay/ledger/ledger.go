// Package ledger registers every in-flight timed visual effect so the
// coordinator can cancel stale ones when state is superseded.  Each scheduled
// completion is a Token: the first of a fallback timer or a genuine
// completion signal to fire wins and invalidates the token, so completion
// logic runs exactly once even when both race.
package ledger

import (
	"sync"
	"time"
)

// Ledger tracks outstanding completion tokens.  Safe for concurrent use;
// timer goroutines and the coordinator both touch it.
type Ledger struct {
	mu       sync.Mutex
	nextID   uint64
	entries  map[uint64]*Token
	dispatch func(func())
}

// New constructs a Ledger.  Completion callbacks are handed to dispatch
// rather than run on the timer goroutine; the coordinator passes its own
// enqueue func so completions serialize with every other state change.  A nil
// dispatch runs callbacks inline, which only tests should use.
func New(dispatch func(func())) *Ledger {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Ledger{
		entries:  make(map[uint64]*Token),
		dispatch: dispatch,
	}
}

// Schedule registers a completion under scope and arms its fallback timer.
// The returned token may also be fired early by a genuine completion signal.
func (l *Ledger) Schedule(scope string, d time.Duration, fn func()) *Token {
	l.mu.Lock()
	l.nextID++
	t := &Token{
		id:    l.nextID,
		scope: scope,
		fn:    fn,
		l:     l,
	}
	l.entries[t.id] = t
	// Armed under the lock so a zero-delay fire cannot observe a nil timer.
	t.timer = time.AfterFunc(d, func() { t.Fire() })
	l.mu.Unlock()
	return t
}

// CancelScope cancels every outstanding token registered under scope.  Used
// when a new transition for the same conversation or slot supersedes pending
// ones.
func (l *Ledger) CancelScope(scope string) {
	for _, t := range l.snapshot() {
		if t.scope == scope {
			t.Cancel()
		}
	}
}

// CancelAll sweeps every outstanding token; used on teardown.
func (l *Ledger) CancelAll() {
	for _, t := range l.snapshot() {
		t.Cancel()
	}
}

// Outstanding returns the number of live tokens.
func (l *Ledger) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) snapshot() []*Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := make([]*Token, 0, len(l.entries))
	for _, t := range l.entries {
		ts = append(ts, t)
	}
	return ts
}

// Token is a single cancellable scheduled completion.
type Token struct {
	id      uint64
	scope   string
	fn      func()
	l       *Ledger
	timer   *time.Timer
	handled bool
}

// Fire presents the token for completion.  The first presenter wins: the
// callback is dispatched once and the token is invalidated.  Later calls,
// including the fallback timer racing a genuine signal, return false and do
// nothing.
func (t *Token) Fire() bool {
	if !t.claim() {
		return false
	}
	t.l.dispatch(t.fn)
	return true
}

// Cancel invalidates the token without running its callback.  Returns false
// when the token already completed or was cancelled.
func (t *Token) Cancel() bool {
	return t.claim()
}

// claim marks the token handled exactly once and unregisters it.
func (t *Token) claim() bool {
	l := t.l
	l.mu.Lock()
	if t.handled {
		l.mu.Unlock()
		return false
	}
	t.handled = true
	delete(l.entries, t.id)
	timer := t.timer
	l.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	return true
}
