package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hour = time.Hour // fallback delay long enough to never fire in tests

func TestTokenFireRunsCallbackOnce(t *testing.T) {
	l := New(nil)
	count := 0
	tok := l.Schedule("conv:a", hour, func() { count++ })

	assert.True(t, tok.Fire(), "first presenter wins")
	assert.False(t, tok.Fire(), "second presenter loses")
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, l.Outstanding())
}

func TestTokenCancelPreventsFire(t *testing.T) {
	l := New(nil)
	count := 0
	tok := l.Schedule("conv:a", hour, func() { count++ })

	assert.True(t, tok.Cancel())
	assert.False(t, tok.Fire(), "cancelled tokens cannot fire")
	assert.False(t, tok.Cancel())
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, l.Outstanding())
}

func TestTimerFiresCallback(t *testing.T) {
	done := make(chan struct{})
	l := New(nil)
	l.Schedule("conv:a", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timer did not fire callback within timeout")
	}
	assert.Equal(t, 0, l.Outstanding())
}

func TestZeroDelayFire(t *testing.T) {
	// A zero-delay timer may fire before Schedule returns; the token must
	// still complete exactly once.
	done := make(chan struct{})
	l := New(nil)
	tok := l.Schedule("conv:a", 0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timer did not fire callback within timeout")
	}
	assert.False(t, tok.Fire())
}

func TestCancelScope(t *testing.T) {
	l := New(nil)
	var fired []string
	mark := func(name string) func() {
		return func() { fired = append(fired, name) }
	}
	l.Schedule("conv:a", hour, mark("a1"))
	l.Schedule("conv:a", hour, mark("a2"))
	b := l.Schedule("conv:b", hour, mark("b1"))
	require.Equal(t, 3, l.Outstanding())

	l.CancelScope("conv:a")

	assert.Equal(t, 1, l.Outstanding())
	assert.True(t, b.Fire(), "other scopes are untouched")
	assert.Equal(t, []string{"b1"}, fired)
}

func TestCancelAll(t *testing.T) {
	l := New(nil)
	count := 0
	for i := 0; i < 5; i++ {
		l.Schedule("conv:a", hour, func() { count++ })
	}

	l.CancelAll()

	assert.Equal(t, 0, l.Outstanding())
	assert.Equal(t, 0, count)
}

func TestDispatchSerializesCompletions(t *testing.T) {
	// Completions must run through the dispatch func, not on the timer
	// goroutine.
	var mu sync.Mutex
	var order []string
	dispatched := make(chan struct{}, 2)
	dispatch := func(fn func()) {
		mu.Lock()
		order = append(order, "dispatch")
		mu.Unlock()
		fn()
		dispatched <- struct{}{}
	}
	l := New(dispatch)
	l.Schedule("conv:a", time.Millisecond, func() {
		mu.Lock()
		order = append(order, "callback")
		mu.Unlock()
	})

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("Completion was not dispatched within timeout")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"dispatch", "callback"}, order)
}

func TestFireRacesTimer(t *testing.T) {
	// A genuine completion signal racing the fallback timer must yield
	// exactly one callback run.
	var mu sync.Mutex
	count := 0
	l := New(nil)
	for i := 0; i < 50; i++ {
		tok := l.Schedule("conv:a", time.Microsecond, func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
		tok.Fire()
	}

	// Give straggling timers a chance to misbehave.
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, count)
}
