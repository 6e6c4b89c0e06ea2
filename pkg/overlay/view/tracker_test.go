package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/host"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// quiet uses intervals long enough that only explicit pings drive the
// tracker; tests of the polling paths override them.
func quiet() config.Tracker {
	return config.Tracker{
		Debounce:      20 * time.Millisecond,
		PollInterval:  time.Hour,
		RetryInterval: time.Hour,
	}
}

func startTracker(t *testing.T, cfg config.Tracker, page host.Page) (*Tracker, chan event.ViewContext) {
	t.Helper()
	contexts := make(chan event.ViewContext, 100)
	tr := New(cfg, page, func(vc event.ViewContext) { contexts <- vc })
	tr.Start()
	t.Cleanup(tr.Stop)
	return tr, contexts
}

func waitContext(t *testing.T, contexts chan event.ViewContext) event.ViewContext {
	t.Helper()
	select {
	case vc := <-contexts:
		return vc
	case <-time.After(2 * time.Second):
		t.Fatal("No view context emitted within timeout")
		return event.ViewContext{}
	}
}

func assertNoContext(t *testing.T, contexts chan event.ViewContext) {
	t.Helper()
	select {
	case vc := <-contexts:
		t.Errorf("Unexpected view context emitted: %+v", vc)
	case <-time.After(100 * time.Millisecond):
		// Expected result, no emission
	}
}

func TestTrackerInitialEmit(t *testing.T) {
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	_, contexts := startTracker(t, quiet(), page)

	vc := waitContext(t, contexts)
	assert.Equal(t, "inbox", vc.Location)
	require.NotNil(t, vc.Container)
	assert.Equal(t, []string{"row one"}, vc.Container.Rows())
	assert.False(t, vc.Timestamp.IsZero())
}

func TestTrackerInitialEmitWithoutContainer(t *testing.T) {
	page := host.NewSimPage("inbox")
	_, contexts := startTracker(t, quiet(), page)

	vc := waitContext(t, contexts)
	assert.Equal(t, "inbox", vc.Location)
	assert.Nil(t, vc.Container, "absence is an explicit signal")
}

func TestTrackerAbsenceEmitsOnce(t *testing.T) {
	cfg := quiet()
	cfg.RetryInterval = 2 * time.Millisecond
	page := host.NewSimPage("inbox")
	_, contexts := startTracker(t, cfg, page)

	vc := waitContext(t, contexts)
	assert.Nil(t, vc.Container)

	// Many retry ticks later, continued absence stays silent.
	assertNoContext(t, contexts)
}

func TestTrackerRetryFindsContainer(t *testing.T) {
	cfg := quiet()
	cfg.RetryInterval = 2 * time.Millisecond
	page := host.NewSimPage("inbox")
	_, contexts := startTracker(t, cfg, page)
	assert.Nil(t, waitContext(t, contexts).Container)

	page.ReplaceContainer("row one")

	vc := waitContext(t, contexts)
	require.NotNil(t, vc.Container)
	assert.Equal(t, []string{"row one"}, vc.Container.Rows())
}

func TestTrackerDebouncesMutationBurst(t *testing.T) {
	cfg := quiet()
	cfg.Debounce = 50 * time.Millisecond
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	_, contexts := startTracker(t, cfg, page)
	waitContext(t, contexts) // initial

	// A burst of mutations inside the quiet window coalesces.
	for i := 0; i < 5; i++ {
		page.SetRows("row one", "row two")
		time.Sleep(5 * time.Millisecond)
	}

	vc := waitContext(t, contexts)
	require.NotNil(t, vc.Container)
	assert.Equal(t, []string{"row one", "row two"}, vc.Container.Rows())
	assertNoContext(t, contexts)
}

func TestTrackerEmitsOnNavigation(t *testing.T) {
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	_, contexts := startTracker(t, quiet(), page)
	waitContext(t, contexts) // initial

	page.Navigate("archive")

	vc := waitContext(t, contexts)
	assert.Equal(t, "archive", vc.Location)
}

func TestTrackerEmitsOnContainerSwap(t *testing.T) {
	page := host.NewSimPage("inbox")
	first := page.ReplaceContainer("row one")
	_, contexts := startTracker(t, quiet(), page)
	initial := waitContext(t, contexts)
	require.NotNil(t, initial.Container)
	assert.Equal(t, first.Identity(), initial.Container.Identity())

	second := page.ReplaceContainer("row two")

	vc := waitContext(t, contexts)
	require.NotNil(t, vc.Container)
	assert.Equal(t, second.Identity(), vc.Container.Identity())
	assert.NotEqual(t, first.Identity(), vc.Container.Identity())
}

func TestTrackerEmitsOnContainerRemoval(t *testing.T) {
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	_, contexts := startTracker(t, quiet(), page)
	waitContext(t, contexts) // initial

	page.RemoveContainer()

	vc := waitContext(t, contexts)
	assert.Nil(t, vc.Container)
}

func TestTrackerStopIdempotent(t *testing.T) {
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	tr, contexts := startTracker(t, quiet(), page)
	waitContext(t, contexts) // initial

	tr.Stop()
	tr.Stop()

	// No further emissions after stop.
	page.Navigate("archive")
	assertNoContext(t, contexts)
}

func TestTrackerStartTwice(t *testing.T) {
	page := host.NewSimPage("inbox")
	page.ReplaceContainer("row one")
	tr, contexts := startTracker(t, quiet(), page)
	tr.Start()

	// Only one loop runs, so only one initial emission arrives.
	waitContext(t, contexts)
	assertNoContext(t, contexts)
}
