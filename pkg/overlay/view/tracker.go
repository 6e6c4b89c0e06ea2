// Package view observes the host page for navigation and structural change,
// emitting debounced view contexts to the coordinator.
package view

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/host"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Tracker watches a host page and invokes its callback with a ViewContext
// whenever the location or the primary container's identity changes, after
// every debounced mutation burst, and at least once after Start.  A context
// with a nil Container is the explicit "unavailable" signal; the tracker
// keeps retrying on a fixed interval until the host inserts its content root.
//
// Duplicate emissions with identical content are possible; consumers must be
// idempotent.
type Tracker struct {
	page     host.Page
	cfg      config.Tracker
	callback func(event.ViewContext)
	logger   zerolog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// New constructs a Tracker; callback will be invoked from the tracker's own
// goroutine.
func New(cfg config.Tracker, page host.Page, callback func(event.ViewContext)) *Tracker {
	return &Tracker{
		page:     page,
		cfg:      cfg,
		callback: callback,
		logger:   log.With().Str("module", "view").Logger(),
	}
}

// Start begins observation.  Calling Start on a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.stopped = make(chan struct{})
	go t.run(t.stop, t.stopped)
}

// Stop ends observation and waits for the tracker goroutine to exit.
// Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	stop, stopped := t.stop, t.stopped
	t.stop, t.stopped = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

// run is the observation loop.
func (t *Tracker) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	var (
		lastLocation string
		lastIdentity string
		lastAbsent   bool
	)

	// evaluate resolves the page and emits when forced or genuinely changed.
	evaluate := func(force bool) {
		location := t.page.Location()
		container, ok := t.page.PrimaryContainer()
		if !ok {
			if force || !lastAbsent {
				t.logger.Debug().Str("location", location).
					Msg("Primary container not found, will retry")
				t.emit(location, nil)
			}
			lastAbsent = true
			lastIdentity = ""
			lastLocation = location
			return
		}
		identity := container.Identity()
		if force || lastAbsent || location != lastLocation || identity != lastIdentity {
			t.emit(location, container)
		}
		lastAbsent = false
		lastLocation = location
		lastIdentity = identity
	}

	// Initial snapshot; emitted even if nothing ever changes.
	evaluate(true)

	for {
		interval := t.cfg.PollInterval
		if lastAbsent {
			interval = t.cfg.RetryInterval
		}
		select {
		case <-stop:
			return
		case <-t.page.Notify():
			if !t.debounce(stop) {
				return
			}
			// A mutation burst always re-emits; rows may have changed under
			// an unchanged container identity.
			evaluate(true)
		case <-time.After(interval):
			evaluate(false)
		}
	}
}

// debounce waits for a quiet window after a mutation ping, absorbing any
// further pings that arrive meanwhile.  Returns false when stopped.
func (t *Tracker) debounce(stop <-chan struct{}) bool {
	timer := time.NewTimer(t.cfg.Debounce)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return false
		case <-t.page.Notify():
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(t.cfg.Debounce)
		case <-timer.C:
			return true
		}
	}
}

func (t *Tracker) emit(location string, container event.ContainerRef) {
	t.callback(event.ViewContext{
		Location:  location,
		Container: container,
		Timestamp: time.Now(),
	})
}
