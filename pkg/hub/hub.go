// Package hub relays overlay events to monitor listeners, keeping a bounded
// history for playback to late joiners.
package hub

import (
	"container/ring"
	"context"

	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Length of hub operation queue
const opChanLen = 100

// Listener receives the contents of the history buffer, followed by new
// events.
type Listener interface {
	Receive(ev event.MonitorEvent) error
}

// Hub relays overlay events on to its listeners.
type Hub struct {
	// history buffer, points next event to write.  Proceeding non-nil entry is oldest event
	history   *ring.Ring
	listeners map[Listener]struct{} // listeners interested in new events
	opChan    chan func(h *Hub)     // operations queued for this actor
	done      chan struct{}         // closed once the processing loop exits
}

// New constructs a new Hub which will cache historyLen events in memory for
// playback to future listeners.  Call Start to begin processing; the loop
// runs until the provided context is canceled.
func New(historyLen int, extHost *extension.Host) *Hub {
	hub := &Hub{
		history:   ring.New(historyLen),
		listeners: make(map[Listener]struct{}),
		opChan:    make(chan func(h *Hub), opChanLen),
		done:      make(chan struct{}),
	}

	// Relay overlay events from the extension host.
	extHost.Events.AfterConversationDismissed.AddListener("hub",
		func(ev event.DismissedEvent) {
			hub.Dispatch(event.MonitorEvent{
				Kind:    event.KindDismissed,
				ID:      ev.ID,
				Sender:  ev.Sender,
				Subject: ev.Subject,
				Date:    ev.Date,
			})
		})
	extHost.Events.AfterDraftArchived.AddListener("hub",
		func(ev event.ArchivedDraftEvent) {
			hub.Dispatch(event.MonitorEvent{
				Kind:    event.KindDraftArchived,
				To:      ev.To,
				Subject: ev.Subject,
				Date:    ev.Date,
			})
		})
	extHost.Events.AfterEmailSent.AddListener("hub",
		func(ev event.SentEvent) {
			hub.Dispatch(event.MonitorEvent{
				Kind:    event.KindSent,
				To:      ev.To,
				Subject: ev.Subject,
				Size:    ev.Size,
				Date:    ev.Date,
			})
		})
	extHost.Events.AfterSnapshotApplied.AddListener("hub",
		func(ev event.SnapshotEvent) {
			hub.Dispatch(event.MonitorEvent{
				Kind:     event.KindSnapshot,
				Location: ev.Location,
				Count:    ev.Count,
				Date:     ev.Date,
			})
		})

	return hub
}

// Start Hub processing loop.
func (hub *Hub) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Shutdown.  The op channel stays open; async broker goroutines
			// may still be dispatching, and their sends must not panic.
			close(hub.done)
			return
		case op := <-hub.opChan:
			op(hub)
		}
	}
}

// submit queues an operation for the actor goroutine.  Operations arriving
// after shutdown are dropped.
func (hub *Hub) submit(op func(h *Hub)) {
	select {
	case <-hub.done:
	case hub.opChan <- op:
	}
}

// Dispatch queues an event for broadcast by the hub.  The event will be
// placed into the history buffer and then relayed to all registered
// listeners.
func (hub *Hub) Dispatch(ev event.MonitorEvent) {
	hub.submit(func(h *Hub) {
		if h.history != nil {
			// Add to history buffer
			h.history.Value = ev
			h.history = h.history.Next()

			// Deliver event to all listeners, removing listeners if they return an error
			for l := range h.listeners {
				if err := l.Receive(ev); err != nil {
					delete(h.listeners, l)
				}
			}
		}
	})
}

// AddListener registers a listener to receive broadcasted events.
func (hub *Hub) AddListener(l Listener) {
	hub.submit(func(h *Hub) {
		// Playback history
		h.history.Do(func(v interface{}) {
			if v != nil {
				l.Receive(v.(event.MonitorEvent))
			}
		})

		// Add to listeners
		h.listeners[l] = struct{}{}
	})
}

// RemoveListener deletes a listener registration, it will cease to receive
// events.
func (hub *Hub) RemoveListener(l Listener) {
	hub.submit(func(h *Hub) {
		delete(h.listeners, l)
	})
}

// Sync blocks until the hub has processed its queue up to this point, useful
// for unit tests.
func (hub *Hub) Sync() {
	done := make(chan struct{})
	hub.submit(func(h *Hub) {
		close(done)
	})
	select {
	case <-done:
	case <-hub.done:
	}
}
