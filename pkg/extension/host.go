// Package extension defines the hook points scripts and embedders use to
// observe or influence the overlay engine.
package extension

import (
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Host defines extension points for the overlay engine.
type Host struct {
	Events *Events
}

// Events defines all the event types supported by the extension host.
//
// Before-events run synchronously inside the coordinator and give listeners a
// chance to veto the operation; the first listener returning a non-nil result
// decides, and the remaining listeners are not called.  Expensive listeners
// stall the overlay.
//
// After-events are processed asynchronously with respect to the coordinator.
type Events struct {
	AfterConversationDismissed AsyncEventBroker[event.DismissedEvent]
	AfterDraftArchived         AsyncEventBroker[event.ArchivedDraftEvent]
	AfterEmailSent             AsyncEventBroker[event.SentEvent]
	AfterSnapshotApplied       AsyncEventBroker[event.SnapshotEvent]
	BeforeConversationDismiss  EventBroker[event.DismissedEvent, bool]
}

// Void indicates the event emitter will ignore any value returned by listeners.
type Void struct{}

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}
