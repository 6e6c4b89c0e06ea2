// Package host abstracts the third-party page the overlay shadows.  The
// engine never touches host markup directly; it sees only this narrow
// capability surface.
package host

import (
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Page is the capability interface onto the host document.  Implementations
// must be safe for concurrent use; the view tracker calls from its own
// goroutine.
type Page interface {
	// Location returns the host's current location descriptor, such as a
	// normalized URL fragment.
	Location() string

	// PrimaryContainer resolves the host's primary content container.  The
	// second return is false while the host has not yet inserted its content
	// root; callers retry rather than treating that as an error.
	PrimaryContainer() (event.ContainerRef, bool)

	// Notify returns a channel that receives a ping after each burst of host
	// mutations.  Pings coalesce; receivers must re-read page state rather
	// than counting them.
	Notify() <-chan struct{}
}
