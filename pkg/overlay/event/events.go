package event

import (
	"time"
)

// Mode identifies which inline composer, if any, is attached to a
// conversation.
type Mode string

// Composer modes.
const (
	ModeRead    Mode = "read"
	ModeReply   Mode = "reply"
	ModeForward Mode = "forward"
)

// Filter identifies a toolbar filter button.
type Filter string

// Toolbar filters.
const (
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
	FilterDraft  Filter = "draft"
)

// ConversationRecord contains the data extracted for a single conversation
// row.  Records are immutable once extracted; identity is ID.
type ConversationRecord struct {
	ID      string
	Sender  string
	Subject string
	Snippet string
	Date    time.Time
	Unread  bool
}

// ViewContext describes the host page view at a point in time.  Container is
// nil when the host's primary container could not be located; that is an
// explicit signal, not an error.
type ViewContext struct {
	Location  string
	Container ContainerRef
	Timestamp time.Time
}

// ContainerRef identifies the host's primary content container and provides
// access to its row markup.
type ContainerRef interface {
	// Identity distinguishes one container instance from its replacement; a
	// change indicates a full view swap.
	Identity() string

	// Rows returns the raw markup of each conversation row, in host order.
	Rows() []string
}

// DismissedEvent is emitted after a conversation has been finalized out of
// the visible set.
type DismissedEvent struct {
	ID      string
	Sender  string
	Subject string
	Date    time.Time
}

// SentEvent is emitted after a compose slot's draft has been built and marked
// sent.
type SentEvent struct {
	To      string
	Subject string
	Size    int64
	Date    time.Time
}

// ArchivedDraftEvent is emitted when a non-empty draft is archived on
// non-send removal.
type ArchivedDraftEvent struct {
	To      string
	Subject string
	Body    string
	Date    time.Time
}

// SnapshotEvent is emitted after a host snapshot has been reconciled into
// the conversation store.
type SnapshotEvent struct {
	Location string
	Count    int
	Date     time.Time
}
