package event

import (
	"time"
)

// Monitor event kinds.
const (
	KindDismissed     = "dismissed"
	KindDraftArchived = "draft_archived"
	KindSent          = "sent"
	KindSnapshot      = "snapshot"
)

// MonitorEvent is the flattened form of an overlay event, suitable for the
// hub history buffer and the monitor wire format.
type MonitorEvent struct {
	Kind     string    `json:"kind"`
	ID       string    `json:"id,omitempty"`
	Sender   string    `json:"sender,omitempty"`
	To       string    `json:"to,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Location string    `json:"location,omitempty"`
	Count    int       `json:"count,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Date     time.Time `json:"date"`
}
