package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Frame is the deterministic projection of the store triad: everything a
// surface needs to paint the overlay, and nothing else.
type Frame struct {
	Location      string             `json:"location,omitempty"`
	Conversations []ConversationView `json:"conversations"`
	ComposeSlots  []ComposeSlotView  `json:"composeSlots"`
	Toolbar       ToolbarView        `json:"toolbar"`
}

// ConversationView is one visible conversation row.
type ConversationView struct {
	ID          string     `json:"id"`
	Sender      string     `json:"sender"`
	Subject     string     `json:"subject"`
	Snippet     string     `json:"snippet,omitempty"`
	Date        time.Time  `json:"date"`
	Unread      bool       `json:"unread"`
	Mode        event.Mode `json:"mode"`
	Expanded    bool       `json:"expanded,omitempty"`
	Highlighted bool       `json:"highlighted,omitempty"`
	Collapsing  bool       `json:"collapsing,omitempty"`
	PendingPin  bool       `json:"pendingPin,omitempty"`
	Fading      bool       `json:"fading,omitempty"`
	Hovered     bool       `json:"hovered,omitempty"`

	// PointerEvents is false while the row plays its exit fade.
	PointerEvents bool `json:"pointerEvents"`
}

// ComposeSlotView is one standalone compose slot.
type ComposeSlotView struct {
	Index     int    `json:"index"`
	To        string `json:"to,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	Sent      bool   `json:"sent,omitempty"`
	Animating bool   `json:"animating,omitempty"`
	Expanded  bool   `json:"expanded,omitempty"`
}

// ToolbarView is the search and filter controls.
type ToolbarView struct {
	SearchActive       bool           `json:"searchActive"`
	SearchRotating     bool           `json:"searchRotating,omitempty"`
	SearchQuery        string         `json:"searchQuery,omitempty"`
	FilterOrder        []event.Filter `json:"filterOrder"`
	SecondaryCollapsed bool           `json:"secondaryCollapsed"`
}

// String renders the frame as stable, line-oriented text for golden-file
// comparison.
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "location %q\n", f.Location)
	fmt.Fprintf(&b, "toolbar search=%v rotating=%v query=%q filters=%v secondary-collapsed=%v\n",
		f.Toolbar.SearchActive, f.Toolbar.SearchRotating, f.Toolbar.SearchQuery,
		f.Toolbar.FilterOrder, f.Toolbar.SecondaryCollapsed)
	for _, cv := range f.Conversations {
		fmt.Fprintf(&b, "conversation %v sender=%q subject=%q mode=%v flags=[%v]\n",
			cv.ID, cv.Sender, cv.Subject, cv.Mode, strings.Join(cv.flags(), " "))
	}
	for _, sv := range f.ComposeSlots {
		fmt.Fprintf(&b, "slot %v to=%q subject=%q flags=[%v]\n",
			sv.Index, sv.To, sv.Subject, strings.Join(sv.flags(), " "))
	}
	return b.String()
}

func (cv ConversationView) flags() []string {
	var fs []string
	add := func(on bool, name string) {
		if on {
			fs = append(fs, name)
		}
	}
	add(cv.Unread, "unread")
	add(cv.Expanded, "expanded")
	add(cv.Highlighted, "highlighted")
	add(cv.Collapsing, "collapsing")
	add(cv.PendingPin, "pending-pin")
	add(cv.Fading, "fading")
	add(cv.Hovered, "hovered")
	return fs
}

func (sv ComposeSlotView) flags() []string {
	var fs []string
	add := func(on bool, name string) {
		if on {
			fs = append(fs, name)
		}
	}
	add(sv.Dirty, "dirty")
	add(sv.Sent, "sent")
	add(sv.Animating, "animating")
	add(sv.Expanded, "expanded")
	return fs
}
