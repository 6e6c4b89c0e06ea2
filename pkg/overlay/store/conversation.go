// Package store holds the overlay's authoritative model: conversation,
// composer, and toolbar state.  Stores are pure data plus transition
// functions; no timers, no host access.  Operations never fail: unknown ids
// and out-of-range indices are silent no-ops, since external events can race
// ahead of snapshot refreshes and index shifts.
//
// Stores are not safe for concurrent use.  The coordinator actor is their
// sole writer and confines all access to its own goroutine.
package store

import (
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// ConversationStore tracks the per-conversation view state keyed by record
// id, along with the latest accepted snapshot.
type ConversationStore struct {
	location string
	records  []event.ConversationRecord
	index    map[string]int // id -> position in records

	modes map[string]event.Mode // missing entry means ModeRead

	// Global singletons; at most one conversation holds each.
	expandedID          string
	highlightedID       string
	collapsingID        string
	pendingHoverID      string
	collapseAnimationID string

	dismissed map[string]struct{} // terminal, never rendered again
	fadingOut map[string]struct{} // playing exit effect, still rendered
	read      map[string]struct{}
	hovered   map[string]struct{}
}

// NewConversationStore returns an empty store.
func NewConversationStore() *ConversationStore {
	s := &ConversationStore{}
	s.Reset()
	return s
}

// Reset restores the empty initial state, used on full host-page replacement.
func (s *ConversationStore) Reset() {
	s.location = ""
	s.records = nil
	s.index = make(map[string]int)
	s.modes = make(map[string]event.Mode)
	s.expandedID = ""
	s.highlightedID = ""
	s.collapsingID = ""
	s.pendingHoverID = ""
	s.collapseAnimationID = ""
	s.dismissed = make(map[string]struct{})
	s.fadingOut = make(map[string]struct{})
	s.read = make(map[string]struct{})
	s.hovered = make(map[string]struct{})
}

// SetConversations accepts a new snapshot.  Per-id state is created
// implicitly for new records and retained for surviving ones; singletons
// pointing at ids absent from the snapshot are cleared so the expanded
// conversation can never reference a vanished record.
func (s *ConversationStore) SetConversations(records []event.ConversationRecord) {
	s.records = append(s.records[:0:0], records...)
	s.index = make(map[string]int, len(records))
	for i, r := range records {
		s.index[r.ID] = i
	}
	if !s.Known(s.expandedID) {
		s.expandedID = ""
	}
	if !s.Known(s.highlightedID) {
		s.highlightedID = ""
	}
	if !s.Known(s.collapsingID) {
		s.collapsingID = ""
	}
	if !s.Known(s.pendingHoverID) {
		s.pendingHoverID = ""
	}
	if !s.Known(s.collapseAnimationID) {
		s.collapseAnimationID = ""
	}
}

// Location returns the host location of the latest accepted snapshot.
func (s *ConversationStore) Location() string { return s.location }

// SetLocation records the host location of the snapshot being applied.
func (s *ConversationStore) SetLocation(location string) {
	s.location = location
}

// Records returns the latest accepted snapshot in host order.
func (s *ConversationStore) Records() []event.ConversationRecord {
	return s.records
}

// Record looks up a snapshot record by id.
func (s *ConversationStore) Record(id string) (event.ConversationRecord, bool) {
	i, ok := s.index[id]
	if !ok {
		return event.ConversationRecord{}, false
	}
	return s.records[i], true
}

// Known reports whether id is present in the latest accepted snapshot.
func (s *ConversationStore) Known(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Mode returns the composer mode attached to id; ModeRead when none.
func (s *ConversationStore) Mode(id string) event.Mode {
	if m, ok := s.modes[id]; ok {
		return m
	}
	return event.ModeRead
}

// SetMode attaches a composer mode to a known id.
func (s *ConversationStore) SetMode(id string, mode event.Mode) {
	if !s.Known(id) {
		return
	}
	if mode == event.ModeRead {
		delete(s.modes, id)
		return
	}
	s.modes[id] = mode
}

// ActiveComposer returns the id currently holding a non-read mode, if any.
// The coordinator maintains at most one across the whole list.
func (s *ConversationStore) ActiveComposer() (id string, mode event.Mode, ok bool) {
	for id, mode := range s.modes {
		return id, mode, true
	}
	return "", event.ModeRead, false
}

// ExpandedID returns the currently expanded conversation, or "".
func (s *ConversationStore) ExpandedID() string { return s.expandedID }

// SetExpanded marks id expanded and highlighted.  Unknown ids are ignored.
func (s *ConversationStore) SetExpanded(id string) {
	if !s.Known(id) {
		return
	}
	s.expandedID = id
	s.highlightedID = id
}

// ClearExpanded drops the expanded and highlighted singletons.
func (s *ConversationStore) ClearExpanded() {
	s.expandedID = ""
	s.highlightedID = ""
}

// HighlightedID returns the currently highlighted conversation, or "".
func (s *ConversationStore) HighlightedID() string { return s.highlightedID }

// CollapsingID returns the conversation mid-collapse, or "".
func (s *ConversationStore) CollapsingID() string { return s.collapsingID }

// SetCollapsing marks id as mid-collapse; clearing requires id "".
func (s *ConversationStore) SetCollapsing(id string) {
	if id != "" && !s.Known(id) {
		return
	}
	s.collapsingID = id
}

// PendingHoverID returns the conversation pinned visible under the pointer
// after a collapse, or "".
func (s *ConversationStore) PendingHoverID() string { return s.pendingHoverID }

// SetPendingHover pins id visible after collapse while hovered.
func (s *ConversationStore) SetPendingHover(id string) {
	if id != "" && !s.Known(id) {
		return
	}
	s.pendingHoverID = id
}

// CollapseAnimationID returns the conversation playing a collapse effect.
func (s *ConversationStore) CollapseAnimationID() string { return s.collapseAnimationID }

// SetCollapseAnimation records the conversation playing a collapse effect.
func (s *ConversationStore) SetCollapseAnimation(id string) {
	if id != "" && !s.Known(id) {
		return
	}
	s.collapseAnimationID = id
}

// MarkRead adds id to the read overlay set.
func (s *ConversationStore) MarkRead(id string) {
	if !s.Known(id) {
		return
	}
	s.read[id] = struct{}{}
}

// IsRead reports whether id has been read, either per the host snapshot or
// the local overlay set.
func (s *ConversationStore) IsRead(id string) bool {
	if _, ok := s.read[id]; ok {
		return true
	}
	if r, ok := s.Record(id); ok {
		return !r.Unread
	}
	return false
}

// SetHovered adds or removes id from the hovered set.
func (s *ConversationStore) SetHovered(id string, hovered bool) {
	if !s.Known(id) {
		return
	}
	if hovered {
		s.hovered[id] = struct{}{}
	} else {
		delete(s.hovered, id)
	}
}

// IsHovered reports whether the pointer is over id.
func (s *ConversationStore) IsHovered(id string) bool {
	_, ok := s.hovered[id]
	return ok
}

// BeginDismiss marks id as fading out.  The record stays rendered (with
// pointer events disabled) so the exit effect can play; FinalizeDismiss
// completes the removal.  Already-dismissed ids are ignored.
func (s *ConversationStore) BeginDismiss(id string) {
	if !s.Known(id) {
		return
	}
	if _, ok := s.dismissed[id]; ok {
		return
	}
	s.fadingOut[id] = struct{}{}
	if s.expandedID == id {
		s.ClearExpanded()
	}
	if s.highlightedID == id {
		s.highlightedID = ""
	}
}

// IsFading reports whether id is playing its exit effect.
func (s *ConversationStore) IsFading(id string) bool {
	_, ok := s.fadingOut[id]
	return ok
}

// FinalizeDismiss moves id into the terminal dismissed set and purges its
// transient flags.  Idempotent: calling twice equals calling once.
func (s *ConversationStore) FinalizeDismiss(id string) {
	if id == "" {
		return
	}
	delete(s.fadingOut, id)
	delete(s.hovered, id)
	delete(s.read, id)
	delete(s.modes, id)
	if s.expandedID == id {
		s.ClearExpanded()
	}
	if s.highlightedID == id {
		s.highlightedID = ""
	}
	if s.collapsingID == id {
		s.collapsingID = ""
	}
	if s.pendingHoverID == id {
		s.pendingHoverID = ""
	}
	if s.collapseAnimationID == id {
		s.collapseAnimationID = ""
	}
	s.dismissed[id] = struct{}{}
}

// IsDismissed reports whether id has been finalized out of the visible set.
func (s *ConversationStore) IsDismissed(id string) bool {
	_, ok := s.dismissed[id]
	return ok
}
