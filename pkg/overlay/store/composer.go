package store

import (
	"time"
)

// Attachment is a file attached to a draft.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// DraftData is the content of one compose slot.
type DraftData struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
	Dirty       bool
	Timestamp   time.Time
}

// Empty reports whether the draft carries no user content.
func (d DraftData) Empty() bool {
	return d.To == "" && d.Subject == "" && d.Body == "" && len(d.Attachments) == 0
}

// ArchivedDraft is a draft moved out of the live slot space on non-send
// removal, retained for audit.  The archive is append-only.
type ArchivedDraft struct {
	Draft      DraftData
	ArchivedAt time.Time
}

// slot is one entry in the dense compose index space.  The serial survives
// reindexing, giving timers a stable way to find a slot after removals shift
// the index space.
type slot struct {
	serial    uint64
	draft     DraftData
	sent      bool
	animating bool
}

// ComposerStore tracks standalone compose slots.  Slot indices are always
// contiguous [0, Count()); removal shifts higher slots down, preserving
// relative order, so no gaps are ever observable.
type ComposerStore struct {
	slots      []*slot
	expanded   int // -1 when no slot is expanded
	archived   []ArchivedDraft
	nextSerial uint64
	now        func() time.Time
}

// NewComposerStore returns an empty store.  The now func stamps drafts and
// archives; tests inject a fixed clock.
func NewComposerStore(now func() time.Time) *ComposerStore {
	if now == nil {
		now = time.Now
	}
	s := &ComposerStore{now: now}
	s.Reset()
	return s
}

// Reset restores the empty initial state, dropping the archive as well.
func (s *ComposerStore) Reset() {
	s.slots = nil
	s.expanded = -1
	s.archived = nil
}

// Count returns the number of live compose slots.
func (s *ComposerStore) Count() int { return len(s.slots) }

// valid reports whether index addresses a live slot.
func (s *ComposerStore) valid(index int) bool {
	return index >= 0 && index < len(s.slots)
}

// AddComposeBox appends a slot seeded with an empty draft, marks it expanded
// and animating, and returns its index.
func (s *ComposerStore) AddComposeBox() int {
	s.nextSerial++
	s.slots = append(s.slots, &slot{
		serial:    s.nextSerial,
		draft:     DraftData{Timestamp: s.now()},
		animating: true,
	})
	index := len(s.slots) - 1
	s.expanded = index
	return index
}

// Serial returns the stable identity of the slot at index.
func (s *ComposerStore) Serial(index int) (uint64, bool) {
	if !s.valid(index) {
		return 0, false
	}
	return s.slots[index].serial, true
}

// IndexBySerial resolves a slot serial back to its current index.  Returns
// false when the slot has since been removed.
func (s *ComposerStore) IndexBySerial(serial uint64) (int, bool) {
	for i, sl := range s.slots {
		if sl.serial == serial {
			return i, true
		}
	}
	return -1, false
}

// RemoveComposeBox deletes the slot at index, renumbering survivors in their
// original relative order.  The expanded index is unchanged when it pointed
// below index, cleared when it equaled index, and decremented when above.
func (s *ComposerStore) RemoveComposeBox(index int) {
	if !s.valid(index) {
		return
	}
	survivors := make([]*slot, 0, len(s.slots)-1)
	for i, sl := range s.slots {
		if i == index {
			continue
		}
		survivors = append(survivors, sl)
	}
	s.slots = survivors
	switch {
	case s.expanded == index:
		s.expanded = -1
	case s.expanded > index:
		s.expanded--
	}
}

// Draft returns a copy of the draft at index.
func (s *ComposerStore) Draft(index int) (DraftData, bool) {
	if !s.valid(index) {
		return DraftData{}, false
	}
	return s.slots[index].draft, true
}

// UpdateDraft replaces the editable fields of the draft at index, marking it
// dirty and refreshing its timestamp.
func (s *ComposerStore) UpdateDraft(index int, to, subject, body string) {
	if !s.valid(index) {
		return
	}
	d := &s.slots[index].draft
	d.To = to
	d.Subject = subject
	d.Body = body
	d.Dirty = true
	d.Timestamp = s.now()
}

// AddAttachment appends an attachment to the draft at index.
func (s *ComposerStore) AddAttachment(index int, att Attachment) {
	if !s.valid(index) {
		return
	}
	d := &s.slots[index].draft
	d.Attachments = append(d.Attachments, att)
	d.Dirty = true
	d.Timestamp = s.now()
}

// MarkSent flags the slot at index as sent.
func (s *ComposerStore) MarkSent(index int) {
	if !s.valid(index) {
		return
	}
	s.slots[index].sent = true
}

// IsSent reports whether the slot at index has been sent.
func (s *ComposerStore) IsSent(index int) bool {
	return s.valid(index) && s.slots[index].sent
}

// SetAnimating flags the slot at index as mid-transition.
func (s *ComposerStore) SetAnimating(index int, animating bool) {
	if !s.valid(index) {
		return
	}
	s.slots[index].animating = animating
}

// IsAnimating reports whether the slot at index is mid-transition.
func (s *ComposerStore) IsAnimating(index int) bool {
	return s.valid(index) && s.slots[index].animating
}

// ExpandedIndex returns the expanded slot index, or -1.
func (s *ComposerStore) ExpandedIndex() int { return s.expanded }

// SetExpanded expands the slot at index; out-of-range indices are ignored.
func (s *ComposerStore) SetExpanded(index int) {
	if !s.valid(index) {
		return
	}
	s.expanded = index
}

// CollapseExpanded clears the expanded slot, if any.
func (s *ComposerStore) CollapseExpanded() {
	s.expanded = -1
}

// ArchiveDraft appends the draft at index to the archive unless it is empty.
// The slot itself is untouched; callers remove it separately.
func (s *ComposerStore) ArchiveDraft(index int) bool {
	if !s.valid(index) {
		return false
	}
	d := s.slots[index].draft
	if d.Empty() {
		return false
	}
	s.archived = append(s.archived, ArchivedDraft{Draft: d, ArchivedAt: s.now()})
	return true
}

// ArchivedDrafts returns the append-only archive.
func (s *ComposerStore) ArchivedDrafts() []ArchivedDraft {
	return s.archived
}
