package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

func records(ids ...string) []event.ConversationRecord {
	recs := make([]event.ConversationRecord, 0, len(ids))
	for i, id := range ids {
		recs = append(recs, event.ConversationRecord{
			ID:      id,
			Sender:  "sender " + id,
			Subject: "subject " + id,
			Date:    time.Date(2026, time.August, 1, 12, i, 0, 0, time.UTC),
			Unread:  true,
		})
	}
	return recs
}

func TestConversationSnapshotRetainsSurvivors(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a", "b", "c"))
	s.SetExpanded("b")
	s.MarkRead("a")

	// b survives the refresh, a vanishes.
	s.SetConversations(records("b", "c", "d"))

	assert.Equal(t, "b", s.ExpandedID(), "expanded should survive the refresh")
	assert.False(t, s.Known("a"))
	assert.True(t, s.Known("d"))
}

func TestConversationSnapshotClearsVanishedSingletons(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a", "b"))
	s.SetExpanded("a")
	s.SetCollapsing("b")

	s.SetConversations(records("c"))

	assert.Empty(t, s.ExpandedID(), "expanded id must never reference a vanished record")
	assert.Empty(t, s.HighlightedID())
	assert.Empty(t, s.CollapsingID())
}

func TestConversationUnknownIDsAreNoOps(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))

	s.SetExpanded("nope")
	s.SetMode("nope", event.ModeReply)
	s.MarkRead("nope")
	s.SetHovered("nope", true)
	s.BeginDismiss("nope")

	assert.Empty(t, s.ExpandedID())
	assert.False(t, s.IsHovered("nope"))
	assert.False(t, s.IsFading("nope"))
	_, _, ok := s.ActiveComposer()
	assert.False(t, ok)
}

func TestConversationModeDefaultsToRead(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))

	assert.Equal(t, event.ModeRead, s.Mode("a"))

	s.SetMode("a", event.ModeReply)
	assert.Equal(t, event.ModeReply, s.Mode("a"))
	id, mode, ok := s.ActiveComposer()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, event.ModeReply, mode)

	// Reverting to read drops the entry entirely.
	s.SetMode("a", event.ModeRead)
	_, _, ok = s.ActiveComposer()
	assert.False(t, ok)
}

func TestConversationReadOverlay(t *testing.T) {
	s := NewConversationStore()
	recs := records("a", "b")
	recs[1].Unread = false
	s.SetConversations(recs)

	assert.False(t, s.IsRead("a"), "unread per snapshot")
	assert.True(t, s.IsRead("b"), "read per snapshot")

	s.MarkRead("a")
	assert.True(t, s.IsRead("a"), "read per overlay set")
}

func TestConversationExpandHighlights(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))

	s.SetExpanded("a")
	assert.Equal(t, "a", s.ExpandedID())
	assert.Equal(t, "a", s.HighlightedID())

	s.ClearExpanded()
	assert.Empty(t, s.ExpandedID())
	assert.Empty(t, s.HighlightedID())
}

func TestConversationDismissLifecycle(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))
	s.SetExpanded("a")
	s.SetHovered("a", true)

	s.BeginDismiss("a")
	assert.True(t, s.IsFading("a"))
	assert.False(t, s.IsDismissed("a"), "fading and dismissed are mutually exclusive")
	assert.Empty(t, s.ExpandedID(), "dismissing collapses the conversation")

	s.FinalizeDismiss("a")
	assert.False(t, s.IsFading("a"), "fading and dismissed are mutually exclusive")
	assert.True(t, s.IsDismissed("a"))
	assert.False(t, s.IsHovered("a"), "finalize purges transient flags")
}

func TestConversationFinalizeDismissIdempotent(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))

	s.BeginDismiss("a")
	s.FinalizeDismiss("a")
	s.FinalizeDismiss("a")

	assert.True(t, s.IsDismissed("a"))
	assert.False(t, s.IsFading("a"))
}

func TestConversationBeginDismissIgnoredWhenDismissed(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a"))

	s.BeginDismiss("a")
	s.FinalizeDismiss("a")
	s.BeginDismiss("a")

	assert.False(t, s.IsFading("a"), "a dismissed conversation must not fade again")
}

func TestConversationDismissedSurvivesRefresh(t *testing.T) {
	s := NewConversationStore()
	s.SetConversations(records("a", "b"))
	s.BeginDismiss("a")
	s.FinalizeDismiss("a")

	// The host may keep listing the row; the dismissal is local state.
	s.SetConversations(records("a", "b"))
	assert.True(t, s.IsDismissed("a"))
}

func TestConversationReset(t *testing.T) {
	s := NewConversationStore()
	s.SetLocation("inbox")
	s.SetConversations(records("a"))
	s.SetExpanded("a")
	s.BeginDismiss("a")

	s.Reset()

	assert.Empty(t, s.Location())
	assert.Empty(t, s.Records())
	assert.Empty(t, s.ExpandedID())
	assert.False(t, s.IsFading("a"))
	assert.False(t, s.IsDismissed("a"))
}
