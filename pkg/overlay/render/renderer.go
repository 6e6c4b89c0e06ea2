// Package render projects the store triad into frames and applies them to a
// surface.  Rendering is deterministic and re-entrant safe: calling Render
// repeatedly leaks nothing and schedules nothing.
package render

import (
	"reflect"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/store"
	"github.com/veildesk/veildesk/pkg/stringutil"
)

// previewLength bounds the draft body preview in a frame.
const previewLength = 80

// Surface receives projected frames.  Apply is only called when the frame
// differs from the previous one.
type Surface interface {
	Apply(f Frame)
	Clear()
}

// Renderer computes frames from the stores and pushes them to a surface.
type Renderer struct {
	conv    *store.ConversationStore
	comp    *store.ComposerStore
	bar     *store.ToolbarStore
	surface Surface
	logger  zerolog.Logger

	mu   sync.Mutex
	last Frame
}

// New constructs a Renderer over the given stores.  A nil surface renders to
// nowhere but still records frames for CurrentFrame.
func New(conv *store.ConversationStore, comp *store.ComposerStore,
	bar *store.ToolbarStore, surface Surface) *Renderer {

	return &Renderer{
		conv:    conv,
		comp:    comp,
		bar:     bar,
		surface: surface,
		logger:  log.With().Str("module", "render").Logger(),
	}
}

// Render recomputes the visible projection and applies it to the surface
// when it changed.  Must be called from the coordinator goroutine; the
// stores are not safe to read elsewhere.
func (r *Renderer) Render() {
	frame := r.project()
	r.mu.Lock()
	changed := !reflect.DeepEqual(frame, r.last)
	r.last = frame
	r.mu.Unlock()
	if !changed {
		return
	}
	r.logger.Debug().Int("conversations", len(frame.Conversations)).
		Int("slots", len(frame.ComposeSlots)).Msg("Applying frame")
	if r.surface != nil {
		r.surface.Apply(frame)
	}
}

// CurrentFrame returns the most recently rendered frame.  Safe to call from
// any goroutine; the monitor reads it off the HTTP path.
func (r *Renderer) CurrentFrame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Reset tears down the surface and clears every store.
func (r *Renderer) Reset() {
	if r.surface != nil {
		r.surface.Clear()
	}
	r.conv.Reset()
	r.comp.Reset()
	r.bar.Reset()
	r.mu.Lock()
	r.last = Frame{}
	r.mu.Unlock()
}

// project computes the frame from current store state.
func (r *Renderer) project() Frame {
	f := Frame{
		Location:      r.conv.Location(),
		Conversations: []ConversationView{},
		ComposeSlots:  []ComposeSlotView{},
		Toolbar: ToolbarView{
			SearchActive:       r.bar.SearchActive(),
			SearchRotating:     r.bar.SearchRotating(),
			SearchQuery:        r.bar.SearchQuery(),
			FilterOrder:        append([]event.Filter(nil), r.bar.FilterOrder()...),
			SecondaryCollapsed: r.bar.SecondaryCollapsed(),
		},
	}
	for _, rec := range r.conv.Records() {
		if !r.visible(rec) {
			continue
		}
		id := rec.ID
		f.Conversations = append(f.Conversations, ConversationView{
			ID:            id,
			Sender:        rec.Sender,
			Subject:       rec.Subject,
			Snippet:       rec.Snippet,
			Date:          rec.Date,
			Unread:        !r.conv.IsRead(id),
			Mode:          r.conv.Mode(id),
			Expanded:      r.conv.ExpandedID() == id,
			Highlighted:   r.conv.HighlightedID() == id,
			Collapsing:    r.conv.CollapsingID() == id,
			PendingPin:    r.conv.PendingHoverID() == id,
			Fading:        r.conv.IsFading(id),
			Hovered:       r.conv.IsHovered(id),
			PointerEvents: !r.conv.IsFading(id),
		})
	}
	for i := 0; i < r.comp.Count(); i++ {
		draft, _ := r.comp.Draft(i)
		f.ComposeSlots = append(f.ComposeSlots, ComposeSlotView{
			Index:     i,
			To:        draft.To,
			Subject:   draft.Subject,
			Preview:   stringutil.Ellipsis(draft.Body, previewLength),
			Dirty:     draft.Dirty,
			Sent:      r.comp.IsSent(i),
			Animating: r.comp.IsAnimating(i),
			Expanded:  r.comp.ExpandedIndex() == i,
		})
	}
	return f
}

// visible applies the render filters in order: dismissed rows never show;
// read rows only show while active in some way; then the search predicate
// and the primary filter narrow the rest.
func (r *Renderer) visible(rec event.ConversationRecord) bool {
	id := rec.ID
	conv := r.conv
	if conv.IsDismissed(id) {
		return false
	}
	primary := r.bar.PrimaryFilter()
	if conv.IsRead(id) && primary == event.FilterUnread && !r.active(id) && !conv.IsFading(id) {
		return false
	}
	if query := strings.TrimSpace(r.bar.SearchQuery()); r.bar.SearchActive() && query != "" {
		if !matchQuery(rec, query) {
			return false
		}
	}
	switch primary {
	case event.FilterUnread:
		return !conv.IsRead(id) || r.active(id) || conv.IsFading(id)
	case event.FilterRead:
		return conv.IsRead(id)
	case event.FilterDraft:
		return conv.Mode(id) != event.ModeRead
	}
	return true
}

// active reports whether id must stay rendered to finish an interaction or
// in-flight animation.
func (r *Renderer) active(id string) bool {
	conv := r.conv
	return conv.ExpandedID() == id ||
		conv.IsHovered(id) ||
		conv.CollapsingID() == id ||
		conv.PendingHoverID() == id ||
		conv.CollapseAnimationID() == id
}

// matchQuery is the case-insensitive search predicate over sender, subject,
// and snippet.
func matchQuery(rec event.ConversationRecord, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(rec.Sender), q) ||
		strings.Contains(strings.ToLower(rec.Subject), q) ||
		strings.Contains(strings.ToLower(rec.Snippet), q)
}
