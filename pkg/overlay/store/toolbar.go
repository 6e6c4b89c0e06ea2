package store

import (
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// ToolbarStore tracks the search control and filter button row.  Position 0
// of the filter order is the primary (always visible) filter; the rest sit in
// the collapsible secondary row.
type ToolbarStore struct {
	searchActive       bool
	searchRotating     bool
	searchQuery        string
	filterOrder        []event.Filter
	secondaryCollapsed bool
}

// defaultFilterOrder is the initial permutation.
var defaultFilterOrder = []event.Filter{
	event.FilterUnread,
	event.FilterRead,
	event.FilterDraft,
}

// NewToolbarStore returns a store in its initial state.
func NewToolbarStore() *ToolbarStore {
	s := &ToolbarStore{}
	s.Reset()
	return s
}

// Reset restores the initial state.
func (s *ToolbarStore) Reset() {
	s.searchActive = false
	s.searchRotating = false
	s.searchQuery = ""
	s.filterOrder = append([]event.Filter(nil), defaultFilterOrder...)
	s.secondaryCollapsed = true
}

// SearchActive reports whether the search input is open.
func (s *ToolbarStore) SearchActive() bool { return s.searchActive }

// SetSearchActive opens or closes the search input; closing clears the query.
func (s *ToolbarStore) SetSearchActive(active bool) {
	s.searchActive = active
	if !active {
		s.searchQuery = ""
	}
}

// SearchRotating reports whether the search control's rotation effect is in
// flight; the renderer must not tear the control down mid-effect.
func (s *ToolbarStore) SearchRotating() bool { return s.searchRotating }

// SetSearchRotating records the rotation effect state.
func (s *ToolbarStore) SetSearchRotating(rotating bool) {
	s.searchRotating = rotating
}

// SearchQuery returns the current search text.
func (s *ToolbarStore) SearchQuery() string { return s.searchQuery }

// SetSearchQuery records search text; ignored while the input is closed.
func (s *ToolbarStore) SetSearchQuery(query string) {
	if !s.searchActive {
		return
	}
	s.searchQuery = query
}

// FilterOrder returns the filter permutation, primary first.
func (s *ToolbarStore) FilterOrder() []event.Filter {
	return s.filterOrder
}

// PrimaryFilter returns the filter at position 0.
func (s *ToolbarStore) PrimaryFilter() event.Filter {
	return s.filterOrder[0]
}

// RotateFilterButtons promotes clicked to primary, keeping the remaining
// filters in their original relative order.  Clicking the current primary is
// a no-op; unknown filters are ignored.
func (s *ToolbarStore) RotateFilterButtons(clicked event.Filter) {
	if clicked == s.filterOrder[0] {
		return
	}
	found := false
	next := make([]event.Filter, 0, len(s.filterOrder))
	next = append(next, clicked)
	for _, f := range s.filterOrder {
		if f == clicked {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		return
	}
	s.filterOrder = next
}

// SecondaryCollapsed reports whether the secondary filter row is collapsed.
func (s *ToolbarStore) SecondaryCollapsed() bool { return s.secondaryCollapsed }

// SetSecondaryCollapsed collapses or expands the secondary filter row.
func (s *ToolbarStore) SetSecondaryCollapsed(collapsed bool) {
	s.secondaryCollapsed = collapsed
}
