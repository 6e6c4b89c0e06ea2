package event

// Intent is a user-originated request for the overlay to change state.  The
// set of intents is closed; the coordinator handles each variant with a
// single transition function.
type Intent interface {
	intent()
}

// Toggle expands a collapsed conversation or begins collapsing an expanded
// one.
type Toggle struct {
	ID string
}

// Hover reports the pointer entering or leaving a conversation row.
type Hover struct {
	ID    string
	Enter bool
}

// Dismiss removes a conversation (archive or delete action); the fade plays
// before the id is finalized out of the visible set.
type Dismiss struct {
	ID string
}

// PreviewAction attaches an inline composer (reply or forward) to a
// conversation, expanding it if needed.
type PreviewAction struct {
	ID   string
	Mode Mode
}

// ComposerOp distinguishes composer actions.
type ComposerOp string

// Composer operations.
const (
	ComposerSend   ComposerOp = "send"
	ComposerDelete ComposerOp = "delete"
)

// ComposerAction acts on an inline composer (by conversation id) or a
// standalone compose slot (by index).  Exactly one of ID or Index is
// meaningful; Index is ignored when ID is non-empty.
type ComposerAction struct {
	Op    ComposerOp
	ID    string
	Index int
}

// NewCompose opens a fresh standalone compose slot.
type NewCompose struct{}

// DraftEdit updates the draft held by a standalone compose slot.
type DraftEdit struct {
	Index   int
	To      string
	Subject string
	Body    string
}

// ToggleSearch opens or closes the toolbar search control.
type ToggleSearch struct {
	Open bool
}

// SearchInput carries debounced text typed into the search control.
type SearchInput struct {
	Query string
}

// RotateFilter promotes the clicked filter to primary, or toggles the
// secondary row when the primary is clicked.
type RotateFilter struct {
	Filter Filter
}

// PointerDown records the element under the pointer when a press begins;
// paired with a later ClickOutside to reject drags released outside.
type PointerDown struct {
	Inside bool
}

// ClickOutside reports a click whose release landed outside the overlay.
type ClickOutside struct{}

func (Toggle) intent()         {}
func (Hover) intent()          {}
func (Dismiss) intent()        {}
func (PreviewAction) intent()  {}
func (ComposerAction) intent() {}
func (NewCompose) intent()     {}
func (DraftEdit) intent()      {}
func (ToggleSearch) intent()   {}
func (SearchInput) intent()    {}
func (RotateFilter) intent()   {}
func (PointerDown) intent()    {}
func (ClickOutside) intent()   {}
