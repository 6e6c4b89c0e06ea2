// Package coord contains the transition coordinator, the single writer of
// the overlay stores.  It consumes user intents and host snapshots, schedules
// and cancels timed transitions through the ledger, and requests one
// re-render per logical change.
//
// The coordinator is an actor: all state changes run on its goroutine, via
// closures queued on an operation channel.  Timer completions and tracker
// callbacks enqueue themselves the same way, so there is never more than one
// writer and completion ordering is the channel ordering.
package coord

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/extract"
	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/ledger"
	"github.com/veildesk/veildesk/pkg/overlay/store"
)

// Length of the coordinator operation queue.
const opChanLen = 100

// Renderer repaints the overlay from current store state.  Implementations
// must be callable repeatedly without leaking listeners or duplicating
// timers.
type Renderer interface {
	Render()
}

// Stores bundles the three state containers the coordinator owns.
type Stores struct {
	Conversation *store.ConversationStore
	Composer     *store.ComposerStore
	Toolbar      *store.ToolbarStore
}

// NewStores constructs an empty store triad.
func NewStores() Stores {
	return Stores{
		Conversation: store.NewConversationStore(),
		Composer:     store.NewComposerStore(nil),
		Toolbar:      store.NewToolbarStore(),
	}
}

// Coordinator reconciles intents, snapshots, and timer completions into one
// consistent model.
type Coordinator struct {
	cfg       config.Engine
	stores    Stores
	led       *ledger.Ledger
	extractor *extract.Extractor
	extHost   *extension.Host
	renderer  Renderer
	sender    Sender
	logger    zerolog.Logger

	opChan chan func()
	done   chan struct{}

	// pending maps transition keys to their completion tokens so genuine
	// end-of-transition signals can race the fallback timers.
	pending map[string]*ledger.Token

	// pointerDownInside records where the last press began, distinguishing an
	// outside click from a drag released outside.
	pointerDownInside bool

	containerID string
}

// New constructs a Coordinator.  The renderer may be nil until SetRenderer is
// called; intents arriving before that render to nowhere.
func New(cfg config.Engine, stores Stores, extractor *extract.Extractor,
	extHost *extension.Host, renderer Renderer) *Coordinator {

	c := &Coordinator{
		cfg:       cfg,
		stores:    stores,
		extractor: extractor,
		extHost:   extHost,
		renderer:  renderer,
		logger:    log.With().Str("module", "coord").Logger(),
		opChan:    make(chan func(), opChanLen),
		done:      make(chan struct{}),
		pending:   make(map[string]*ledger.Token),
	}
	c.led = ledger.New(c.enqueue)
	return c
}

// Ledger exposes the timer ledger, primarily for tests asserting on
// outstanding tokens.
func (c *Coordinator) Ledger() *ledger.Ledger { return c.led }

// SetRenderer installs the render sink.
func (c *Coordinator) SetRenderer(r Renderer) {
	c.enqueue(func() { c.renderer = r })
}

// Start runs the coordinator loop until ctx is canceled.  All outstanding
// timers are swept on the way out.
func (c *Coordinator) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(c.done)
			c.led.CancelAll()
			return
		case op := <-c.opChan:
			op()
		}
	}
}

// Sync blocks until the coordinator has processed its queue up to this
// point, useful for unit tests.
func (c *Coordinator) Sync() {
	done := make(chan struct{})
	c.enqueue(func() { close(done) })
	select {
	case <-done:
	case <-c.done:
	}
}

// enqueue queues an operation for the actor goroutine.  Operations arriving
// after shutdown are dropped.  Ledger completions re-enter here from the
// actor itself, so opChanLen must stay large relative to intent bursts or the
// actor could block on its own queue.
func (c *Coordinator) enqueue(fn func()) {
	select {
	case <-c.done:
	case c.opChan <- fn:
	}
}

// Do submits a user intent.  Never blocks the caller beyond queue capacity
// and never fails; invalid targets degrade to logged no-ops.
func (c *Coordinator) Do(intent event.Intent) {
	c.enqueue(func() { c.handle(intent) })
}

// handle dispatches one intent variant to its transition function.
func (c *Coordinator) handle(intent event.Intent) {
	switch it := intent.(type) {
	case event.Toggle:
		c.toggle(it.ID)
	case event.Hover:
		c.hover(it.ID, it.Enter)
	case event.Dismiss:
		c.dismiss(it.ID)
	case event.PreviewAction:
		c.previewAction(it.ID, it.Mode)
	case event.ComposerAction:
		c.composerAction(it)
	case event.NewCompose:
		c.newCompose()
	case event.DraftEdit:
		c.draftEdit(it)
	case event.ToggleSearch:
		c.toggleSearch(it.Open)
	case event.SearchInput:
		c.searchInput(it.Query)
	case event.RotateFilter:
		c.rotateFilter(it.Filter)
	case event.PointerDown:
		c.pointerDownInside = it.Inside
	case event.ClickOutside:
		c.clickOutside()
	default:
		c.logger.Warn().Type("intent", intent).Msg("Unhandled intent variant")
	}
}

// ApplyViewContext ingests a debounced host snapshot from the view tracker.
func (c *Coordinator) ApplyViewContext(vc event.ViewContext) {
	c.enqueue(func() { c.applyViewContext(vc) })
}

// CompleteTransition reports a genuine end-of-transition signal for the
// given key, racing any fallback timer registered under it.  Unknown keys
// are ignored; a transition may legitimately have finished already.
func (c *Coordinator) CompleteTransition(key string) {
	c.enqueue(func() {
		if t, ok := c.pending[key]; ok {
			t.Fire()
		}
	})
}

// Transition keys understood by CompleteTransition.
const (
	collapsePrefix = "collapse:"
	fadePrefix     = "fade:"
)

func collapseKey(id string) string { return collapsePrefix + id }
func fadeKey(id string) string     { return fadePrefix + id }
func slotKey(serial uint64) string { return fmt.Sprintf("slot:%d", serial) }

// CollapseKey names the collapse transition of a conversation.
func CollapseKey(id string) string { return collapseKey(id) }

// FadeKey names the dismiss fade of a conversation.
func FadeKey(id string) string { return fadeKey(id) }

// Search transition keys and ledger scope.
const (
	searchScope   = "search"
	searchHalfKey = "search:half"
	searchFullKey = "search:full"
)

// convScope is the ledger scope for all timers belonging to one conversation.
func convScope(id string) string { return "conv:" + id }

// schedule registers a fallback-timed completion under scope and records it
// as the pending token for key.
func (c *Coordinator) schedule(scope, key string, d time.Duration, fn func()) {
	t := c.led.Schedule(scope, d, func() {
		delete(c.pending, key)
		fn()
	})
	c.pending[key] = t
}

// applyViewContext reconciles a host snapshot, possibly mid-animation.
func (c *Coordinator) applyViewContext(vc event.ViewContext) {
	if vc.Container == nil {
		// Transient unavailability; keep current model.
		c.logger.Debug().Str("location", vc.Location).
			Msg("Host container unavailable, retaining model")
		return
	}
	conv := c.stores.Conversation
	if id := vc.Container.Identity(); id != c.containerID {
		if c.containerID != "" {
			// Wholesale container swap: conversation state resets and every
			// conversation-scoped timer is stale, including timers for rows an
			// interim refresh already dropped from the snapshot.
			c.logger.Info().Str("container", id).Msg("Primary container replaced, resetting")
			c.sweepConversationTimers()
			conv.Reset()
		}
		c.containerID = id
	}
	conv.SetLocation(vc.Location)
	records := c.extractor.Records(vc.Container.Rows())
	conv.SetConversations(records)
	c.extHost.Events.AfterSnapshotApplied.Emit(&event.SnapshotEvent{
		Location: vc.Location,
		Count:    len(records),
		Date:     vc.Timestamp,
	})
	c.render()
}

// render requests a single repaint for the logical change just applied.
func (c *Coordinator) render() {
	if c.renderer != nil {
		c.renderer.Render()
	}
}
