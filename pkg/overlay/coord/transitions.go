package coord

import (
	"strings"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// toggle expands a collapsed conversation, or begins collapsing the one
// already expanded.
func (c *Coordinator) toggle(id string) {
	conv := c.stores.Conversation
	if !conv.Known(id) || conv.IsDismissed(id) || conv.IsFading(id) {
		c.logger.Debug().Str("id", id).Msg("Toggle on stale conversation, ignoring")
		return
	}
	if conv.ExpandedID() == id {
		c.beginCollapse(id)
		return
	}
	c.expand(id, event.ModeRead)
}

// expand makes id the expanded conversation in the given mode.  Only one
// inline composer may be active across the whole list, so any other
// conversation holding a non-read mode reverts first.
func (c *Coordinator) expand(id string, mode event.Mode) {
	conv := c.stores.Conversation
	if other, _, ok := conv.ActiveComposer(); ok && other != id {
		conv.SetMode(other, event.ModeRead)
	}
	// A new transition supersedes anything pending for this conversation.
	c.cancelConversationTimers(id)
	if conv.CollapsingID() == id {
		conv.SetCollapsing("")
		conv.SetCollapseAnimation("")
	}
	conv.SetPendingHover("")
	conv.SetExpanded(id)
	conv.MarkRead(id)
	conv.SetMode(id, mode)
	c.render()
}

// beginCollapse starts the timed collapse of the expanded conversation.  Any
// attached inline composer is removed immediately; the collapse itself races
// a genuine transition-end signal against the fallback timer, and whichever
// fires first finalizes exactly once.
func (c *Coordinator) beginCollapse(id string) {
	conv := c.stores.Conversation
	c.cancelConversationTimers(id)
	conv.SetMode(id, event.ModeRead)
	conv.ClearExpanded()
	conv.SetCollapsing(id)
	conv.SetCollapseAnimation(id)
	c.schedule(convScope(id), collapseKey(id), c.cfg.CollapseDuration, func() {
		c.finishCollapse(id)
	})
	c.render()
}

// finishCollapse finalizes a collapse.  Runs on the actor via the ledger, so
// the state it reads is current; a collapse superseded in the meantime shows
// up as a changed collapsingID and degrades to a no-op.
func (c *Coordinator) finishCollapse(id string) {
	conv := c.stores.Conversation
	if conv.CollapsingID() != id {
		c.logger.Debug().Str("id", id).Msg("Collapse superseded before completion")
		return
	}
	conv.SetCollapsing("")
	conv.SetCollapseAnimation("")
	conv.SetMode(id, event.ModeRead)
	if conv.IsHovered(id) {
		// Keep the row visually pinned instead of vanishing under the
		// pointer; it unpins when the hover ends.
		conv.SetPendingHover(id)
	} else {
		conv.SetPendingHover("")
	}
	c.render()
}

// hover tracks pointer enter/leave over a conversation row.
func (c *Coordinator) hover(id string, enter bool) {
	conv := c.stores.Conversation
	if !conv.Known(id) {
		return
	}
	conv.SetHovered(id, enter)
	if !enter && conv.PendingHoverID() == id {
		conv.SetPendingHover("")
	}
	c.render()
}

// dismiss begins the two-phase removal of a conversation.  The record keeps
// rendering while its fade plays; finalize happens via the completion token.
func (c *Coordinator) dismiss(id string) {
	conv := c.stores.Conversation
	if !conv.Known(id) || conv.IsDismissed(id) || conv.IsFading(id) {
		c.logger.Debug().Str("id", id).Msg("Dismiss on stale conversation, ignoring")
		return
	}
	ev := c.dismissedEvent(id)
	if res := c.extHost.Events.BeforeConversationDismiss.Emit(&ev); res != nil && !*res {
		c.logger.Info().Str("id", id).Msg("Dismiss vetoed by extension")
		return
	}
	c.cancelConversationTimers(id)
	if conv.CollapsingID() == id {
		conv.SetCollapsing("")
		conv.SetCollapseAnimation("")
	}
	conv.BeginDismiss(id)
	c.schedule(convScope(id), fadeKey(id), c.cfg.FadeDuration, func() {
		c.finalizeDismiss(id)
	})
	c.render()
}

// finalizeDismiss is the only path into the terminal dismissed set.
// Idempotent: the fallback timer and a genuine fade-end signal may both
// arrive.  Requires the fade begun by dismiss to still be in effect, so a
// completion already in flight when a container swap resets the store cannot
// dismiss a fresh conversation reusing the same id.
func (c *Coordinator) finalizeDismiss(id string) {
	conv := c.stores.Conversation
	if conv.IsDismissed(id) || !conv.IsFading(id) {
		return
	}
	ev := c.dismissedEvent(id)
	conv.FinalizeDismiss(id)
	c.extHost.Events.AfterConversationDismissed.Emit(&ev)
	c.render()
}

// previewAction attaches a reply or forward composer, always transitioning
// through expanded regardless of prior state.
func (c *Coordinator) previewAction(id string, mode event.Mode) {
	conv := c.stores.Conversation
	if !conv.Known(id) || conv.IsDismissed(id) || conv.IsFading(id) {
		c.logger.Debug().Str("id", id).Str("mode", string(mode)).
			Msg("Preview action on stale conversation, ignoring")
		return
	}
	if mode != event.ModeReply && mode != event.ModeForward {
		c.logger.Warn().Str("mode", string(mode)).Msg("Invalid preview mode, ignoring")
		return
	}
	c.expand(id, mode)
}

// cancelConversationTimers sweeps pending collapse/fade timers for id.
func (c *Coordinator) cancelConversationTimers(id string) {
	c.led.CancelScope(convScope(id))
	delete(c.pending, collapseKey(id))
	delete(c.pending, fadeKey(id))
}

// sweepConversationTimers cancels every pending conversation transition,
// snapshot membership notwithstanding.  A fading conversation dropped by an
// interim refresh is no longer in Records() but still holds a live token.
func (c *Coordinator) sweepConversationTimers() {
	for key, t := range c.pending {
		if strings.HasPrefix(key, collapsePrefix) || strings.HasPrefix(key, fadePrefix) {
			t.Cancel()
			delete(c.pending, key)
		}
	}
}

// dismissedEvent builds the event payload for id from the latest snapshot.
func (c *Coordinator) dismissedEvent(id string) event.DismissedEvent {
	ev := event.DismissedEvent{ID: id}
	if rec, ok := c.stores.Conversation.Record(id); ok {
		ev.Sender = rec.Sender
		ev.Subject = rec.Subject
		ev.Date = rec.Date
	}
	return ev
}
