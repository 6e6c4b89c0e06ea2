package coord

import (
	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/store"
)

// Sender turns a finished draft into an outbound message, returning the
// metadata for the sent event.  The overlay never talks to a mail service
// itself; senders hand the built message to an external collaborator.
type Sender interface {
	Send(draft store.DraftData) (event.SentEvent, error)
}

// SetSender installs the outbound message builder.  Without one, sent events
// carry draft metadata only.
func (c *Coordinator) SetSender(s Sender) {
	c.enqueue(func() { c.sender = s })
}

// composerAction handles send/delete on an inline composer (by conversation
// id) or a standalone compose slot (by index).
func (c *Coordinator) composerAction(it event.ComposerAction) {
	if it.ID != "" {
		c.inlineComposerAction(it.Op, it.ID)
		return
	}
	c.slotComposerAction(it.Op, it.Index)
}

// inlineComposerAction acts on the reply/forward composer attached to a
// conversation.  Delete reverts to read mode and keeps the conversation
// expanded; send additionally emits a sent event for the reply.
func (c *Coordinator) inlineComposerAction(op event.ComposerOp, id string) {
	conv := c.stores.Conversation
	if !conv.Known(id) {
		c.logger.Debug().Str("id", id).Msg("Composer action on stale conversation, ignoring")
		return
	}
	if mode := conv.Mode(id); mode == event.ModeRead {
		c.logger.Debug().Str("id", id).Msg("No inline composer attached, ignoring")
		return
	}
	switch op {
	case event.ComposerSend:
		rec, _ := conv.Record(id)
		draft := store.DraftData{To: rec.Sender, Subject: replySubject(rec.Subject)}
		c.emitSent(draft)
	case event.ComposerDelete:
		// Discarded; nothing to archive for inline composers.
	default:
		c.logger.Warn().Str("op", string(op)).Msg("Unknown composer op, ignoring")
		return
	}
	conv.SetMode(id, event.ModeRead)
	c.render()
}

// slotComposerAction acts on a standalone compose slot.  Send removes the
// slot without archiving; delete archives a non-empty draft first.  Either
// way the slot space stays dense.
func (c *Coordinator) slotComposerAction(op event.ComposerOp, index int) {
	comp := c.stores.Composer
	draft, ok := comp.Draft(index)
	if !ok {
		c.logger.Debug().Int("index", index).Msg("Composer action on missing slot, ignoring")
		return
	}
	switch op {
	case event.ComposerSend:
		comp.MarkSent(index)
		c.emitSent(draft)
	case event.ComposerDelete:
		if comp.ArchiveDraft(index) {
			c.extHost.Events.AfterDraftArchived.Emit(&event.ArchivedDraftEvent{
				To:      draft.To,
				Subject: draft.Subject,
				Body:    draft.Body,
				Date:    draft.Timestamp,
			})
		}
	default:
		c.logger.Warn().Str("op", string(op)).Msg("Unknown composer op, ignoring")
		return
	}
	if serial, ok := comp.Serial(index); ok {
		c.led.CancelScope(slotKey(serial))
		delete(c.pending, slotKey(serial))
	}
	comp.RemoveComposeBox(index)
	c.render()
}

// emitSent builds the outbound message and broadcasts the sent event.
func (c *Coordinator) emitSent(draft store.DraftData) {
	var ev event.SentEvent
	if c.sender != nil {
		var err error
		ev, err = c.sender.Send(draft)
		if err != nil {
			c.logger.Warn().Err(err).Str("to", draft.To).
				Msg("Outbound build failed, emitting metadata only")
			ev = event.SentEvent{To: draft.To, Subject: draft.Subject, Date: draft.Timestamp}
		}
	} else {
		ev = event.SentEvent{To: draft.To, Subject: draft.Subject, Date: draft.Timestamp}
	}
	c.extHost.Events.AfterEmailSent.Emit(&ev)
}

// newCompose opens a fresh standalone compose slot and plays its open
// transition.
func (c *Coordinator) newCompose() {
	comp := c.stores.Composer
	if c.cfg.MaxComposeBoxes > 0 && comp.Count() >= c.cfg.MaxComposeBoxes {
		c.logger.Warn().Int("count", comp.Count()).Msg("Compose slot cap reached, ignoring")
		return
	}
	index := comp.AddComposeBox()
	serial, _ := comp.Serial(index)
	key := slotKey(serial)
	c.schedule(key, key, c.cfg.CollapseDuration, func() {
		// The slot may have shifted or vanished; resolve by serial.
		if i, ok := comp.IndexBySerial(serial); ok {
			comp.SetAnimating(i, false)
			c.render()
		}
	})
	c.render()
}

// draftEdit applies debounced edits to a slot's draft.
func (c *Coordinator) draftEdit(it event.DraftEdit) {
	c.stores.Composer.UpdateDraft(it.Index, it.To, it.Subject, it.Body)
	c.render()
}

// toggleSearch opens the search control via a two-stage timed handoff: at
// half the rotation duration the trigger swaps for a text input, at full
// duration the transition is marked complete.  Closing cancels both stages.
func (c *Coordinator) toggleSearch(open bool) {
	bar := c.stores.Toolbar
	if !open {
		c.closeSearch()
		return
	}
	if bar.SearchActive() || bar.SearchRotating() {
		return
	}
	bar.SetSearchRotating(true)
	c.schedule(searchScope, searchHalfKey, c.cfg.RotateDuration/2, func() {
		bar.SetSearchActive(true)
		c.render()
	})
	c.schedule(searchScope, searchFullKey, c.cfg.RotateDuration, func() {
		bar.SetSearchRotating(false)
		c.render()
	})
	c.render()
}

// closeSearch reverses the trigger swap and clears the query.  Safe while
// the opening rotation is still in flight: both stage timers are cancelled.
func (c *Coordinator) closeSearch() {
	c.led.CancelScope(searchScope)
	delete(c.pending, searchHalfKey)
	delete(c.pending, searchFullKey)
	c.stores.Toolbar.SetSearchRotating(false)
	c.stores.Toolbar.SetSearchActive(false)
	c.render()
}

// searchInput applies debounced search text.
func (c *Coordinator) searchInput(query string) {
	bar := c.stores.Toolbar
	if !bar.SearchActive() {
		c.logger.Debug().Msg("Search input while inactive, ignoring")
		return
	}
	bar.SetSearchQuery(query)
	c.render()
}

// rotateFilter promotes a secondary filter to primary, or toggles the
// secondary row when the primary is clicked again.
func (c *Coordinator) rotateFilter(f event.Filter) {
	bar := c.stores.Toolbar
	if f == bar.PrimaryFilter() {
		bar.SetSecondaryCollapsed(!bar.SecondaryCollapsed())
	} else {
		bar.RotateFilterButtons(f)
		bar.SetSecondaryCollapsed(true)
	}
	c.render()
}

// clickOutside handles a click released outside the overlay.  A press that
// began inside (a drag released outside) does not count.  At most one thing
// closes per outside click: search, then an open compose slot, then the
// expanded conversation.
func (c *Coordinator) clickOutside() {
	if c.pointerDownInside {
		return
	}
	bar := c.stores.Toolbar
	comp := c.stores.Composer
	conv := c.stores.Conversation
	switch {
	case bar.SearchActive() || bar.SearchRotating():
		c.closeSearch()
	case comp.ExpandedIndex() >= 0:
		// Draft content stays in the slot; only the expansion collapses.
		comp.CollapseExpanded()
		c.render()
	case conv.ExpandedID() != "":
		c.beginCollapse(conv.ExpandedID())
	}
}

// replySubject prefixes Re: unless already present.
func replySubject(subject string) string {
	if len(subject) >= 3 && (subject[:3] == "Re:" || subject[:3] == "RE:") {
		return subject
	}
	return "Re: " + subject
}
