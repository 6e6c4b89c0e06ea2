// Package luahost loads a user Lua script and bridges its functions onto the
// extension host events, letting deployments observe or veto overlay
// transitions without rebuilding the daemon.
package luahost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// Lua function names listeners may define on the veildesk global.
const (
	afterConversationDismissedName = "after.conversation_dismissed"
	afterDraftArchivedName         = "after.draft_archived"
	afterEmailSentName             = "after.email_sent"
	afterSnapshotAppliedName       = "after.snapshot_applied"
	beforeConversationDismissName  = "before.conversation_dismissed"
)

// Host of Lua extensions.
type Host struct {
	Functions  []string // Functions detected in lua script.
	extHost    *extension.Host
	pool       *statePool
	logContext zerolog.Context
}

// New constructs a new Lua Host, pre-compiling the source.  Returns nil
// without error when no script is configured or present.
func New(conf config.Lua, extHost *extension.Host) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	logContext := log.With().Str("module", "lua")
	logger := logContext.Str("phase", "startup").Str("path", scriptPath).Logger()

	if fi, err := os.Stat(scriptPath); err != nil {
		logger.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("Lua script %v is a directory", scriptPath)
	}

	logger.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(logger, extHost, bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a new Lua Host, loading Lua source from the
// provided reader.  The provided path is used in logging and error messages.
func NewFromReader(
	logger zerolog.Logger,
	extHost *extension.Host,
	r io.Reader,
	path string,
) (*Host, error) {
	// Pre-parse, and compile script.
	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	// Build the pool and confirm LState is retrievable.
	pool := newStatePool(logger, proto)
	h := &Host{
		extHost:    extHost,
		pool:       pool,
		logContext: logger.With(),
	}
	ls, err := pool.getState()
	if err != nil {
		return nil, err
	}
	h.detectFunctions(ls)
	pool.putState(ls)
	h.wireFunctions()

	return h, nil
}

// CreateChannel creates a channel and places it into the named global variable
// in newly created LStates.
func (h *Host) CreateChannel(name string) chan lua.LValue {
	return h.pool.createChannel(name)
}

// detectFunctions records which veildesk event functions the script defined.
func (h *Host) detectFunctions(ls *lua.LState) {
	vd, err := getVeildesk(ls)
	if err != nil {
		logger := h.logContext.Logger()
		logger.Error().Err(err).Msg("veildesk global missing")
		return
	}
	if vd.After.ConversationDismissed != nil {
		h.Functions = append(h.Functions, afterConversationDismissedName)
	}
	if vd.After.DraftArchived != nil {
		h.Functions = append(h.Functions, afterDraftArchivedName)
	}
	if vd.After.EmailSent != nil {
		h.Functions = append(h.Functions, afterEmailSentName)
	}
	if vd.After.SnapshotApplied != nil {
		h.Functions = append(h.Functions, afterSnapshotAppliedName)
	}
	if vd.Before.ConversationDismiss != nil {
		h.Functions = append(h.Functions, beforeConversationDismissName)
	}
}

// wireFunctions registers extension host listeners for each detected
// function.
func (h *Host) wireFunctions() {
	events := h.extHost.Events
	for _, name := range h.Functions {
		switch name {
		case afterConversationDismissedName:
			events.AfterConversationDismissed.AddListener("lua",
				h.handleAfterConversationDismissed)
		case afterDraftArchivedName:
			events.AfterDraftArchived.AddListener("lua", h.handleAfterDraftArchived)
		case afterEmailSentName:
			events.AfterEmailSent.AddListener("lua", h.handleAfterEmailSent)
		case afterSnapshotAppliedName:
			events.AfterSnapshotApplied.AddListener("lua", h.handleAfterSnapshotApplied)
		case beforeConversationDismissName:
			events.BeforeConversationDismiss.AddListener("lua",
				h.handleBeforeConversationDismiss)
		}
	}
}

// withState runs fn with a pooled LState.
func (h *Host) withState(fn func(ls *lua.LState) error) error {
	ls, err := h.pool.getState()
	if err != nil {
		return err
	}
	defer h.pool.putState(ls)
	return fn(ls)
}

// callAfter invokes the LFunction pick selects with a single argument,
// discarding any return value.
func (h *Host) callAfter(
	name string,
	pick func(vd *Veildesk) *lua.LFunction,
	wrap func(ls *lua.LState) lua.LValue,
) {
	err := h.withState(func(ls *lua.LState) error {
		vd, err := getVeildesk(ls)
		if err != nil {
			return err
		}
		fn := pick(vd)
		if fn == nil {
			return nil
		}
		return ls.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, wrap(ls))
	})
	if err != nil {
		logger := h.logContext.Logger()
		logger.Error().Err(err).Str("event", name).
			Msg("Lua event listener failed")
	}
}

func (h *Host) handleAfterConversationDismissed(ev event.DismissedEvent) {
	h.callAfter(afterConversationDismissedName,
		func(vd *Veildesk) *lua.LFunction { return vd.After.ConversationDismissed },
		func(ls *lua.LState) lua.LValue { return wrapConversationEvent(ls, &ev) })
}

func (h *Host) handleAfterDraftArchived(ev event.ArchivedDraftEvent) {
	h.callAfter(afterDraftArchivedName,
		func(vd *Veildesk) *lua.LFunction { return vd.After.DraftArchived },
		func(ls *lua.LState) lua.LValue { return wrapDraftEvent(ls, &ev) })
}

func (h *Host) handleAfterEmailSent(ev event.SentEvent) {
	h.callAfter(afterEmailSentName,
		func(vd *Veildesk) *lua.LFunction { return vd.After.EmailSent },
		func(ls *lua.LState) lua.LValue { return wrapSentEvent(ls, &ev) })
}

func (h *Host) handleAfterSnapshotApplied(ev event.SnapshotEvent) {
	h.callAfter(afterSnapshotAppliedName,
		func(vd *Veildesk) *lua.LFunction { return vd.After.SnapshotApplied },
		func(ls *lua.LState) lua.LValue { return wrapSnapshotEvent(ls, &ev) })
}

// handleBeforeConversationDismiss asks the script whether the dismiss may
// proceed.  A nil return from Lua abstains, deferring to other listeners.
func (h *Host) handleBeforeConversationDismiss(ev event.DismissedEvent) *bool {
	var result *bool
	err := h.withState(func(ls *lua.LState) error {
		vd, err := getVeildesk(ls)
		if err != nil {
			return err
		}
		fn := vd.Before.ConversationDismiss
		if fn == nil {
			return nil
		}
		if err := ls.CallByParam(
			lua.P{Fn: fn, NRet: 1, Protect: true},
			wrapConversationEvent(ls, &ev),
		); err != nil {
			return err
		}
		ret := ls.Get(-1)
		ls.Pop(1)
		if ret != lua.LNil {
			allow := lua.LVAsBool(ret)
			result = &allow
		}
		return nil
	})
	if err != nil {
		logger := h.logContext.Logger()
		logger.Error().Err(err).
			Str("event", beforeConversationDismissName).Msg("Lua event listener failed")
		return nil
	}
	return result
}
