package luahost

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

const (
	veildeskName       = "veildesk"
	veildeskAfterName  = "veildesk_after"
	veildeskBeforeName = "veildesk_before"
)

// Veildesk is the script-facing registration object; scripts assign
// functions to its after and before tables.
type Veildesk struct {
	After  VeildeskAfterFuncs
	Before VeildeskBeforeFuncs
}

// VeildeskAfterFuncs holds notification functions, called after the overlay
// has applied a transition.
type VeildeskAfterFuncs struct {
	ConversationDismissed *lua.LFunction
	DraftArchived         *lua.LFunction
	EmailSent             *lua.LFunction
	SnapshotApplied       *lua.LFunction
}

// VeildeskBeforeFuncs holds veto functions, called synchronously before a
// transition is applied.
type VeildeskBeforeFuncs struct {
	ConversationDismiss *lua.LFunction
}

func registerVeildeskTypes(ls *lua.LState) {
	// veildesk type.
	mt := ls.NewTypeMetatable(veildeskName)
	ls.SetField(mt, "__index", ls.NewFunction(veildeskIndex))

	// veildesk.after type.
	mt = ls.NewTypeMetatable(veildeskAfterName)
	ls.SetField(mt, "__index", ls.NewFunction(veildeskAfterIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(veildeskAfterNewIndex))

	// veildesk.before type.
	mt = ls.NewTypeMetatable(veildeskBeforeName)
	ls.SetField(mt, "__index", ls.NewFunction(veildeskBeforeIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(veildeskBeforeNewIndex))

	// veildesk global.
	ud := wrapVeildesk(ls, &Veildesk{})
	ls.SetGlobal(veildeskName, ud)
}

func wrapVeildesk(ls *lua.LState, val *Veildesk) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(veildeskName))

	return ud
}

func wrapVeildeskAfter(ls *lua.LState, val *VeildeskAfterFuncs) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(veildeskAfterName))

	return ud
}

func wrapVeildeskBefore(ls *lua.LState, val *VeildeskBeforeFuncs) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(veildeskBeforeName))

	return ud
}

func getVeildesk(ls *lua.LState) (*Veildesk, error) {
	lv := ls.GetGlobal(veildeskName)
	if lv == nil {
		return nil, errors.New("veildesk object was nil")
	}

	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("veildesk object was type %s instead of UserData", lv.Type())
	}

	val, ok := ud.Value.(*Veildesk)
	if !ok {
		return nil, fmt.Errorf("veildesk object (%v) could not be cast", ud.Value)
	}

	return val, nil
}

func checkVeildesk(ls *lua.LState, pos int) *Veildesk {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*Veildesk); ok {
		return val
	}
	ls.ArgError(1, veildeskName+" expected")
	return nil
}

func checkVeildeskAfter(ls *lua.LState, pos int) *VeildeskAfterFuncs {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*VeildeskAfterFuncs); ok {
		return val
	}
	ls.ArgError(1, veildeskAfterName+" expected")
	return nil
}

func checkVeildeskBefore(ls *lua.LState, pos int) *VeildeskBeforeFuncs {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*VeildeskBeforeFuncs); ok {
		return val
	}
	ls.ArgError(1, veildeskBeforeName+" expected")
	return nil
}

// veildesk getter.
func veildeskIndex(ls *lua.LState) int {
	vd := checkVeildesk(ls, 1)
	field := ls.CheckString(2)

	// Push the requested field's value onto the stack.
	switch field {
	case "after":
		ls.Push(wrapVeildeskAfter(ls, &vd.After))
	case "before":
		ls.Push(wrapVeildeskBefore(ls, &vd.Before))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// veildesk.after getter.
func veildeskAfterIndex(ls *lua.LState) int {
	after := checkVeildeskAfter(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "conversation_dismissed":
		ls.Push(funcOrNil(after.ConversationDismissed))
	case "draft_archived":
		ls.Push(funcOrNil(after.DraftArchived))
	case "email_sent":
		ls.Push(funcOrNil(after.EmailSent))
	case "snapshot_applied":
		ls.Push(funcOrNil(after.SnapshotApplied))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// veildesk.after setter.
func veildeskAfterNewIndex(ls *lua.LState) int {
	after := checkVeildeskAfter(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "conversation_dismissed":
		after.ConversationDismissed = ls.CheckFunction(3)
	case "draft_archived":
		after.DraftArchived = ls.CheckFunction(3)
	case "email_sent":
		after.EmailSent = ls.CheckFunction(3)
	case "snapshot_applied":
		after.SnapshotApplied = ls.CheckFunction(3)
	default:
		ls.RaiseError("invalid veildesk.after index %q", index)
	}

	return 0
}

// veildesk.before getter.
func veildeskBeforeIndex(ls *lua.LState) int {
	before := checkVeildeskBefore(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "conversation_dismissed":
		ls.Push(funcOrNil(before.ConversationDismiss))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// veildesk.before setter.
func veildeskBeforeNewIndex(ls *lua.LState) int {
	before := checkVeildeskBefore(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "conversation_dismissed":
		before.ConversationDismiss = ls.CheckFunction(3)
	default:
		ls.RaiseError("invalid veildesk.before index %q", index)
	}

	return 0
}

func funcOrNil(f *lua.LFunction) lua.LValue {
	if f == nil {
		return lua.LNil
	}

	return f
}
