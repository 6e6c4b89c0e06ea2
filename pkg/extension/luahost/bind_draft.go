package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

const draftEventName = "draft_event"

func registerDraftEventType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(draftEventName)
	ls.SetGlobal(draftEventName, mt)

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(draftEventIndex))
}

func wrapDraftEvent(ls *lua.LState, val *event.ArchivedDraftEvent) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(draftEventName))

	return ud
}

func checkDraftEvent(ls *lua.LState, pos int) *event.ArchivedDraftEvent {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.ArchivedDraftEvent); ok {
		return v
	}
	ls.ArgError(1, draftEventName+" expected")
	return nil
}

// Gets a field value from an archived draft event user object.
func draftEventIndex(ls *lua.LState) int {
	d := checkDraftEvent(ls, 1)
	field := ls.CheckString(2)

	// Push the requested field's value onto the stack.
	switch field {
	case "to":
		ls.Push(lua.LString(d.To))
	case "subject":
		ls.Push(lua.LString(d.Subject))
	case "body":
		ls.Push(lua.LString(d.Body))
	case "date":
		ls.Push(lua.LNumber(d.Date.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}
