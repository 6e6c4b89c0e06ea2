package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

const sentEventName = "sent_event"

func registerSentEventType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(sentEventName)
	ls.SetGlobal(sentEventName, mt)

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(sentEventIndex))
}

func wrapSentEvent(ls *lua.LState, val *event.SentEvent) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(sentEventName))

	return ud
}

func checkSentEvent(ls *lua.LState, pos int) *event.SentEvent {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.SentEvent); ok {
		return v
	}
	ls.ArgError(1, sentEventName+" expected")
	return nil
}

// Gets a field value from a sent email event user object.
func sentEventIndex(ls *lua.LState) int {
	s := checkSentEvent(ls, 1)
	field := ls.CheckString(2)

	// Push the requested field's value onto the stack.
	switch field {
	case "to":
		ls.Push(lua.LString(s.To))
	case "subject":
		ls.Push(lua.LString(s.Subject))
	case "size":
		ls.Push(lua.LNumber(s.Size))
	case "date":
		ls.Push(lua.LNumber(s.Date.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}
