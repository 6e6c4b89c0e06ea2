package luahost

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

const conversationEventName = "conversation_event"

func registerConversationEventType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(conversationEventName)
	ls.SetGlobal(conversationEventName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(newConversationEvent))

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(conversationEventIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(conversationEventNewIndex))
}

func newConversationEvent(ls *lua.LState) int {
	val := &event.DismissedEvent{}
	ud := wrapConversationEvent(ls, val)
	ls.Push(ud)

	return 1
}

func wrapConversationEvent(ls *lua.LState, val *event.DismissedEvent) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(conversationEventName))

	return ud
}

func checkConversationEvent(ls *lua.LState, pos int) *event.DismissedEvent {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.DismissedEvent); ok {
		return v
	}
	ls.ArgError(1, conversationEventName+" expected")
	return nil
}

// Gets a field value from a conversation event user object.  This emulates a
// Lua table, allowing `conv.subject` instead of `conv:subject()`.
func conversationEventIndex(ls *lua.LState) int {
	c := checkConversationEvent(ls, 1)
	field := ls.CheckString(2)

	// Push the requested field's value onto the stack.
	switch field {
	case "id":
		ls.Push(lua.LString(c.ID))
	case "sender":
		ls.Push(lua.LString(c.Sender))
	case "subject":
		ls.Push(lua.LString(c.Subject))
	case "date":
		ls.Push(lua.LNumber(c.Date.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// Sets a field value on a conversation event user object.
func conversationEventNewIndex(ls *lua.LState) int {
	c := checkConversationEvent(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "id":
		c.ID = ls.CheckString(3)
	case "sender":
		c.Sender = ls.CheckString(3)
	case "subject":
		c.Subject = ls.CheckString(3)
	case "date":
		c.Date = time.Unix(ls.CheckInt64(3), 0)
	default:
		ls.RaiseError("invalid index %q", index)
	}

	return 0
}
