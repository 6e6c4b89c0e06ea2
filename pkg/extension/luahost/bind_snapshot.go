package luahost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

const snapshotEventName = "snapshot_event"

func registerSnapshotEventType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(snapshotEventName)
	ls.SetGlobal(snapshotEventName, mt)

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(snapshotEventIndex))
}

func wrapSnapshotEvent(ls *lua.LState, val *event.SnapshotEvent) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(snapshotEventName))

	return ud
}

func checkSnapshotEvent(ls *lua.LState, pos int) *event.SnapshotEvent {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.SnapshotEvent); ok {
		return v
	}
	ls.ArgError(1, snapshotEventName+" expected")
	return nil
}

// Gets a field value from a snapshot event user object.
func snapshotEventIndex(ls *lua.LState) int {
	s := checkSnapshotEvent(ls, 1)
	field := ls.CheckString(2)

	// Push the requested field's value onto the stack.
	switch field {
	case "location":
		ls.Push(lua.LString(s.Location))
	case "count":
		ls.Push(lua.LNumber(s.Count))
	case "date":
		ls.Push(lua.LNumber(s.Date.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}
