package monitor

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/hub"
	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/render"
)

// stubFrames serves a fixed frame.
type stubFrames struct {
	frame render.Frame
}

func (s stubFrames) CurrentFrame() render.Frame { return s.frame }

// stubSink records injected intents and completion keys.
type stubSink struct {
	intents []event.Intent
	keys    []string
}

func (s *stubSink) Do(intent event.Intent)      { s.intents = append(s.intents, intent) }
func (s *stubSink) CompleteTransition(k string) { s.keys = append(s.keys, k) }

func newTestServer(t *testing.T, frames FrameSource, sink IntentSink) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.New(5, extension.NewHost())
	go h.Start(ctx)
	return NewServer(
		config.Monitor{Addr: "127.0.0.1:0", History: 5, Enabled: true},
		make(chan bool), h, frames, sink)
}

func TestFrameV1(t *testing.T) {
	frames := stubFrames{frame: render.Frame{Location: "inbox"}}
	s := newTestServer(t, frames, &stubSink{})
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/api/v1/frame")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"location": "inbox"`)
}

func TestIntentV1(t *testing.T) {
	sink := &stubSink{}
	s := newTestServer(t, stubFrames{}, sink)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	res, err := ts.Client().Post(ts.URL+"/api/v1/intent", "application/json",
		strings.NewReader(`{"op": "toggle", "id": "c1"}`))
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, 202, res.StatusCode)
	require.Len(t, sink.intents, 1)
	assert.Equal(t, event.Toggle{ID: "c1"}, sink.intents[0])
}

func TestIntentV1AllOps(t *testing.T) {
	tests := []struct {
		body string
		want event.Intent
	}{
		{`{"op": "toggle", "id": "c1"}`, event.Toggle{ID: "c1"}},
		{`{"op": "hover", "id": "c1", "enter": true}`, event.Hover{ID: "c1", Enter: true}},
		{`{"op": "dismiss", "id": "c1"}`, event.Dismiss{ID: "c1"}},
		{`{"op": "preview", "id": "c1", "mode": "reply"}`,
			event.PreviewAction{ID: "c1", Mode: event.ModeReply}},
		{`{"op": "composer", "action": "send", "index": 2}`,
			event.ComposerAction{Op: event.ComposerSend, Index: 2}},
		{`{"op": "new_compose"}`, event.NewCompose{}},
		{`{"op": "draft_edit", "index": 1, "to": "b@e.com", "subject": "s", "body": "b"}`,
			event.DraftEdit{Index: 1, To: "b@e.com", Subject: "s", Body: "b"}},
		{`{"op": "toggle_search", "open": true}`, event.ToggleSearch{Open: true}},
		{`{"op": "search_input", "query": "q"}`, event.SearchInput{Query: "q"}},
		{`{"op": "rotate_filter", "filter": "read"}`,
			event.RotateFilter{Filter: event.FilterRead}},
		{`{"op": "pointer_down", "inside": true}`, event.PointerDown{Inside: true}},
		{`{"op": "click_outside"}`, event.ClickOutside{}},
	}

	sink := &stubSink{}
	s := newTestServer(t, stubFrames{}, sink)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	for _, tc := range tests {
		res, err := ts.Client().Post(ts.URL+"/api/v1/intent", "application/json",
			strings.NewReader(tc.body))
		require.NoError(t, err, tc.body)
		res.Body.Close()
		assert.Equal(t, 202, res.StatusCode, tc.body)
	}
	require.Len(t, sink.intents, len(tests))
	for i, tc := range tests {
		assert.Equal(t, tc.want, sink.intents[i])
	}
}

func TestIntentV1BadRequests(t *testing.T) {
	sink := &stubSink{}
	s := newTestServer(t, stubFrames{}, sink)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	// Malformed JSON.
	res, err := ts.Client().Post(ts.URL+"/api/v1/intent", "application/json",
		strings.NewReader(`{not json`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, 400, res.StatusCode)

	// Unknown op.
	res, err = ts.Client().Post(ts.URL+"/api/v1/intent", "application/json",
		strings.NewReader(`{"op": "launch"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, 400, res.StatusCode)

	assert.Empty(t, sink.intents)
}

func TestTransitionV1(t *testing.T) {
	sink := &stubSink{}
	s := newTestServer(t, stubFrames{}, sink)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	res, err := ts.Client().Post(ts.URL+"/api/v1/transition/collapse:c1", "", nil)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, 202, res.StatusCode)
	assert.Equal(t, []string{"collapse:c1"}, sink.keys)
}

func TestEventsV1StreamsHistoryThenLive(t *testing.T) {
	s := newTestServer(t, stubFrames{}, &stubSink{})
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	// Two events land before the client connects.
	s.hub.Dispatch(event.MonitorEvent{Kind: event.KindSnapshot, Location: "inbox"})
	s.hub.Dispatch(event.MonitorEvent{Kind: event.KindDismissed, ID: "c1"})
	s.hub.Sync()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer res.Body.Close()
	defer conn.Close()

	readEvent := func() event.MonitorEvent {
		var ev event.MonitorEvent
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	// History replays in order.
	assert.Equal(t, event.KindSnapshot, readEvent().Kind)
	assert.Equal(t, event.KindDismissed, readEvent().Kind)

	// Then live events follow.
	s.hub.Dispatch(event.MonitorEvent{Kind: event.KindSent, To: "bob@example.com"})
	ev := readEvent()
	assert.Equal(t, event.KindSent, ev.Kind)
	assert.Equal(t, "bob@example.com", ev.To)
}
