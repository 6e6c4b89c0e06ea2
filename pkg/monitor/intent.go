package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// IntentSink accepts injected intents and transition completions.  The
// coordinator satisfies it.
type IntentSink interface {
	Do(intent event.Intent)
	CompleteTransition(key string)
}

// intentRequest is the JSON body of POST /api/v1/intent; op selects the
// variant and the remaining fields supply its parameters.
type intentRequest struct {
	Op      string `json:"op"`
	ID      string `json:"id,omitempty"`
	Index   int    `json:"index,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Action  string `json:"action,omitempty"`
	Filter  string `json:"filter,omitempty"`
	Query   string `json:"query,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	Enter   bool   `json:"enter,omitempty"`
	Open    bool   `json:"open,omitempty"`
	Inside  bool   `json:"inside,omitempty"`
}

// intentV1 decodes and injects one intent into the engine.
func (s *Server) intentV1(w http.ResponseWriter, req *http.Request) error {
	var ir intentRequest
	if err := json.NewDecoder(req.Body).Decode(&ir); err != nil {
		http.Error(w, "Unable to decode intent: "+err.Error(), http.StatusBadRequest)
		return nil
	}
	intent, err := ir.intent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	s.sink.Do(intent)
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// transitionV1 reports a genuine end-of-transition signal for the keyed
// transition.
func (s *Server) transitionV1(w http.ResponseWriter, req *http.Request) error {
	key := mux.Vars(req)["key"]
	if key == "" {
		http.Error(w, "Missing transition key", http.StatusBadRequest)
		return nil
	}
	s.sink.CompleteTransition(key)
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// intent maps the request onto an intent variant.
func (ir *intentRequest) intent() (event.Intent, error) {
	switch ir.Op {
	case "toggle":
		return event.Toggle{ID: ir.ID}, nil
	case "hover":
		return event.Hover{ID: ir.ID, Enter: ir.Enter}, nil
	case "dismiss":
		return event.Dismiss{ID: ir.ID}, nil
	case "preview":
		return event.PreviewAction{ID: ir.ID, Mode: event.Mode(ir.Mode)}, nil
	case "composer":
		return event.ComposerAction{
			Op:    event.ComposerOp(ir.Action),
			ID:    ir.ID,
			Index: ir.Index,
		}, nil
	case "new_compose":
		return event.NewCompose{}, nil
	case "draft_edit":
		return event.DraftEdit{
			Index:   ir.Index,
			To:      ir.To,
			Subject: ir.Subject,
			Body:    ir.Body,
		}, nil
	case "toggle_search":
		return event.ToggleSearch{Open: ir.Open}, nil
	case "search_input":
		return event.SearchInput{Query: ir.Query}, nil
	case "rotate_filter":
		return event.RotateFilter{Filter: event.Filter(ir.Filter)}, nil
	case "pointer_down":
		return event.PointerDown{Inside: ir.Inside}, nil
	case "click_outside":
		return event.ClickOutside{}, nil
	}
	return nil, fmt.Errorf("unknown intent op %q", ir.Op)
}
