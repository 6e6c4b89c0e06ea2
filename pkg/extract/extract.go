// Package extract turns host conversation-row markup into flat
// ConversationRecord lists.  It is a pure collaborator of the overlay
// engine: stateless, no timers, no stores.
package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/veildesk/veildesk/pkg/extract/sanitize"
	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/stringutil"
)

// Attributes hosts use to carry their own conversation identifier.
var idAttrs = []string{"data-thread-id", "data-legacy-thread-id"}

// Date layouts observed in host row markup, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	"Jan 2, 2006",
	"Jan 2",
	"3:04 PM",
}

// Extractor converts sanitized host rows into conversation records.
type Extractor struct {
	// SnippetLength bounds snippet runes; 0 disables truncation.
	SnippetLength int
}

// Records extracts a record from each row, in order.  Rows for which neither
// a sender nor a subject can be determined are dropped.
func (e *Extractor) Records(rows []string) []event.ConversationRecord {
	records := make([]event.ConversationRecord, 0, len(rows))
	for i, markup := range rows {
		rec, ok := e.record(markup, i)
		if !ok {
			log.Debug().Str("module", "extract").Int("row", i).
				Msg("Dropping row; no sender or subject")
			continue
		}
		records = append(records, rec)
	}
	return records
}

// record extracts a single row, returning ok=false for undeterminable rows.
func (e *Extractor) record(markup string, index int) (rec event.ConversationRecord, ok bool) {
	clean, err := sanitize.Row(markup)
	if err != nil {
		log.Warn().Str("module", "extract").Int("row", index).Err(err).
			Msg("Failed to sanitize row markup")
		return rec, false
	}
	root, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		log.Warn().Str("module", "extract").Int("row", index).Err(err).
			Msg("Failed to parse row markup")
		return rec, false
	}
	w := &rowWalk{}
	w.visit(root)
	if w.sender == "" && w.subject == "" {
		return rec, false
	}
	rec = event.ConversationRecord{
		ID:      w.id,
		Sender:  w.sender,
		Subject: w.subject,
		Snippet: w.snippet,
		Date:    w.date,
		Unread:  w.unread,
	}
	if rec.ID == "" {
		rec.ID = stringutil.HashRecordID(rec.Sender, rec.Subject, index)
	}
	if e.SnippetLength > 0 {
		rec.Snippet = stringutil.Ellipsis(rec.Snippet, e.SnippetLength)
	}
	return rec, true
}

// rowWalk accumulates row fields during a node traversal.  First match wins
// for each field.
type rowWalk struct {
	id      string
	sender  string
	subject string
	snippet string
	date    time.Time
	unread  bool
}

func (w *rowWalk) visit(n *html.Node) {
	if n.Type == html.ElementNode {
		w.visitElement(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

func (w *rowWalk) visitElement(n *html.Node) {
	if w.id == "" {
		for _, name := range idAttrs {
			if v := attr(n, name); v != "" {
				w.id = v
				break
			}
		}
	}
	classes := strings.Fields(attr(n, "class"))
	for _, class := range classes {
		switch class {
		case "unread":
			w.unread = true
		case "sender", "from":
			if w.sender == "" {
				w.sender = senderText(n)
				if boldStyle(attr(n, "style")) {
					w.unread = true
				}
			}
		case "subject":
			if w.subject == "" {
				w.subject = stringutil.CompactWS(text(n))
				if boldStyle(attr(n, "style")) {
					w.unread = true
				}
			}
		case "snippet", "snip":
			if w.snippet == "" {
				w.snippet = stringutil.CompactWS(text(n))
			}
		}
	}
	if n.Data == "time" && w.date.IsZero() {
		w.date = parseDate(attr(n, "datetime"), text(n))
	}
}

// senderText prefers the host's name/email attributes over element text.
func senderText(n *html.Node) string {
	if v := attr(n, "name"); v != "" {
		return stringutil.CompactWS(v)
	}
	if v := attr(n, "email"); v != "" {
		return stringutil.CompactWS(v)
	}
	return stringutil.CompactWS(text(n))
}

// boldStyle reports whether an inline style requests bold text, which some
// hosts use instead of an unread class.
func boldStyle(style string) bool {
	w := sanitize.FontWeight(style)
	if w == "" {
		return false
	}
	if strings.EqualFold(w, "bold") || strings.EqualFold(w, "bolder") {
		return true
	}
	if num, err := strconv.Atoi(w); err == nil {
		return num >= 600
	}
	return false
}

func parseDate(datetime, fallback string) time.Time {
	candidates := []string{datetime, stringutil.CompactWS(fallback)}
	for _, v := range candidates {
		if v == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
