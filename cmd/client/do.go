package main

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/google/subcommands"

	"github.com/veildesk/veildesk/pkg/monitor/client"
)

type doCmd struct {
	id     string
	index  int
	mode   string
	action string
	filter string
	query  string
	open   bool
	enter  bool
	inside bool
}

func (*doCmd) Name() string {
	return "do"
}

func (*doCmd) Synopsis() string {
	return "inject an intent into the overlay engine"
}

func (*doCmd) Usage() string {
	return `do <op>:
	inject an intent; op is one of toggle, hover, dismiss, preview, composer,
	new_compose, draft_edit, toggle_search, search_input, rotate_filter,
	pointer_down, click_outside
`
}

func (d *doCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.id, "id", "", "conversation id")
	f.IntVar(&d.index, "index", 0, "compose slot index")
	f.StringVar(&d.mode, "mode", "", "composer mode: reply or forward")
	f.StringVar(&d.action, "action", "", "composer action: send or delete")
	f.StringVar(&d.filter, "filter", "", "filter button: unread, read, or draft")
	f.StringVar(&d.query, "query", "", "search query text")
	f.BoolVar(&d.open, "open", false, "open rather than close")
	f.BoolVar(&d.enter, "enter", false, "pointer entering rather than leaving")
	f.BoolVar(&d.inside, "inside", false, "press began inside the overlay")
}

func (d *doCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	op := f.Arg(0)
	if op == "" {
		return usage("op required")
	}

	body, err := json.Marshal(map[string]interface{}{
		"op":     op,
		"id":     d.id,
		"index":  d.index,
		"mode":   d.mode,
		"action": d.action,
		"filter": d.filter,
		"query":  d.query,
		"open":   d.open,
		"enter":  d.enter,
		"inside": d.inside,
	})
	if err != nil {
		return fatal("Couldn't encode intent", err)
	}

	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	if err := c.PostIntent(ctx, body); err != nil {
		return fatal("Monitor call failed", err)
	}

	return subcommands.ExitSuccess
}
