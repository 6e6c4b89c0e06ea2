package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/veildesk/veildesk/pkg/monitor/client"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

type watchCmd struct {
	kind string
}

func (*watchCmd) Name() string {
	return "watch"
}

func (*watchCmd) Synopsis() string {
	return "stream overlay events"
}

func (*watchCmd) Usage() string {
	return `watch:
	stream overlay events from the daemon, history buffer first
`
}

func (w *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&w.kind, "kind", "", "only print events of this kind")
}

func (w *watchCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	events, err := c.Watch(ctx)
	if err != nil {
		return fatal("Couldn't connect to event stream", err)
	}
	for ev := range events {
		if w.kind != "" && ev.Kind != w.kind {
			continue
		}
		fmt.Println(formatEvent(ev))
	}

	return subcommands.ExitSuccess
}

// formatEvent renders one event per line with kind-specific fields.
func formatEvent(ev event.MonitorEvent) string {
	stamp := ev.Date.Format("15:04:05")
	switch ev.Kind {
	case event.KindDismissed:
		return fmt.Sprintf("%s %-14s id=%s sender=%q subject=%q",
			stamp, ev.Kind, ev.ID, ev.Sender, ev.Subject)
	case event.KindDraftArchived:
		return fmt.Sprintf("%s %-14s to=%q subject=%q", stamp, ev.Kind, ev.To, ev.Subject)
	case event.KindSent:
		return fmt.Sprintf("%s %-14s to=%q subject=%q size=%d",
			stamp, ev.Kind, ev.To, ev.Subject, ev.Size)
	case event.KindSnapshot:
		return fmt.Sprintf("%s %-14s location=%q count=%d",
			stamp, ev.Kind, ev.Location, ev.Count)
	}
	return fmt.Sprintf("%s %s", stamp, ev.Kind)
}
