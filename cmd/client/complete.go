package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/veildesk/veildesk/pkg/monitor/client"
)

type completeCmd struct{}

func (*completeCmd) Name() string {
	return "complete"
}

func (*completeCmd) Synopsis() string {
	return "signal a genuine end-of-transition"
}

func (*completeCmd) Usage() string {
	return `complete <key>:
	report a transition end signal, ex: collapse:<id>, fade:<id>, search:full
`
}

func (*completeCmd) SetFlags(f *flag.FlagSet) {}

func (*completeCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key := f.Arg(0)
	if key == "" {
		return usage("transition key required")
	}

	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	if err := c.CompleteTransition(ctx, key); err != nil {
		return fatal("Monitor call failed", err)
	}

	return subcommands.ExitSuccess
}
