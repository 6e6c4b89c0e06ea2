package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/veildesk/veildesk/pkg/monitor/client"
)

type frameCmd struct {
	jsonOut bool
}

func (*frameCmd) Name() string {
	return "frame"
}

func (*frameCmd) Synopsis() string {
	return "print the current overlay frame"
}

func (*frameCmd) Usage() string {
	return `frame:
	print the overlay frame the daemon most recently rendered
`
}

func (fc *frameCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&fc.jsonOut, "json", false, "print the frame as JSON")
}

func (fc *frameCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	frame, err := c.Frame(ctx)
	if err != nil {
		return fatal("Monitor call failed", err)
	}

	if fc.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frame); err != nil {
			return fatal("Couldn't encode frame", err)
		}
		return subcommands.ExitSuccess
	}

	fmt.Print(frame.String())
	return subcommands.ExitSuccess
}
