// Package config provides the veildesk configuration, loaded from the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const prefix = "veildesk"

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root contains all configuration sections.
type Root struct {
	LogLevel string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Tracker  Tracker
	Engine   Engine
	Outbound Outbound
	Monitor  Monitor
	Lua      Lua
}

// Tracker contains the host page observation configuration.
type Tracker struct {
	Debounce      time.Duration `required:"true" default:"50ms" desc:"Quiet window after host mutations"`
	PollInterval  time.Duration `required:"true" default:"1s" desc:"Host change poll period"`
	RetryInterval time.Duration `required:"true" default:"500ms" desc:"Retry period while container missing"`
}

// Engine contains transition timing for the overlay engine.
type Engine struct {
	CollapseDuration time.Duration `required:"true" default:"300ms" desc:"Conversation collapse transition"`
	FadeDuration     time.Duration `required:"true" default:"200ms" desc:"Dismiss fade transition"`
	RotateDuration   time.Duration `required:"true" default:"400ms" desc:"Search control rotation"`
	SnippetLength    int           `required:"true" default:"120" desc:"Max snippet runes per conversation"`
	MaxComposeBoxes  int           `required:"true" default:"8" desc:"Maximum concurrent compose slots"`
}

// Outbound contains the sent-message builder configuration.
type Outbound struct {
	From     string `required:"true" default:"me@veildesk.local" desc:"From address on built messages"`
	SpoolDir string `desc:"Directory for built .eml files, empty to discard"`
}

// Monitor contains the debug monitor HTTP server configuration.
type Monitor struct {
	Addr    string `required:"true" default:"127.0.0.1:9600" desc:"Monitor IP4 host:port"`
	History int    `required:"true" default:"30" desc:"Event history entries kept for playback"`
	Enabled bool   `required:"true" default:"true" desc:"Serve the debug monitor?"`
}

// Lua contains the extension script configuration.
type Lua struct {
	Path string `default:"veildesk.lua" desc:"Path to hook script"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	if err != nil {
		return nil, err
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c *Root) error {
	if c.Engine.CollapseDuration <= 0 {
		return fmt.Errorf("engine collapse duration must be positive, got %v",
			c.Engine.CollapseDuration)
	}
	if c.Engine.FadeDuration <= 0 {
		return fmt.Errorf("engine fade duration must be positive, got %v",
			c.Engine.FadeDuration)
	}
	if c.Engine.RotateDuration <= 0 {
		return fmt.Errorf("engine rotate duration must be positive, got %v",
			c.Engine.RotateDuration)
	}
	if c.Tracker.Debounce <= 0 {
		return fmt.Errorf("tracker debounce must be positive, got %v", c.Tracker.Debounce)
	}
	return nil
}

const tableFormat = `Veildesk is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to render env config usage: %v\n", err)
		os.Exit(1)
	}
	tabs.Flush()
}
