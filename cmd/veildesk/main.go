// main is the veildesk daemon launcher
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/extension/luahost"
	"github.com/veildesk/veildesk/pkg/extract"
	"github.com/veildesk/veildesk/pkg/host"
	"github.com/veildesk/veildesk/pkg/hub"
	"github.com/veildesk/veildesk/pkg/monitor"
	"github.com/veildesk/veildesk/pkg/outbound"
	"github.com/veildesk/veildesk/pkg/overlay/coord"
	"github.com/veildesk/veildesk/pkg/overlay/render"
	"github.com/veildesk/veildesk/pkg/overlay/view"
)

var (
	// version contains the build version number, populated during linking.
	version = "undefined"

	// date contains the build date, populated during linking.
	date = "undefined"
)

func main() {
	// Command line flags.
	help := flag.Bool("help", false, "Displays help on flags and env variables.")
	pidfile := flag.String("pidfile", "", "Write our PID into the specified file.")
	logfile := flag.String("logfile", "stderr", "Write out log into the specified file.")
	logjson := flag.Bool("logjson", false, "Logs are written in JSON format.")
	hostfile := flag.String("hostfile", "",
		"Host snapshot file to shadow, one row of markup per line.")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veildesk [options]")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *help {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "")
		config.Usage()
		return
	}
	// Process configuration.
	config.Version = version
	config.BuildDate = date
	conf, err := config.Process()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	// Logger setup.
	closeLog, err := openLog(conf.LogLevel, *logfile, *logjson)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Log error: %v\n", err)
		os.Exit(1)
	}
	startupLog := log.With().Str("phase", "startup").Logger()
	// Setup signal handler.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	startupLog.Info().Str("version", config.Version).Str("buildDate", config.BuildDate).
		Msg("Veildesk starting")
	// Write pidfile if requested.
	if *pidfile != "" {
		pidf, err := os.Create(*pidfile)
		if err != nil {
			startupLog.Fatal().Err(err).Str("path", *pidfile).Msg("Failed to create pidfile")
		}
		fmt.Fprintf(pidf, "%v\n", os.Getpid())
		if err := pidf.Close(); err != nil {
			startupLog.Fatal().Err(err).Str("path", *pidfile).Msg("Failed to close pidfile")
		}
	}
	// Configure internal services.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	shutdownChan := make(chan bool)
	extHost := extension.NewHost()
	luaHost, err := luahost.New(conf.Lua, extHost)
	if err != nil {
		removePIDFile(*pidfile)
		startupLog.Fatal().Err(err).Str("module", "lua").Msg("Fatal Lua error")
	}
	if luaHost != nil {
		startupLog.Info().Strs("functions", luaHost.Functions).Msg("Lua extensions active")
	}
	eventHub := hub.New(conf.Monitor.History, extHost)
	go eventHub.Start(rootCtx)
	// Assemble the overlay engine.
	stores := coord.NewStores()
	extractor := &extract.Extractor{SnippetLength: conf.Engine.SnippetLength}
	renderer := render.New(stores.Conversation, stores.Composer, stores.Toolbar,
		render.LogSurface{Logger: log.With().Str("module", "surface").Logger()})
	coordinator := coord.New(conf.Engine, stores, extractor, extHost, renderer)
	coordinator.SetSender(outbound.New(conf.Outbound))
	go coordinator.Start(rootCtx)
	// Attach the host page.
	page := newPage(rootCtx, conf, *hostfile)
	tracker := view.New(conf.Tracker, page, coordinator.ApplyViewContext)
	tracker.Start()
	// Start monitor server.
	if conf.Monitor.Enabled {
		server := monitor.NewServer(conf.Monitor, shutdownChan, eventHub, renderer, coordinator)
		go server.Start(rootCtx)
	}
	// Loop forever waiting for signals or shutdown channel.
signalLoop:
	for {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGINT:
				// Shutdown requested
				log.Info().Str("phase", "shutdown").Str("signal", "SIGINT").
					Msg("Received SIGINT, shutting down")
				close(shutdownChan)
			case syscall.SIGTERM:
				// Shutdown requested
				log.Info().Str("phase", "shutdown").Str("signal", "SIGTERM").
					Msg("Received SIGTERM, shutting down")
				close(shutdownChan)
			}
		case <-shutdownChan:
			rootCancel()
			break signalLoop
		}
	}
	// Wait for observation to stop.
	go timedExit(*pidfile)
	tracker.Stop()
	removePIDFile(*pidfile)
	closeLog()
}

// newPage selects the host page implementation: a polled snapshot file, or a
// seeded in-memory page when none was given.
func newPage(ctx context.Context, conf *config.Root, hostfile string) host.Page {
	if hostfile != "" {
		page := host.NewFilePage(hostfile, conf.Tracker.PollInterval)
		go page.Start(ctx)
		return page
	}
	page := host.NewSimPage("inbox")
	page.ReplaceContainer(
		`<div data-thread-id="demo-1" class="unread">`+
			`<span class="sender" name="Morgan Hale" email="morgan@example.com"></span>`+
			`<span class="subject">Welcome to veildesk</span>`+
			`<span class="snippet">Point -hostfile at a snapshot to shadow a real page.</span></div>`,
		`<div data-thread-id="demo-2">`+
			`<span class="sender" name="Robin Vale" email="robin@example.com"></span>`+
			`<span class="subject">Monitor API</span>`+
			`<span class="snippet">Inject intents over POST /api/v1/intent.</span></div>`,
	)
	return page
}

// openLog configures zerolog output, returns func to close logfile.
func openLog(level string, logfile string, json bool) (close func(), err error) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		return nil, fmt.Errorf("Log level %q not one of: debug, info, warn, error", level)
	}
	close = func() {}
	var w io.Writer
	color := runtime.GOOS != "windows"
	switch logfile {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		logf, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriter(logf)
		w = bw
		color = false
		close = func() {
			_ = bw.Flush()
			_ = logf.Close()
		}
	}
	w = zerolog.SyncWriter(w)
	if json {
		log.Logger = log.Output(w)
		return close, nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !color,
	})
	return close, nil
}

// removePIDFile removes the PID file if created.
func removePIDFile(pidfile string) {
	if pidfile != "" {
		if err := os.Remove(pidfile); err != nil {
			log.Error().Str("phase", "shutdown").Err(err).Str("path", pidfile).
				Msg("Failed to remove pidfile")
		}
	}
}

// timedExit is called as a goroutine during shutdown, it will force an exit after 15 seconds.
func timedExit(pidfile string) {
	time.Sleep(15 * time.Second)
	removePIDFile(pidfile)
	log.Error().Str("phase", "shutdown").Msg("Clean shutdown took too long, forcing exit")
	os.Exit(0)
}
