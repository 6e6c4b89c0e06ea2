// Package monitor serves the veildesk debug monitor: the current overlay
// frame as JSON, plus a websocket stream of overlay events with history
// playback for late joiners.
package monitor

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/hub"
	"github.com/veildesk/veildesk/pkg/overlay/render"
)

// FrameSource provides the most recently rendered frame.  Must be safe for
// concurrent use; the renderer satisfies it.
type FrameSource interface {
	CurrentFrame() render.Frame
}

// handler is an HTTP handler returning an error, reported as a 500.
type handler func(w http.ResponseWriter, req *http.Request) error

// ServeHTTP runs the handler, grabs the error, and reports it.
func (h handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Debug().Str("module", "monitor").Str("remote", req.RemoteAddr).
		Str("method", req.Method).Str("uri", req.RequestURI).Msg("Request")
	if err := h(w, req); err != nil {
		log.Error().Str("module", "monitor").Err(err).Str("uri", req.RequestURI).
			Msg("Error handling request")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Server is the monitor HTTP server.
type Server struct {
	cfg      config.Monitor
	hub      *hub.Hub
	frames   FrameSource
	sink     IntentSink
	shutdown chan bool
	router   *mux.Router
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// NewServer constructs a monitor Server.  A failure after startup closes
// shutdown to request daemon exit.
func NewServer(
	cfg config.Monitor,
	shutdown chan bool,
	h *hub.Hub,
	frames FrameSource,
	sink IntentSink,
) *Server {
	s := &Server{
		cfg:      cfg,
		hub:      h,
		frames:   frames,
		sink:     sink,
		shutdown: shutdown,
		logger:   log.With().Str("module", "monitor").Logger(),
	}
	r := mux.NewRouter()
	r.Handle("/api/v1/frame", handler(s.frameV1)).Methods("GET").Name("FrameV1")
	r.Handle("/api/v1/events", handler(s.eventsV1)).Methods("GET").Name("EventsV1")
	r.Handle("/api/v1/intent", handler(s.intentV1)).Methods("POST").Name("IntentV1")
	r.Handle("/api/v1/transition/{key}", handler(s.transitionV1)).Methods("POST").
		Name("TransitionV1")
	s.router = r
	return s
}

// Start begins listening for HTTP requests and blocks until ctx is canceled.
func (s *Server) Start(ctx context.Context) {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Not ListenAndServe; it lacks a way to close the listener.
	var err error
	s.listener, err = net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to start TCP4 listener")
		s.emergencyShutdown()
		return
	}
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("Monitor listening on TCP4")
	go s.serve(ctx)

	<-ctx.Done()
	s.logger.Debug().Msg("Monitor shutting down on request")
	if err := s.listener.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close monitor listener")
	}
}

// serve blocks until the listener is closed.
func (s *Server) serve(ctx context.Context) {
	err := s.server.Serve(s.listener)
	select {
	case <-ctx.Done():
		// Nop
	default:
		s.logger.Error().Err(err).Msg("Monitor server failed")
		s.emergencyShutdown()
	}
}

// frameV1 writes the current frame as JSON.
func (s *Server) frameV1(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.frames.CurrentFrame())
}

func (s *Server) emergencyShutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}
