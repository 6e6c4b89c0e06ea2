package render

import (
	"github.com/rs/zerolog"
)

// NopSurface discards frames; useful in tests exercising projection only.
type NopSurface struct{}

// Apply implements Surface.
func (NopSurface) Apply(Frame) {}

// Clear implements Surface.
func (NopSurface) Clear() {}

// LogSurface writes each applied frame to a logger, one line per frame
// element.  The demo daemon uses it as its paint target.
type LogSurface struct {
	Logger zerolog.Logger
}

// Apply implements Surface.
func (s LogSurface) Apply(f Frame) {
	s.Logger.Info().
		Int("conversations", len(f.Conversations)).
		Int("slots", len(f.ComposeSlots)).
		Bool("search", f.Toolbar.SearchActive).
		Msg("Frame")
	s.Logger.Debug().Msg(f.String())
}

// Clear implements Surface.
func (s LogSurface) Clear() {
	s.Logger.Info().Msg("Surface cleared")
}
