package test

import (
	"sync"
	"testing"
	"time"

	"github.com/veildesk/veildesk/pkg/overlay/render"
)

// CaptureSurface records every frame applied to it, letting tests assert on
// the sequence of repaints the engine requested.
type CaptureSurface struct {
	mu      sync.Mutex
	frames  []render.Frame
	cleared int
	notify  chan render.Frame
}

// NewCaptureSurface constructs a CaptureSurface with room for bufferLen
// unconsumed frame notifications.
func NewCaptureSurface(bufferLen int) *CaptureSurface {
	return &CaptureSurface{notify: make(chan render.Frame, bufferLen)}
}

// Apply implements render.Surface.
func (s *CaptureSurface) Apply(f render.Frame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
	select {
	case s.notify <- f:
	default:
		// Test is not consuming notifications, history still records.
	}
}

// Clear implements render.Surface.
func (s *CaptureSurface) Clear() {
	s.mu.Lock()
	s.cleared++
	s.mu.Unlock()
}

// Frames returns a copy of all applied frames, oldest first.
func (s *CaptureSurface) Frames() []render.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]render.Frame(nil), s.frames...)
}

// LastFrame returns the most recently applied frame, or false when none.
func (s *CaptureSurface) LastFrame() (render.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return render.Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// ClearCount returns how many times the surface was cleared.
func (s *CaptureSurface) ClearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// WaitFrame requires a frame to be applied within two seconds and returns it.
func (s *CaptureSurface) WaitFrame(t *testing.T) render.Frame {
	t.Helper()
	select {
	case f := <-s.notify:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("No frame applied within timeout")
		return render.Frame{}
	}
}
