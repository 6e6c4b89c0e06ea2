package host

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// FilePage adapts a file on disk into a host page: each non-empty line is one
// row of container markup.  Deleting the file removes the container; creating
// it again installs a fresh one.  The demo daemon points this at a snapshot
// exported from the real webmail page.
type FilePage struct {
	path   string
	poll   time.Duration
	logger zerolog.Logger

	mu         sync.Mutex
	rows       []string
	present    bool
	generation int
	modTime    time.Time
	size       int64

	notify chan struct{}
}

// NewFilePage constructs a FilePage polling path every poll interval.  Call
// Start to begin watching.
func NewFilePage(path string, poll time.Duration) *FilePage {
	return &FilePage{
		path:   path,
		poll:   poll,
		logger: log.With().Str("module", "host").Str("path", path).Logger(),
		notify: make(chan struct{}, 1),
	}
}

// Location implements Page.
func (p *FilePage) Location() string {
	return "file://" + p.path
}

// PrimaryContainer implements Page.
func (p *FilePage) PrimaryContainer() (event.ContainerRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.present {
		return nil, false
	}
	rows := make([]string, len(p.rows))
	copy(rows, p.rows)
	return &fileContainer{
		identity: fmt.Sprintf("%s#%d", p.path, p.generation),
		rows:     rows,
	}, true
}

// Notify implements Page.
func (p *FilePage) Notify() <-chan struct{} {
	return p.notify
}

// Start polls the file until ctx is canceled, pinging observers on change.
func (p *FilePage) Start(ctx context.Context) {
	p.check()
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check()
		}
	}
}

// check reloads the file when its stat info changed.
func (p *FilePage) check() {
	fi, err := os.Stat(p.path)
	if err != nil {
		p.mu.Lock()
		changed := p.present
		p.present = false
		p.rows = nil
		p.mu.Unlock()
		if changed {
			p.logger.Info().Msg("Host snapshot file removed")
			p.ping()
		}
		return
	}
	p.mu.Lock()
	unchanged := p.present && fi.ModTime().Equal(p.modTime) && fi.Size() == p.size
	p.mu.Unlock()
	if unchanged {
		return
	}
	rows, err := readRows(p.path)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to read host snapshot file")
		return
	}
	p.mu.Lock()
	if !p.present {
		// File reappeared; treat it as a brand new container.
		p.generation++
	}
	p.present = true
	p.rows = rows
	p.modTime = fi.ModTime()
	p.size = fi.Size()
	p.mu.Unlock()
	p.logger.Debug().Int("rows", len(rows)).Msg("Host snapshot file loaded")
	p.ping()
}

// ping coalesces mutation notifications.
func (p *FilePage) ping() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// readRows loads one row of markup per non-empty line.
func readRows(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			rows = append(rows, line)
		}
	}
	return rows, scanner.Err()
}

// fileContainer is an immutable snapshot of the file contents.
type fileContainer struct {
	identity string
	rows     []string
}

// Identity implements event.ContainerRef.
func (c *fileContainer) Identity() string { return c.identity }

// Rows implements event.ContainerRef.
func (c *fileContainer) Rows() []string { return c.rows }
