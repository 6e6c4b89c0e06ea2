// Package outbound builds RFC 2045 messages from compose drafts.  Veildesk
// never speaks SMTP itself; built messages are spooled to disk for the host
// mailer to pick up, or discarded when no spool is configured.
package outbound

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jhillyerd/enmime/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/config"
	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/store"
)

// Mailer encodes drafts into MIME messages.  Implements the coordinator's
// Sender interface.
type Mailer struct {
	from     string
	spoolDir string
	logger   zerolog.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// New constructs a Mailer from configuration.
func New(cfg config.Outbound) *Mailer {
	return &Mailer{
		from:     cfg.From,
		spoolDir: cfg.SpoolDir,
		logger:   log.With().Str("module", "outbound").Logger(),
		now:      time.Now,
	}
}

// Send builds the draft into a full MIME message and spools it.  The
// returned event carries the encoded size.
func (m *Mailer) Send(draft store.DraftData) (event.SentEvent, error) {
	date := m.now()
	builder := enmime.Builder().
		From("", m.from).
		To("", draft.To).
		Subject(draft.Subject).
		Date(date).
		Text([]byte(draft.Body))
	for _, att := range draft.Attachments {
		builder = builder.AddAttachment(att.Content, att.ContentType, att.Name)
	}
	part, err := builder.Build()
	if err != nil {
		return event.SentEvent{}, fmt.Errorf("building message: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := part.Encode(buf); err != nil {
		return event.SentEvent{}, fmt.Errorf("encoding message: %w", err)
	}
	if m.spoolDir != "" {
		if err := m.spool(buf.Bytes(), date); err != nil {
			return event.SentEvent{}, err
		}
	}
	m.logger.Debug().Str("to", draft.To).Int("size", buf.Len()).Msg("Built message")
	return event.SentEvent{
		To:      draft.To,
		Subject: draft.Subject,
		Size:    int64(buf.Len()),
		Date:    date,
	}, nil
}

// spool writes the encoded message into the spool directory as an .eml file.
func (m *Mailer) spool(source []byte, date time.Time) error {
	if err := os.MkdirAll(m.spoolDir, 0o755); err != nil {
		return fmt.Errorf("creating spool dir: %w", err)
	}
	name := fmt.Sprintf("%d.eml", date.UnixNano())
	path := filepath.Join(m.spoolDir, name)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return fmt.Errorf("spooling message: %w", err)
	}
	m.logger.Info().Str("path", path).Msg("Spooled message")
	return nil
}
