package stringutil

import (
	"crypto/sha1"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// HashRecordID derives a stable fallback id for a conversation row that
// carries no host identifier.  The positional index keeps otherwise identical
// rows distinct.
func HashRecordID(sender, subject string, index int) string {
	h := sha1.New()
	if _, err := io.WriteString(h, fmt.Sprintf("%s|%s|%d", sender, subject, index)); err != nil {
		// This shouldn't ever happen
		return ""
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// CompactWS collapses runs of whitespace into single spaces and trims the
// ends, normalizing text pulled out of host markup.
func CompactWS(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Ellipsis truncates s to at most max runes, appending … when truncated.
func Ellipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}
