package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsFullRow(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div data-thread-id="t1" class="unread">` +
			`<span class="sender" name="Ann Archer" email="ann@example.com"></span>` +
			`<span class="subject">Quarterly numbers</span>` +
			`<span class="snippet">Attached are the figures for</span>` +
			`<time datetime="2026-08-14T09:30:00Z"></time></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, "Ann Archer", rec.Sender)
	assert.Equal(t, "Quarterly numbers", rec.Subject)
	assert.Equal(t, "Attached are the figures for", rec.Snippet)
	assert.Equal(t, time.Date(2026, time.August, 14, 9, 30, 0, 0, time.UTC), rec.Date)
	assert.True(t, rec.Unread)
}

func TestRecordsLegacyIDAttr(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div data-legacy-thread-id="legacy9"><span class="sender">Bob</span>` +
			`<span class="subject">hi</span></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, "legacy9", records[0].ID)
}

func TestRecordsFallbackHashID(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div><span class="sender">Bob</span><span class="subject">same</span></div>`,
		`<div><span class="sender">Bob</span><span class="subject">same</span></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 2)
	assert.Len(t, records[0].ID, 40)
	assert.NotEqual(t, records[0].ID, records[1].ID,
		"identical rows must still get distinct ids")
}

func TestRecordsSenderFallsBackToText(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div><span class="from">  Carol   Jones </span><span class="subject">x</span></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, "Carol Jones", records[0].Sender, "text content compacts whitespace")
}

func TestRecordsBoldStyleMarksUnread(t *testing.T) {
	e := &Extractor{}
	tests := []struct {
		name   string
		style  string
		unread bool
	}{
		{"bold keyword", "font-weight: bold", true},
		{"numeric heavy", "font-weight: 700", true},
		{"numeric light", "font-weight: 400", false},
		{"no weight", "color: red", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := []string{
				`<div><span class="sender" style="` + tc.style + `">Bob</span>` +
					`<span class="subject">hi</span></div>`,
			}
			records := e.Records(rows)
			require.Len(t, records, 1)
			assert.Equal(t, tc.unread, records[0].Unread)
		})
	}
}

func TestRecordsDropsUndeterminableRows(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div class="unread"><span class="snippet">only a snippet</span></div>`,
		`<div><span class="sender">Bob</span><span class="subject">keep</span></div>`,
		`not markup at all`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, "keep", records[0].Subject)
}

func TestRecordsSnippetTruncation(t *testing.T) {
	e := &Extractor{SnippetLength: 10}
	rows := []string{
		`<div><span class="sender">Bob</span><span class="subject">hi</span>` +
			`<span class="snippet">this snippet is much too long</span></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, "this snip…", records[0].Snippet)
	assert.Len(t, []rune(records[0].Snippet), 10)
}

func TestRecordsDateFallbackText(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div><span class="sender">Bob</span><span class="subject">hi</span>` +
			`<time>Jan 2, 2006</time></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestRecordsStripsScriptContent(t *testing.T) {
	e := &Extractor{}
	rows := []string{
		`<div><span class="sender">Bob<script>alert("x")</script></span>` +
			`<span class="subject">hi</span></div>`,
	}

	records := e.Records(rows)

	require.Len(t, records, 1)
	assert.Equal(t, "Bob", records[0].Sender, "script content must not leak into fields")
}

func TestRecordsEmptyInput(t *testing.T) {
	e := &Extractor{}

	assert.Empty(t, e.Records(nil))
	assert.Empty(t, e.Records([]string{}))
}
