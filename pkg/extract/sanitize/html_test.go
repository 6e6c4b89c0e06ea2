package sanitize_test

import (
	"testing"

	"github.com/veildesk/veildesk/pkg/extract/sanitize"
)

// TestRowPlainStrings test plain text passthrough
func TestRowPlainStrings(t *testing.T) {
	testStrings := []string{
		"",
		"plain string",
		"one &lt; two",
	}
	for _, ts := range testStrings {
		t.Run(ts, func(t *testing.T) {
			got, err := sanitize.Row(ts)
			if err != nil {
				t.Fatal(err)
			}
			if got != ts {
				t.Errorf("Got: %q, want: %q", got, ts)
			}
		})
	}
}

// TestRowStructure tests the row markup we must keep
func TestRowStructure(t *testing.T) {
	testStrings := []string{
		`<div class="unread"><span class="subject">hi</span></div>`,
		`<div data-thread-id="t1">x</div>`,
		`<div data-legacy-thread-id="t1">x</div>`,
		`<span email="a@example.com" name="Ann">Ann</span>`,
		`<time datetime="2026-08-14T09:00:00Z">9:00 AM</time>`,
		`<table><tbody><tr><td>cell</td></tr></tbody></table>`,
		`<b>bold</b> and <strong>strong</strong>`,
	}
	for _, ts := range testStrings {
		t.Run(ts, func(t *testing.T) {
			got, err := sanitize.Row(ts)
			if err != nil {
				t.Fatal(err)
			}
			if got != ts {
				t.Errorf("Got: %q, want: %q", got, ts)
			}
		})
	}
}

// TestRowScriptTags tests markup with embedded JavaScript
func TestRowScriptTags(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{
			`safe<script>nope</script>`,
			`safe`,
		},
		{
			`<span onclick="alert(1)" class="sender">Ann</span>`,
			`<span class="sender">Ann</span>`,
		},
		{
			`<img src="http://tracker.example.com/p.gif">text`,
			`text`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := sanitize.Row(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Got: %q, want: %q", got, tc.want)
			}
		})
	}
}

// TestRowStyleAttrs tests filtering of inline styles
func TestRowStyleAttrs(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{
			`<span style="font-weight: bold">Ann</span>`,
			`<span style="font-weight: bold">Ann</span>`,
		},
		{
			`<span style="position: fixed; color: red">Ann</span>`,
			`<span style="color: red">Ann</span>`,
		},
		{
			`<span style="position: fixed">Ann</span>`,
			`<span>Ann</span>`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := sanitize.Row(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Got: %q, want: %q", got, tc.want)
			}
		})
	}
}
