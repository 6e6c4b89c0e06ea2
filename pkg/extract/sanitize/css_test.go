package sanitize

import (
	"testing"
)

func TestSanitizeStyle(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{"", ""},
		{
			"color: red;",
			"color: red;",
		},
		{
			"font-weight: bold; color: white",
			"font-weight: bold;color: white",
		},
		{
			"position: absolute; color: white",
			"color: white",
		},
		{
			"color: black; invalid: true; font-style: italic",
			"color: black;font-style: italic",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := sanitizeStyle(tc.input)
			if got != tc.want {
				t.Errorf("got: %q, want: %q, input: %q", got, tc.want, tc.input)
			}
		})
	}
}

func TestFontWeight(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{"", ""},
		{"color: red", ""},
		{"font-weight: bold", "bold"},
		{"font-weight: 700", "700"},
		{"font-weight: bold; color: red", "bold"},
		{"color: red; font-weight: bolder", "bolder"},
		{"FONT-WEIGHT: bold", "bold"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := FontWeight(tc.input)
			if got != tc.want {
				t.Errorf("got: %q, want: %q, input: %q", got, tc.want, tc.input)
			}
		})
	}
}
