package sanitize

import (
	"bytes"
	"strings"

	"github.com/gorilla/css/scanner"
)

// propertyRule may someday allow control of what values are valid for a particular property.
type propertyRule struct{}

// Host rows only need text-presentation styling to survive; everything else
// (positioning, urls, animations) is stripped.
var allowedProperties = map[string]propertyRule{
	"color":           {},
	"display":         {},
	"font-family":     {},
	"font-size":       {},
	"font-style":      {},
	"font-weight":     {},
	"text-align":      {},
	"text-decoration": {},
	"vertical-align":  {},
	"white-space":     {},
}

// Handler Token, return next state.
type stateHandler func(b *bytes.Buffer, t *scanner.Token) stateHandler

func sanitizeStyle(input string) string {
	b := &bytes.Buffer{}
	scan := scanner.New(input)
	state := stateStart
	for {
		t := scan.Next()
		if t.Type == scanner.TokenEOF {
			return b.String()
		}
		if t.Type == scanner.TokenError {
			return ""
		}
		state = state(b, t)
		if state == nil {
			return ""
		}
	}
}

// FontWeight returns the declared font-weight value in a style attribute, or
// "" when none is present.  Extraction uses it to spot hosts that mark unread
// rows bold instead of tagging them with a class.
func FontWeight(style string) string {
	scan := scanner.New(style)
	inWeight := false
	value := ""
	for {
		t := scan.Next()
		switch t.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return strings.TrimSpace(value)
		case scanner.TokenIdent:
			if inWeight {
				value = t.Value
				inWeight = false
			} else if strings.EqualFold(t.Value, "font-weight") {
				inWeight = true
				value = ""
			}
		case scanner.TokenNumber:
			if inWeight {
				value = t.Value
				inWeight = false
			}
		case scanner.TokenChar:
			if t.Value == ";" {
				inWeight = false
			}
		}
	}
}

func stateStart(b *bytes.Buffer, t *scanner.Token) stateHandler {
	switch t.Type {
	case scanner.TokenIdent:
		_, ok := allowedProperties[strings.ToLower(t.Value)]
		if !ok {
			return stateEat
		}
		b.WriteString(t.Value)
		return stateValid
	case scanner.TokenS:
		return stateStart
	}
	// Unexpected type.
	b.WriteString("/*" + t.Type.String() + "*/")
	return stateEat
}

func stateEat(b *bytes.Buffer, t *scanner.Token) stateHandler {
	if t.Type == scanner.TokenChar && t.Value == ";" {
		// Done eating.
		return stateStart
	}
	// Throw away this token.
	return stateEat
}

func stateValid(b *bytes.Buffer, t *scanner.Token) stateHandler {
	state := stateValid
	if t.Type == scanner.TokenChar && t.Value == ";" {
		// End of property.
		state = stateStart
	}
	b.WriteString(t.Value)
	return state
}
