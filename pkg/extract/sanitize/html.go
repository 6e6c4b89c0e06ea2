// Package sanitize scrubs host row markup before extraction.  Hosts inject
// scripts, trackers, and layout scaffolding into conversation rows; only the
// structural and text-presentation subset survives.
package sanitize

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "b", "div", "em", "i", "li", "ol", "p", "span", "strong",
		"table", "tbody", "td", "time", "tr", "ul",
	)
	p.AllowAttrs("class", "style", "title").Globally()
	p.AllowAttrs("data-thread-id", "data-legacy-thread-id").Globally()
	p.AllowAttrs("datetime").OnElements("time")
	p.AllowAttrs("email", "name").OnElements("span")
	return p
}()

// Row sanitizes the markup of a single host conversation row, attempting to
// preserve inline text styling.
func Row(markup string) (output string, err error) {
	output, err = sanitizeStyleAttrs(markup)
	if err != nil {
		return "", err
	}
	output = policy.Sanitize(output)
	return
}

// sanitizeStyleAttrs rewrites every style attribute through the CSS property
// filter, dropping attributes left empty.
func sanitizeStyleAttrs(input string) (string, error) {
	r := strings.NewReader(input)
	b := &bytes.Buffer{}
	if err := styleAttrFilter(b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

func styleAttrFilter(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	b := make([]byte, 0, 256)
	z := html.NewTokenizer(r)
	for {
		b = b[:0]
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if err == io.EOF {
				return bw.Flush()
			}
			return err
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				if _, err := bw.Write(z.Raw()); err != nil {
					return err
				}
				continue
			}
			b = append(b, '<')
			b = append(b, name...)
			for {
				key, val, more := z.TagAttr()
				strval := string(val)
				style := false
				if strings.ToLower(string(key)) == "style" {
					style = true
					strval = sanitizeStyle(strval)
				}
				if !style || strval != "" {
					b = append(b, ' ')
					b = append(b, key...)
					b = append(b, '=', '"')
					b = append(b, []byte(html.EscapeString(strval))...)
					b = append(b, '"')
				}
				if !more {
					break
				}
			}
			if tt == html.SelfClosingTagToken {
				b = append(b, '/')
			}
			if _, err := bw.Write(append(b, '>')); err != nil {
				return err
			}
		default:
			if _, err := bw.Write(z.Raw()); err != nil {
				return err
			}
		}
	}
}
