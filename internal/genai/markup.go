package genai

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// StripCodeFences removes a markdown code fence wrapped around model output.
// Models sometimes fence their answer even when told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ValidateMarkup checks that s is a whole HTML document: the first token is
// an html doctype or <html> start tag, and a closing </html> is present.
func ValidateMarkup(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("empty markup")
	}

	z := html.NewTokenizer(strings.NewReader(s))
	rootSeen, closed := false, false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return fmt.Errorf("tokenize markup: %w", z.Err())
			}
			if !closed {
				return errors.New("markup has no closing </html> tag")
			}
			return nil
		case html.CommentToken:
			// Allowed anywhere, including before the doctype.
		case html.TextToken:
			if !rootSeen && strings.TrimSpace(string(z.Text())) != "" {
				return errors.New("markup has text before the document root")
			}
		case html.DoctypeToken:
			if !rootSeen {
				fields := strings.Fields(string(z.Text()))
				if len(fields) == 0 || !strings.EqualFold(fields[0], "html") {
					return fmt.Errorf("unexpected doctype %q", z.Text())
				}
				rootSeen = true
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if !rootSeen {
				if string(name) != "html" {
					return fmt.Errorf("markup starts with <%s> instead of a document root", name)
				}
				rootSeen = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if !rootSeen {
				return fmt.Errorf("markup starts with </%s>", name)
			}
			if string(name) == "html" {
				closed = true
			}
		}
	}
}
