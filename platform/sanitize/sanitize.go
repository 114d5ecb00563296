// Package sanitize provides text sanitization utilities for user-supplied
// fields that end up embedded in notification emails.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML removes all HTML markup from a string, keeping only the text
// content. Input that is not well-formed HTML is handled token by token, so
// partial tags and encoded entities cannot survive into the output.
func StripHTML(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(b.String())
}

// Text sanitizes a string for safe text embedding by stripping HTML and
// collapsing runs of whitespace. Use for user-provided fields like names,
// company and free-text messages.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}

// TextPtr is a helper for optional string pointers.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
