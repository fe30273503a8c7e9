package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict is a cached bluemonday policy that removes all HTML tags and attributes.
// It's safe for concurrent use as bluemonday.Policy is read-only after build.
// Never call mutating helpers (e.g. AddAttr, AllowElements) on it after init.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true) // Prevents word concatenation
	return p
}()

// Text strips HTML from generated text while keeping its line structure.
// Entities are unescaped so plain characters like "<" or "&" survive.
//
// Examples:
//   - "<p>Hello</p>\n  - item" -> "Hello \n  - item"
//   - "a < b &amp; c" -> "a < b & c"
//   - "<script>alert(1)</script>done" -> "done"
func Text(s string) string {
	out := html.UnescapeString(strict.Sanitize(s))
	out = strings.ReplaceAll(out, "\u00a0", " ")
	return strings.TrimSpace(out)
}

// Line is Text collapsed onto one line with single spaces, for short
// values such as tags.
func Line(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}
