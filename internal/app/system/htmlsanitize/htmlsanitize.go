// Package htmlsanitize strips unsafe HTML from user-authored content
// before it is stored. Announcement bodies are the main consumer.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Content sanitizes announcement/request body text, allowing the usual
// user-generated-content markup (links, lists, emphasis) and nothing else.
func Content(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Plain strips all markup, leaving text only. Used for titles and
// notification bodies.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
