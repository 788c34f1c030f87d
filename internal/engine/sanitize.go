package engine

import (
	"regexp"
	"strings"
)

// Reasoning models leak their scratchpad between these markers; users never
// see it and memory never stores it.
var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Sanitize strips reasoning blocks from a raw completion and trims the
// surrounding whitespace.
func Sanitize(raw string) string {
	return strings.TrimSpace(thinkBlockRe.ReplaceAllString(raw, ""))
}
