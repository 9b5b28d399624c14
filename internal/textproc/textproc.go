// Package textproc applies the deterministic text transforms that run after
// command detection on every transcription.
package textproc

import "strings"

// Config toggles the individual transforms. The order they run in is fixed.
type Config struct {
	RemoveTrailingPeriod bool
	AddTrailingSpace     bool
	RemoveCapitalization bool
}

// Apply trims the text, then runs the enabled transforms in this order:
// trailing-period removal, trailing-space append, lowercasing. The period
// must go before the space is appended, and lowercasing runs last so it
// covers everything the earlier steps left in place.
func Apply(text string, cfg Config) string {
	text = strings.TrimSpace(text)

	if cfg.RemoveTrailingPeriod && strings.HasSuffix(text, ".") {
		text = text[:len(text)-1]
	}
	if cfg.AddTrailingSpace {
		text += " "
	}
	if cfg.RemoveCapitalization {
		text = strings.ToLower(text)
	}

	return text
}
