// Package command detects and runs voice commands embedded in transcription
// text. Matching happens on a sanitized copy of the text; handlers receive
// the original text so they can strip the phrase without losing punctuation
// or case in the remainder.
package command

import (
	"log"
	"regexp"
	"strings"
)

// Handler runs the command's side effect and returns whether it executed
// plus the text with the command phrase removed. A failed handler returns
// false and leaves the text for the caller to restore.
type Handler func(transcription string) (executed bool, modified string)

type entry struct {
	phrase  string
	handler Handler
}

// Processor holds registered voice commands in registration order. The
// first registered phrase found in the sanitized text wins; at most one
// command fires per transcription.
type Processor struct {
	entries []entry
}

func NewProcessor() *Processor {
	return &Processor{}
}

// Register adds a command. The phrase is sanitized so registration and
// matching agree regardless of how the phrase was written.
func (p *Processor) Register(phrase string, handler Handler) {
	p.entries = append(p.entries, entry{phrase: Sanitize(phrase), handler: handler})
}

// Execute scans the transcription for a registered command. A matched
// handler is invoked with the original, unsanitized text. Handler panics
// and failures both report (false, rawText) unchanged.
func (p *Processor) Execute(rawText string) (bool, string) {
	sanitized := Sanitize(rawText)

	for _, e := range p.entries {
		if !strings.Contains(sanitized, e.phrase) {
			continue
		}

		executed, modified := invoke(e.handler, rawText)
		if !executed {
			return false, rawText
		}
		return true, modified
	}

	return false, rawText
}

func invoke(h Handler, rawText string) (executed bool, modified string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("command: handler panicked: %v", r)
			executed = false
			modified = rawText
		}
	}()
	return h(rawText)
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Sanitize produces the matching key: punctuation replaced by spaces,
// lowercased, whitespace collapsed to single spaces.
func Sanitize(text string) string {
	s := punctuation.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(s), " ")
}

// StripPhrase removes the phrase from text case-insensitively, tolerating
// any whitespace between the phrase's words, and trims the result.
func StripPhrase(text, phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return strings.TrimSpace(text)
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`))
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}
