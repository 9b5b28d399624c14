// Package audio captures microphone input as signed 16-bit samples.
// Sessions consume it through the Source interface; the production
// implementation shells out to pw-record.
package audio

// Source produces samples while a recording session is active. Callers
// drain with ReadAvailableSamples until Close; the returned slices are
// owned by the caller.
type Source interface {
	ReadAvailableSamples() []int16
	Close() error
}
