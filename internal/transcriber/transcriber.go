// Package transcriber turns captured sample buffers into text. Exactly one
// backend is active per run: the local model or the remote API, selected
// once from configuration.
package transcriber

import (
	"context"

	"github.com/AndreOF/whisper-writer/internal/config"
)

// Engine is the transcription dispatch contract. An empty buffer returns
// an empty string without touching the backend.
type Engine interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// NewEngine resolves the backend from configuration. Local model setup
// failures surface here so the daemon can refuse to start sessions against
// a broken backend.
func NewEngine(cfg *config.Config) (Engine, error) {
	if cfg.Model.UseAPI {
		return newAPIBackend(cfg), nil
	}
	return newLocalBackend(cfg)
}
