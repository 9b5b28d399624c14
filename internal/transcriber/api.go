package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/AndreOF/whisper-writer/internal/config"
)

// apiBackend submits recordings to an OpenAI-compatible transcription
// endpoint as WAV uploads.
type apiBackend struct {
	client      *openai.Client
	model       string
	sampleRate  int
	language    string
	prompt      string
	temperature float32
}

func newAPIBackend(cfg *config.Config) *apiBackend {
	clientConfig := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if cfg.Model.API.BaseURL != "" {
		clientConfig.BaseURL = cfg.Model.API.BaseURL
	}

	sampleRate := cfg.Recording.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	return &apiBackend{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model.API.Model,
		sampleRate:  sampleRate,
		language:    cfg.Model.Common.Language,
		prompt:      cfg.Model.Common.InitialPrompt,
		temperature: float32(cfg.Model.Common.Temperature),
	}
}

func (b *apiBackend) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	wavData := encodeWAV(samples, b.sampleRate)

	req := openai.AudioRequest{
		Model:       b.model,
		Reader:      bytes.NewReader(wavData),
		FilePath:    "audio.wav",
		Language:    b.language,
		Prompt:      b.prompt,
		Temperature: b.temperature,
	}

	start := time.Now()
	resp, err := b.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("transcriber: API call failed after %v: %v", duration, err)
		return "", fmt.Errorf("api transcription: %w", err)
	}

	log.Printf("transcriber: API transcribed %d samples in %v: %q", len(samples), duration, resp.Text)
	return resp.Text, nil
}
