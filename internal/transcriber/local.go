package transcriber

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/AndreOF/whisper-writer/internal/config"
)

// DecodeOptions are passed to the local model on every call.
type DecodeOptions struct {
	Language                string
	InitialPrompt           string
	Temperature             float64
	ConditionOnPreviousText bool
	VADFilter               bool
}

// Model is a loaded local inference handle. Input samples are normalized
// float amplitudes in [-1, 1].
type Model interface {
	Transcribe(ctx context.Context, samples []float32, opts DecodeOptions) (string, error)
}

// ModelFactory constructs a Model for the given identifier (name or path),
// compute type and device.
type ModelFactory func(identifier, computeType, device string) (Model, error)

// The local model is expensive to set up, so it is created once and cached
// for the lifetime of the process.
var (
	modelOnce sync.Once
	model     Model
	modelErr  error
)

type localBackend struct {
	model Model
	opts  DecodeOptions
}

func newLocalBackend(cfg *config.Config) (*localBackend, error) {
	modelOnce.Do(func() {
		model, modelErr = createModel(cfg.Model.Local, newWhisperCLIModel)
	})
	if modelErr != nil {
		return nil, modelErr
	}

	return &localBackend{
		model: model,
		opts: DecodeOptions{
			Language:                cfg.Model.Common.Language,
			InitialPrompt:           cfg.Model.Common.InitialPrompt,
			Temperature:             cfg.Model.Common.Temperature,
			ConditionOnPreviousText: cfg.Model.Local.ConditionOnPreviousText,
			VADFilter:               cfg.Model.Local.VADFilter,
		},
	}, nil
}

// createModel loads the local model on the configured device, falling back
// to CPU with the same model identifier if that fails. int8 quantization
// runs on CPU only.
func createModel(opts config.LocalModelOptions, factory ModelFactory) (Model, error) {
	identifier := opts.ModelIdentifier()
	device := opts.Device

	if opts.ComputeType == "int8" {
		log.Printf("transcriber: int8 quantization, forcing CPU usage")
		device = "cpu"
	}

	m, err := factory(identifier, opts.ComputeType, device)
	if err != nil && device != "cpu" {
		log.Printf("transcriber: model init on %q failed (%v), falling back to CPU", device, err)
		m, err = factory(identifier, opts.ComputeType, "cpu")
	}
	if err != nil {
		return nil, fmt.Errorf("initialize local model %q: %w", identifier, err)
	}

	log.Printf("transcriber: local model %q ready", identifier)
	return m, nil
}

func (b *localBackend) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	return b.model.Transcribe(ctx, scaleSamples(samples), b.opts)
}

// scaleSamples rescales 16-bit integer samples to normalized floating-point
// amplitude: sample / 32768.
func scaleSamples(samples []int16) []float32 {
	scaled := make([]float32, len(samples))
	for i, s := range samples {
		scaled[i] = float32(s) / 32768.0
	}
	return scaled
}
