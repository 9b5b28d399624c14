// Package session implements one capture-to-transcription cycle: record
// samples from the audio source, transcribe them, run command detection and
// post-processing, and deliver the final text.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AndreOF/whisper-writer/internal/textproc"
)

type State string

const (
	Idle         State = "idle"
	Recording    State = "recording"
	Transcribing State = "transcribing"
	Stopped      State = "stopped"
)

// SampleSource is the audio collaborator drained while recording.
type SampleSource interface {
	ReadAvailableSamples() []int16
	Close() error
}

// Engine is the transcription dispatch contract.
type Engine interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// CommandRunner detects and executes voice commands in the transcription.
type CommandRunner interface {
	Execute(rawText string) (bool, string)
}

// Result is delivered exactly once per session. Cancelled results carry no
// text and mean the pipeline was skipped entirely.
type Result struct {
	Text      string
	Cancelled bool
}

// StatusFunc observes state transitions. It may be invoked from the
// session's worker goroutine; text is non-empty only for Stopped.
type StatusFunc func(state State, text string)

type Config struct {
	Source         SampleSource
	Engine         Engine
	Commands       CommandRunner
	PostProcessing textproc.Config
	OnStatus       StatusFunc
	PollInterval   time.Duration
}

// Session owns a single recording lifecycle. The zero value is not usable;
// construct with New and drive it with Start, StopRecording and Cancel.
type Session struct {
	id  uuid.UUID
	cfg Config

	mu    sync.Mutex
	state State

	cancelled atomic.Bool
	stopOnce  sync.Once
	stopCh    chan struct{}

	resultCh chan Result
	wg       sync.WaitGroup
}

func New(cfg Config) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	return &Session{
		id:       uuid.New(),
		cfg:      cfg,
		state:    Idle,
		stopCh:   make(chan struct{}),
		resultCh: make(chan Result, 1),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsActive reports whether the session holds the recording slot.
func (s *Session) IsActive() bool {
	st := s.State()
	return st == Recording || st == Transcribing
}

// Results yields the final Result and is closed once the session reaches
// Stopped. The channel is buffered so the worker never blocks on delivery.
func (s *Session) Results() <-chan Result {
	return s.resultCh
}

// Start moves Idle to Recording and launches the worker. Starting twice is
// an error; a session is single-use.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.id)
	}
	s.state = Recording
	s.mu.Unlock()

	log.Printf("session %s: recording", s.id)
	s.emit(Recording, "")

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// StopRecording finalizes capture and lets the worker proceed to
// transcription. Safe to call more than once.
func (s *Session) StopRecording() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Cancel aborts the session while it is recording: the buffer is discarded
// and the pipeline never runs. Outside Recording it is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	recording := s.state == Recording
	s.mu.Unlock()
	if !recording {
		return
	}

	s.cancelled.Store(true)
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Wait blocks until the worker has exited.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	buffer := s.record(ctx)

	// Cancellation is observed at the buffer-close boundary, before
	// committing to the transcription call.
	if s.cancelled.Load() {
		log.Printf("session %s: cancelled, discarding %d samples", s.id, len(buffer))
		s.finish(Result{Cancelled: true})
		return
	}

	s.setState(Transcribing)
	log.Printf("session %s: transcribing %d samples", s.id, len(buffer))
	s.emit(Transcribing, "")

	text := s.invokeEngine(ctx, buffer)
	text = strings.TrimSpace(text)

	// An empty transcription short-circuits command detection and
	// post-processing.
	final := ""
	if text != "" {
		if s.cfg.Commands != nil {
			_, text = s.cfg.Commands.Execute(text)
		}
		final = textproc.Apply(text, s.cfg.PostProcessing)
	}

	s.finish(Result{Text: final})
}

// record drains the source until stop or context cancellation and returns
// the accumulated buffer. Ownership of the buffer passes to the caller.
func (s *Session) record(ctx context.Context) []int16 {
	var buffer []int16

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			buffer = append(buffer, s.cfg.Source.ReadAvailableSamples()...)

		case <-s.stopCh:
			// Stop capture first, then take the final drain so no tail
			// samples are lost.
			if err := s.cfg.Source.Close(); err != nil {
				log.Printf("session %s: close audio source: %v", s.id, err)
			}
			buffer = append(buffer, s.cfg.Source.ReadAvailableSamples()...)
			return buffer

		case <-ctx.Done():
			s.cancelled.Store(true)
			if err := s.cfg.Source.Close(); err != nil {
				log.Printf("session %s: close audio source: %v", s.id, err)
			}
			return buffer
		}
	}
}

// invokeEngine shields the session from a misbehaving backend: errors and
// panics degrade to an empty transcript instead of taking down the
// controller.
func (s *Session) invokeEngine(ctx context.Context, samples []int16) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session %s: transcription backend panicked: %v", s.id, r)
			text = ""
		}
	}()

	text, err := s.cfg.Engine.Transcribe(ctx, samples)
	if err != nil {
		log.Printf("session %s: transcription failed: %v", s.id, err)
		return ""
	}
	return text
}

func (s *Session) finish(res Result) {
	s.setState(Stopped)
	log.Printf("session %s: stopped (cancelled=%t)", s.id, res.Cancelled)
	s.emit(Stopped, res.Text)

	s.resultCh <- res
	close(s.resultCh)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) emit(state State, text string) {
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(state, text)
	}
}
