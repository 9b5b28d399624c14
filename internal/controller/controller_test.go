package controller

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/AndreOF/whisper-writer/internal/config"
	"github.com/AndreOF/whisper-writer/internal/session"
)

type testSource struct {
	mu      sync.Mutex
	samples []int16
}

func (s *testSource) ReadAvailableSamples() []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.samples
	s.samples = nil
	return out
}

func (s *testSource) Close() error { return nil }

type testEngine struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
	delay time.Duration
}

func (e *testEngine) Transcribe(ctx context.Context, samples []int16) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return e.text, e.err
}

func (e *testEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// harness tracks every session the factory hands out.
type harness struct {
	engine *testEngine

	mu       sync.Mutex
	sessions []*session.Session
	results  []string
	resultCh chan string
}

func newHarness(engineText string) *harness {
	return &harness{
		engine:   &testEngine{text: engineText},
		resultCh: make(chan string, 256),
	}
}

func (h *harness) factory() (*session.Session, error) {
	s := session.New(session.Config{
		Source: &testSource{samples: []int16{1, 2}},
		Engine: h.engine,
	})
	h.mu.Lock()
	h.sessions = append(h.sessions, s)
	h.mu.Unlock()
	return s, nil
}

func (h *harness) onResult(text string) {
	h.mu.Lock()
	h.results = append(h.results, text)
	h.mu.Unlock()
	h.resultCh <- text
}

func (h *harness) activeSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	active := 0
	for _, s := range h.sessions {
		if s.IsActive() {
			active++
		}
	}
	return active
}

func (h *harness) sessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func waitResult(t *testing.T, h *harness) string {
	t.Helper()
	select {
	case text := <-h.resultCh:
		return text
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a result")
		return ""
	}
}

func TestPressToToggle_ActivatePair(t *testing.T) {
	h := newHarness("hello world")
	c := New(config.PressToToggle, h.factory, h.onResult)
	defer c.Shutdown()

	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "recording state")

	// A deactivate between presses must be ignored in this mode.
	c.OnDeactivate()
	if c.State() != session.Recording {
		t.Errorf("deactivate changed state to %q in press_to_toggle mode", c.State())
	}

	c.OnActivate()
	text := waitResult(t, h)

	if text != "hello world" {
		t.Errorf("result = %q, want %q", text, "hello world")
	}
	if h.sessionCount() != 1 {
		t.Errorf("sessions created = %d, want exactly 1 per activate pair", h.sessionCount())
	}
	waitFor(t, func() bool { return c.State() == session.Idle }, "return to idle")
}

func TestHoldToRecord(t *testing.T) {
	h := newHarness("held text")
	c := New(config.HoldToRecord, h.factory, h.onResult)
	defer c.Shutdown()

	// Release while idle is a no-op.
	c.OnDeactivate()
	if got := h.sessionCount(); got != 0 {
		t.Fatalf("deactivate while idle created %d sessions", got)
	}

	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "recording state")

	// Repeat press while holding must not spawn a second session.
	c.OnActivate()
	if got := h.sessionCount(); got != 1 {
		t.Errorf("repeat activate created %d sessions, want 1", got)
	}

	c.OnDeactivate()
	text := waitResult(t, h)
	if text != "held text" {
		t.Errorf("result = %q, want %q", text, "held text")
	}
}

func TestContinuous_AutoRestart(t *testing.T) {
	h := newHarness("loop text")
	c := New(config.Continuous, h.factory, h.onResult)
	defer c.Shutdown()

	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "first session recording")

	// Re-activation finalizes the session; a new one starts after its
	// completion without another activation event.
	c.OnActivate()
	waitResult(t, h)
	waitFor(t, func() bool { return h.sessionCount() == 2 && c.State() == session.Recording },
		"auto-started second session")

	// External stop breaks the loop.
	c.Cancel()
	waitFor(t, func() bool { return c.State() == session.Idle }, "idle after cancel")

	time.Sleep(50 * time.Millisecond)
	if got := h.sessionCount(); got != 2 {
		t.Errorf("sessions after cancel = %d, want loop stopped at 2", got)
	}
}

func TestContinuous_CancelledSessionDoesNotRestart(t *testing.T) {
	h := newHarness("never delivered")
	c := New(config.Continuous, h.factory, h.onResult)
	defer c.Shutdown()

	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "recording state")

	c.Cancel()
	waitFor(t, func() bool { return c.State() == session.Idle }, "idle after cancel")

	time.Sleep(50 * time.Millisecond)
	if got := h.sessionCount(); got != 1 {
		t.Errorf("sessions = %d, want no restart after a cancelled session", got)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.results) != 0 {
		t.Errorf("results = %v, want none for a cancelled session", h.results)
	}
}

func TestCancelDuringRecording_NoEngineCall(t *testing.T) {
	h := newHarness("unused")
	c := New(config.PressToToggle, h.factory, h.onResult)
	defer c.Shutdown()

	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "recording state")

	c.Cancel()
	waitFor(t, func() bool { return c.State() == session.Idle }, "idle after cancel")

	if got := h.engine.callCount(); got != 0 {
		t.Errorf("engine invoked %d times after cancel, want 0", got)
	}
}

func TestControllerRecoversAfterBackendError(t *testing.T) {
	h := newHarness("")
	h.engine.err = errors.New("backend down")
	c := New(config.PressToToggle, h.factory, h.onResult)
	defer c.Shutdown()

	c.OnActivate()
	c.OnActivate()
	text := waitResult(t, h)
	if text != "" {
		t.Errorf("result after backend error = %q, want empty", text)
	}
	waitFor(t, func() bool { return c.State() == session.Idle }, "idle after failed cycle")

	// The controller must stay usable for the next activation.
	h.engine.err = nil
	h.engine.text = "recovered"
	c.OnActivate()
	waitFor(t, func() bool { return c.State() == session.Recording }, "recording after recovery")
	c.OnActivate()
	if text := waitResult(t, h); text != "recovered" {
		t.Errorf("result after recovery = %q, want %q", text, "recovered")
	}
}

func TestSingleSessionInvariant_RandomInterleavings(t *testing.T) {
	modes := []config.RecordingMode{config.PressToToggle, config.HoldToRecord, config.Continuous}

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness("x")
			h.engine.delay = time.Millisecond
			c := New(mode, h.factory, h.onResult)

			rng := rand.New(rand.NewSource(42))
			done := make(chan struct{})

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					if rng.Intn(2) == 0 {
						c.OnActivate()
					} else {
						c.OnDeactivate()
					}
					time.Sleep(time.Duration(rng.Intn(3)) * time.Millisecond)
				}
				close(done)
			}()

			for {
				select {
				case <-done:
					wg.Wait()
					c.Shutdown()
					if active := h.activeSessions(); active > 1 {
						t.Errorf("%d sessions active after shutdown", active)
					}
					return
				default:
					if active := h.activeSessions(); active > 1 {
						t.Fatalf("single-session invariant violated: %d active", active)
					}
					time.Sleep(time.Millisecond)
				}
			}
		})
	}
}
