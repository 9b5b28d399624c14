// Package controller maps activation and deactivation events onto recording
// session lifecycles according to the configured recording mode.
package controller

import (
	"context"
	"log"
	"sync"

	"github.com/AndreOF/whisper-writer/internal/config"
	"github.com/AndreOF/whisper-writer/internal/session"
)

// SessionFactory builds a fresh session per cycle with its own audio source.
type SessionFactory func() (*session.Session, error)

// ResultHandler receives the final text of every completed, non-cancelled
// session, exactly once per session.
type ResultHandler func(text string)

// Controller is the sole owner of the current-session reference. All
// checks and updates of that reference happen under one mutex so at most
// one session is ever non-Idle.
type Controller struct {
	mode     config.RecordingMode
	factory  SessionFactory
	onResult ResultHandler

	mu      sync.Mutex
	current *session.Session
	stopped bool // continuous loop disabled by an external stop

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(mode config.RecordingMode, factory SessionFactory, onResult ResultHandler) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		mode:     mode,
		factory:  factory,
		onResult: onResult,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnActivate handles a hotkey press. With no live session it starts one in
// every mode. With a live session: press_to_toggle and continuous finalize
// it (capture ends, transcription proceeds); hold_to_record ignores the
// repeat press.
func (c *Controller) OnActivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = false

	if c.current != nil && c.current.IsActive() {
		switch c.mode {
		case config.PressToToggle, config.Continuous:
			c.current.StopRecording()
		case config.HoldToRecord:
			// already recording
		}
		return
	}

	c.startLocked()
}

// OnDeactivate handles a hotkey release. Only hold_to_record reacts, and
// only while the session is actually recording.
func (c *Controller) OnDeactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != config.HoldToRecord {
		return
	}
	if c.current != nil && c.current.State() == session.Recording {
		c.current.StopRecording()
	}
}

// Cancel aborts the current session, if any, and breaks the continuous
// loop until the next activation.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.stopped = true
	cur := c.current
	c.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
}

// State reports the current session's state, or Idle when none is live.
func (c *Controller) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return session.Idle
	}
	return c.current.State()
}

// Shutdown cancels any in-flight session and waits for all completion
// watchers to drain.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	c.stopped = true
	cur := c.current
	c.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
	c.cancel()
	c.wg.Wait()
}

// startLocked is called with c.mu held. Duplicate starts are no-ops.
func (c *Controller) startLocked() {
	if c.current != nil && c.current.IsActive() {
		return
	}

	s, err := c.factory()
	if err != nil {
		log.Printf("controller: failed to create session: %v", err)
		return
	}
	if err := s.Start(c.ctx); err != nil {
		log.Printf("controller: failed to start session: %v", err)
		return
	}

	c.current = s
	c.wg.Add(1)
	go c.await(s)
}

// await watches one session to completion, clears the current-session
// reference, delivers the result, and re-arms the continuous loop.
func (c *Controller) await(s *session.Session) {
	defer c.wg.Done()

	res, ok := <-s.Results()

	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	restart := ok && !res.Cancelled &&
		c.mode == config.Continuous && !c.stopped && c.ctx.Err() == nil
	c.mu.Unlock()

	if ok && !res.Cancelled && c.onResult != nil {
		c.onResult(res.Text)
	}

	if restart {
		c.mu.Lock()
		if !c.stopped {
			c.startLocked()
		}
		c.mu.Unlock()
	}
}
