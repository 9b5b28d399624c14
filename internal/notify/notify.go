// Package notify is the status display: it surfaces session transitions to
// the user. When the status display is disabled every emission is a no-op.
package notify

import (
	"fmt"
	"log"
	"os/exec"
)

type Notifier interface {
	Recording()
	Transcribing()
	Stopped(text string)
	Error(msg string)
}

// Desktop sends desktop notifications through notify-send.
type Desktop struct{}

func (Desktop) Recording() {
	send("WhisperWriter", "Recording...")
}

func (Desktop) Transcribing() {
	send("WhisperWriter", "Transcribing...")
}

func (Desktop) Stopped(text string) {
	if text == "" {
		send("WhisperWriter", "Done")
		return
	}
	send("WhisperWriter", fmt.Sprintf("Typed: %s", text))
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "WhisperWriter", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("notify: failed to send error notification: %v", err)
	}
}

func send(title, body string) {
	cmd := exec.Command("notify-send", "-a", "WhisperWriter", title, body)
	if err := cmd.Run(); err != nil {
		log.Printf("notify: failed to send notification: %v", err)
	}
}

// Log writes status updates to the daemon log instead of the desktop.
type Log struct{}

func (Log) Recording()          { log.Printf("status: recording") }
func (Log) Transcribing()       { log.Printf("status: transcribing") }
func (Log) Stopped(text string) { log.Printf("status: stopped, text=%q", text) }
func (Log) Error(msg string)    { log.Printf("status: error: %s", msg) }

// Nop is the absent status display.
type Nop struct{}

func (Nop) Recording()          {}
func (Nop) Transcribing()       {}
func (Nop) Stopped(text string) {}
func (Nop) Error(msg string)    {}
