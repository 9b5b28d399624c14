package command

import (
	"log"
	"os/exec"
)

// DefaultProcessor builds the command registry used by the daemon.
// Registration order is matching priority.
func DefaultProcessor() *Processor {
	p := NewProcessor()
	p.Register("wiz open edge", openEdge)
	return p
}

func openEdge(transcription string) (bool, string) {
	log.Printf("command: opening Microsoft Edge")

	cmd := exec.Command("xdg-open", "microsoft-edge:")
	if err := cmd.Start(); err != nil {
		log.Printf("command: failed to open Edge: %v", err)
		return false, transcription
	}

	// Reap the child in the background; the session does not wait on it.
	go func() { _ = cmd.Wait() }()

	return true, StripPhrase(transcription, "wiz open edge")
}
