package daemon

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/AndreOF/whisper-writer/internal/command"
	"github.com/AndreOF/whisper-writer/internal/config"
	"github.com/AndreOF/whisper-writer/internal/controller"
	"github.com/AndreOF/whisper-writer/internal/notify"
	"github.com/AndreOF/whisper-writer/internal/session"
)

// testDaemon builds a daemon around a session factory that always fails,
// so protocol handling can be exercised without audio hardware.
func testDaemon(t *testing.T) *Daemon {
	t.Helper()

	d := &Daemon{
		notifier: notify.Nop{},
		commands: command.DefaultProcessor(),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.controller = controller.New(config.PressToToggle,
		func() (*session.Session, error) {
			return nil, fmt.Errorf("no audio in tests")
		}, nil)

	t.Cleanup(func() {
		d.cancel()
		d.controller.Shutdown()
	})
	return d
}

func roundTrip(t *testing.T, d *Daemon, cmd byte) string {
	t.Helper()

	server, client := net.Pipe()
	go d.handle(server)

	if _, err := client.Write([]byte{cmd, '\n'}); err != nil {
		t.Fatalf("write command: %v", err)
	}
	client.SetReadDeadline(time.Now().Add(time.Second))
	resp, err := bufio.NewReader(client).ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	client.Close()
	return resp
}

func TestHandle_Status(t *testing.T) {
	d := testDaemon(t)

	resp := roundTrip(t, d, 's')
	if !strings.Contains(resp, "state=idle") {
		t.Errorf("status response = %q, want idle state", resp)
	}
}

func TestHandle_ActivateWithBrokenFactory(t *testing.T) {
	d := testDaemon(t)

	// Session creation fails, but the daemon must stay healthy.
	resp := roundTrip(t, d, 'a')
	if !strings.HasPrefix(resp, "OK") {
		t.Errorf("activate response = %q, want OK", resp)
	}

	resp = roundTrip(t, d, 's')
	if !strings.Contains(resp, "state=idle") {
		t.Errorf("status after failed activate = %q, want idle", resp)
	}
}

func TestHandle_ReleaseAndCancel(t *testing.T) {
	d := testDaemon(t)

	if resp := roundTrip(t, d, 'd'); !strings.HasPrefix(resp, "OK") {
		t.Errorf("release response = %q, want OK", resp)
	}
	if resp := roundTrip(t, d, 'c'); !strings.HasPrefix(resp, "OK") {
		t.Errorf("cancel response = %q, want OK", resp)
	}
}

func TestHandle_Version(t *testing.T) {
	d := testDaemon(t)

	resp := roundTrip(t, d, 'v')
	if !strings.Contains(resp, "proto=") {
		t.Errorf("version response = %q, want protocol version", resp)
	}
}

func TestHandle_Quit(t *testing.T) {
	d := testDaemon(t)

	resp := roundTrip(t, d, 'q')
	if !strings.HasPrefix(resp, "OK") {
		t.Errorf("quit response = %q, want OK", resp)
	}

	select {
	case <-d.ctx.Done():
	case <-time.After(time.Second):
		t.Errorf("quit did not cancel the daemon context")
	}
}

func TestHandle_Unknown(t *testing.T) {
	d := testDaemon(t)

	resp := roundTrip(t, d, 'z')
	if !strings.HasPrefix(resp, "ERR") {
		t.Errorf("unknown command response = %q, want ERR", resp)
	}
}

func TestFailedEngine(t *testing.T) {
	e := failedEngine{err: fmt.Errorf("model never loaded")}
	text, err := e.Transcribe(context.Background(), []int16{1})
	if text != "" {
		t.Errorf("failedEngine text = %q, want empty", text)
	}
	if err == nil {
		t.Errorf("failedEngine should keep reporting the setup error")
	}
}
