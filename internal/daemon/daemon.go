// Package daemon runs the whisperwriter background process: it owns the
// control socket, the activation controller and the collaborators around
// the recording pipeline.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndreOF/whisper-writer/internal/audio"
	"github.com/AndreOF/whisper-writer/internal/bus"
	"github.com/AndreOF/whisper-writer/internal/command"
	"github.com/AndreOF/whisper-writer/internal/config"
	"github.com/AndreOF/whisper-writer/internal/controller"
	"github.com/AndreOF/whisper-writer/internal/injection"
	"github.com/AndreOF/whisper-writer/internal/notify"
	"github.com/AndreOF/whisper-writer/internal/session"
	"github.com/AndreOF/whisper-writer/internal/textproc"
	"github.com/AndreOF/whisper-writer/internal/transcriber"
)

type Daemon struct {
	manager    *config.Manager
	engine     transcriber.Engine
	commands   *command.Processor
	notifier   notify.Notifier
	injector   injection.Injector
	controller *controller.Controller

	ctx    context.Context
	cancel context.CancelFunc
}

// New loads and validates the configuration (the only fatal error class)
// and assembles the pipeline. A backend whose initialization failed beyond
// the CPU fallback is kept as a stub so sessions degrade to empty
// transcripts instead of crashing the daemon.
func New() (*Daemon, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()

	engine, err := transcriber.NewEngine(cfg)
	if err != nil {
		log.Printf("daemon: transcription backend unavailable: %v", err)
		engine = failedEngine{err: err}
	}

	var notifier notify.Notifier
	if cfg.Misc.HideStatusWindow {
		notifier = notify.Nop{}
	} else {
		notifier = notify.Desktop{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		manager:  manager,
		engine:   engine,
		commands: command.DefaultProcessor(),
		notifier: notifier,
		injector: injection.NewDefaultInjector(),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.controller = controller.New(cfg.Recording.RecordingMode, d.newSession, d.onResult)

	return d, nil
}

// failedEngine stands in for a backend whose setup failed; every call
// reports the original error so sessions log it and yield empty text.
type failedEngine struct{ err error }

func (e failedEngine) Transcribe(ctx context.Context, samples []int16) (string, error) {
	return "", e.err
}

// newSession builds one recording cycle with a fresh capture source and the
// current post-processing options.
func (d *Daemon) newSession() (*session.Session, error) {
	cfg := d.manager.GetConfig()

	recorder := audio.NewRecorder(audio.Config{
		SampleRate: cfg.Recording.SampleRate,
		Channels:   1,
		BufferSize: 4096,
	})
	if err := recorder.Start(d.ctx); err != nil {
		return nil, fmt.Errorf("start audio capture: %w", err)
	}

	return session.New(session.Config{
		Source:   recorder,
		Engine:   d.engine,
		Commands: d.commands,
		PostProcessing: textproc.Config{
			RemoveTrailingPeriod: cfg.PostProcessing.RemoveTrailingPeriod,
			AddTrailingSpace:     cfg.PostProcessing.AddTrailingSpace,
			RemoveCapitalization: cfg.PostProcessing.RemoveCapitalization,
		},
		OnStatus: d.onStatus,
	}), nil
}

func (d *Daemon) onStatus(state session.State, text string) {
	switch state {
	case session.Recording:
		d.notifier.Recording()
	case session.Transcribing:
		d.notifier.Transcribing()
	case session.Stopped:
		d.notifier.Stopped(text)
	}
}

// onResult delivers the final text to the focused input, once per
// completed session.
func (d *Daemon) onResult(text string) {
	if text != "" {
		ctx, cancel := context.WithTimeout(d.ctx, 15*time.Second)
		defer cancel()
		if err := d.injector.Inject(ctx, text); err != nil {
			log.Printf("daemon: injection failed: %v", err)
			d.notifier.Error(fmt.Sprintf("Failed to type text: %v", err))
		}
	}

	if d.manager.GetConfig().Misc.NoiseOnCompletion {
		playCompletionNoise()
	}
}

// playCompletionNoise plays a short sound; delivery is best-effort.
func playCompletionNoise() {
	cmd := exec.Command("paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga")
	if err := cmd.Run(); err != nil {
		log.Printf("daemon: completion noise failed: %v", err)
	}
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if err := d.manager.StartWatching(d.ctx); err != nil {
		log.Printf("daemon: config watching disabled: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("daemon: received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	// Close the listener when the context is done so Accept unblocks.
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("daemon: started, listening on control socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("daemon: shutdown requested")
				d.shutdown()
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) shutdown() {
	d.controller.Shutdown()
	d.manager.Stop()
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch line[0] {
	case bus.CmdPress, bus.CmdToggle:
		d.controller.OnActivate()
		fmt.Fprint(c, "OK activated\n")
	case bus.CmdRelease:
		d.controller.OnDeactivate()
		fmt.Fprint(c, "OK deactivated\n")
	case bus.CmdStatus:
		fmt.Fprintf(c, "STATUS state=%s\n", d.controller.State())
	case bus.CmdCancel:
		d.controller.Cancel()
		fmt.Fprint(c, "OK cancelled\n")
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("daemon: unknown command: %c", line[0])
		fmt.Fprintf(c, "ERR unknown=%q\n", line[0])
	}
}
