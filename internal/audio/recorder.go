package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	SampleRate int
	Channels   int
	BufferSize int
	Device     string
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		BufferSize: 4096,
		Device:     "",
	}
}

// Recorder captures s16le audio from pw-record into an internal buffer
// that callers drain with ReadAvailableSamples.
type Recorder struct {
	config    Config
	recording atomic.Bool

	mu      sync.Mutex // guards pending, cmd and cancel
	pending []int16
	cmd     *exec.Cmd
	cancel  context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

func (r *Recorder) Start(ctx context.Context) error {
	if r.recording.Load() {
		return fmt.Errorf("already recording")
	}

	if err := r.validateConfig(); err != nil {
		return err
	}

	if err := CheckPipeWireAvailable(ctx); err != nil {
		return fmt.Errorf("PipeWire not available: %w", err)
	}

	captureCtx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(captureCtx, "pw-record", r.buildPwRecordArgs()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start pw-record: %w", err)
	}

	// Log stderr lines to aid diagnostics.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("audio stderr: %s", scanner.Text())
		}
	}()

	r.mu.Lock()
	r.cmd = cmd
	r.cancel = cancel
	r.pending = nil
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(captureCtx, stdout)

	return nil
}

// ReadAvailableSamples drains and returns everything captured since the
// previous call. It returns nil when nothing is pending.
func (r *Recorder) ReadAvailableSamples() []int16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := r.pending
	r.pending = nil
	return samples
}

// Close stops the capture process and waits for the capture loop to exit.
// Samples already buffered remain readable afterwards.
func (r *Recorder) Close() error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	return nil
}

func (r *Recorder) captureLoop(ctx context.Context, stdout io.Reader) {
	defer func() {
		r.recording.Store(false)

		// Ensure the child process is reaped.
		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.mu.Unlock()

		r.wg.Done()
	}()

	buffer := make([]byte, r.config.BufferSize)
	var carry byte
	var haveCarry bool

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			chunk := buffer[:n]
			if haveCarry {
				chunk = append([]byte{carry}, chunk...)
				haveCarry = false
			}
			if len(chunk)%2 != 0 {
				carry = chunk[len(chunk)-1]
				haveCarry = true
				chunk = chunk[:len(chunk)-1]
			}

			samples := decodeSamples(chunk)
			r.mu.Lock()
			r.pending = append(r.pending, samples...)
			r.mu.Unlock()
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				log.Printf("audio: read error: %v", readErr)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// decodeSamples interprets little-endian signed 16-bit PCM. len(data) must
// be even.
func decodeSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

func (r *Recorder) buildPwRecordArgs() []string {
	args := []string{
		"--format", "s16",
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
		"-", // stdout
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return args
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

func (r *Recorder) validateConfig() error {
	if r.config.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", r.config.SampleRate)
	}
	if r.config.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", r.config.Channels)
	}
	if r.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", r.config.BufferSize)
	}
	return nil
}
