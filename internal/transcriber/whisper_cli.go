package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// whisperCLIModel runs local inference by shelling out to whisper-cli from
// whisper.cpp. Samples are written to a temp float WAV file per call.
type whisperCLIModel struct {
	identifier string
	device     string
	binary     string
}

// newWhisperCLIModel probes the runtime before committing to a device so a
// bad GPU setup degrades to CPU instead of failing the session later.
func newWhisperCLIModel(identifier, computeType, device string) (Model, error) {
	if identifier == "" {
		return nil, fmt.Errorf("no model configured")
	}

	binary, err := exec.LookPath("whisper-cli")
	if err != nil {
		return nil, fmt.Errorf("whisper-cli not found: install whisper.cpp first")
	}

	// Explicit paths must exist; bare names resolve to downloaded models.
	if strings.ContainsRune(identifier, os.PathSeparator) {
		if _, err := os.Stat(identifier); err != nil {
			return nil, fmt.Errorf("model file not found: %s", identifier)
		}
	}

	switch device {
	case "cuda", "gpu":
		if _, err := exec.LookPath("nvidia-smi"); err != nil {
			return nil, fmt.Errorf("device %q requested but no GPU runtime found", device)
		}
	case "", "auto", "cpu":
	default:
		return nil, fmt.Errorf("unknown device: %q", device)
	}

	return &whisperCLIModel{identifier: identifier, device: device, binary: binary}, nil
}

func (m *whisperCLIModel) Transcribe(ctx context.Context, samples []float32, opts DecodeOptions) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	wavData := encodeWAVFloat32(samples, 16000)

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("whisperwriter-%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, wavData, 0600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	defer os.Remove(tmpFile)

	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", m.resolveModelPath(),
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", tmpFile,
	}
	if opts.InitialPrompt != "" {
		args = append(args, "--prompt", opts.InitialPrompt)
	}
	if opts.Temperature > 0 {
		args = append(args, "-tp", fmt.Sprintf("%g", opts.Temperature))
	}
	if !opts.ConditionOnPreviousText {
		args = append(args, "-nc")
	}
	if opts.VADFilter {
		args = append(args, "--vad")
	}
	if m.device == "cpu" {
		args = append(args, "-ng")
	}

	cmd := exec.CommandContext(ctx, m.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("transcriber: whisper-cli failed after %v: %v\nstderr: %s", duration, err, stderr.String())
		return "", fmt.Errorf("whisper-cli failed: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	log.Printf("transcriber: local model transcribed %d samples in %v: %q", len(samples), duration, text)
	return text, nil
}

func (m *whisperCLIModel) resolveModelPath() string {
	if strings.ContainsRune(m.identifier, os.PathSeparator) {
		return m.identifier
	}

	// Named models live under the user data dir, matching the layout the
	// download helper writes to.
	dataDir, err := os.UserHomeDir()
	if err != nil {
		return m.identifier
	}
	return filepath.Join(dataDir, ".local", "share", "whisperwriter", "models",
		fmt.Sprintf("ggml-%s.bin", m.identifier))
}
