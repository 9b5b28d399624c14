package audio

import (
	"context"
	"testing"
)

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []int16
	}{
		{"empty", nil, []int16{}},
		{"zero sample", []byte{0x00, 0x00}, []int16{0}},
		{"positive max", []byte{0xFF, 0x7F}, []int16{32767}},
		{"negative min", []byte{0x00, 0x80}, []int16{-32768}},
		{"minus one", []byte{0xFF, 0xFF}, []int16{-1}},
		{"two samples", []byte{0x01, 0x00, 0xFE, 0xFF}, []int16{1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeSamples(tt.data)
			if len(got) != len(tt.want) {
				t.Fatalf("decodeSamples() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("decodeSamples()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRecorder_ReadAvailableSamples_Drains(t *testing.T) {
	r := NewDefaultRecorder()
	r.pending = []int16{1, 2, 3}

	first := r.ReadAvailableSamples()
	if len(first) != 3 {
		t.Errorf("first drain returned %d samples, want 3", len(first))
	}

	second := r.ReadAvailableSamples()
	if len(second) != 0 {
		t.Errorf("second drain returned %d samples, want 0", len(second))
	}
}

func TestRecorder_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero sample rate", Config{SampleRate: 0, Channels: 1, BufferSize: 4096}, true},
		{"zero channels", Config{SampleRate: 16000, Channels: 0, BufferSize: 4096}, true},
		{"zero buffer", Config{SampleRate: 16000, Channels: 1, BufferSize: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecorder(tt.config)
			err := r.validateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecorder_StartRejectsInvalidConfig(t *testing.T) {
	r := NewRecorder(Config{SampleRate: -1, Channels: 1, BufferSize: 4096})
	if err := r.Start(context.Background()); err == nil {
		t.Errorf("Start() with invalid config should fail")
		r.Close()
	}
}

func TestRecorder_CloseIdempotent(t *testing.T) {
	r := NewDefaultRecorder()
	if err := r.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
