package injection

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	name         string
	availableErr error
	injectErr    error
	injected     []string
}

func (f *fakeBackend) Name() string     { return f.name }
func (f *fakeBackend) Available() error { return f.availableErr }

func (f *fakeBackend) Inject(ctx context.Context, text string, timeout time.Duration) error {
	if f.injectErr != nil {
		return f.injectErr
	}
	f.injected = append(f.injected, text)
	return nil
}

func TestInjector_EmptyText(t *testing.T) {
	inj := NewDefaultInjector()
	if err := inj.Inject(context.Background(), ""); err == nil {
		t.Errorf("Inject(\"\") should fail")
	}
}

func TestInjector_FirstAvailableBackendWins(t *testing.T) {
	first := &fakeBackend{name: "first"}
	second := &fakeBackend{name: "second"}
	inj := &injector{backends: []Backend{first, second}, timeout: time.Second}

	if err := inj.Inject(context.Background(), "hello"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if len(first.injected) != 1 || first.injected[0] != "hello" {
		t.Errorf("first backend injected = %v, want [hello]", first.injected)
	}
	if len(second.injected) != 0 {
		t.Errorf("second backend should not run when the first succeeds")
	}
}

func TestInjector_FallsThroughUnavailable(t *testing.T) {
	first := &fakeBackend{name: "first", availableErr: errors.New("missing binary")}
	second := &fakeBackend{name: "second"}
	inj := &injector{backends: []Backend{first, second}, timeout: time.Second}

	if err := inj.Inject(context.Background(), "hello"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if len(second.injected) != 1 {
		t.Errorf("second backend injected = %v, want fallback to run", second.injected)
	}
}

func TestInjector_FallsThroughFailure(t *testing.T) {
	first := &fakeBackend{name: "first", injectErr: errors.New("tool crashed")}
	second := &fakeBackend{name: "second"}
	inj := &injector{backends: []Backend{first, second}, timeout: time.Second}

	if err := inj.Inject(context.Background(), "hello"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if len(second.injected) != 1 {
		t.Errorf("second backend should run after the first fails")
	}
}

func TestInjector_AllBackendsFail(t *testing.T) {
	first := &fakeBackend{name: "first", injectErr: errors.New("nope")}
	inj := &injector{backends: []Backend{first}, timeout: time.Second}

	if err := inj.Inject(context.Background(), "hello"); err == nil {
		t.Errorf("Inject() should fail when every backend fails")
	}
}

func TestNewInjector_SkipsUnknownBackends(t *testing.T) {
	inj := NewInjector(Config{Backends: []string{"teleport", "ydotool"}, Timeout: time.Second})
	concrete, ok := inj.(*injector)
	if !ok {
		t.Fatalf("NewInjector() returned %T", inj)
	}
	if len(concrete.backends) != 1 {
		t.Errorf("backends = %d, want unknown names skipped", len(concrete.backends))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Backends) != 3 {
		t.Errorf("default backends = %v, want the full fallback chain", cfg.Backends)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("default timeout = %v, want positive", cfg.Timeout)
	}
}
