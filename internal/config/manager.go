package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the active configuration and reloads it when the config
// file changes on disk. Callers always read through GetConfig.
type Manager struct {
	mu      sync.RWMutex
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewManager() (*Manager, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Manager{config: config}, nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification.
	configCopy := *m.config
	return &configCopy
}

func (m *Manager) StartWatching(ctx context.Context) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	// Watch the directory: editors replace the file on save, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx, configPath)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, configPath string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name != configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			m.reload()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config manager: watch error: %v", err)
		}
	}
}

func (m *Manager) reload() {
	config, err := Load()
	if err != nil {
		log.Printf("Config manager: reload failed, keeping previous configuration: %v", err)
		return
	}
	if err := config.Validate(); err != nil {
		log.Printf("Config manager: reloaded configuration invalid, keeping previous: %v", err)
		return
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	log.Printf("Config manager: configuration reloaded")
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}
