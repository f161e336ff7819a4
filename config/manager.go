package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager handles thread-safe configuration access and reloads.
type Manager struct {
	mu         sync.RWMutex
	current    *Config
	configPath string

	// LoadCallback, if set, runs after every successful Load, e.g. to
	// rebuild the engine from the new filter list.
	LoadCallback func(*Config) error
}

// NewManager creates a configuration manager backed by the file at path.
func NewManager(path string) *Manager {
	return &Manager{configPath: path, current: &Config{}}
}

// Load reads the configuration file from disk and swaps it in atomically.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", m.configPath, err)
	}

	var newConfig Config
	if err := yaml.Unmarshal(data, &newConfig); err != nil {
		return fmt.Errorf("config: parsing %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.current = &newConfig
	m.mu.Unlock()

	if m.LoadCallback != nil {
		return m.LoadCallback(&newConfig)
	}
	return nil
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}
