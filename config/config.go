// Package config loads the caller-facing YAML configuration: which filter
// lists to load and the global memory budget to enforce while loading them.
package config

// Config is the top-level configuration structure.
type Config struct {
	Filters  []FilterConfig `yaml:"filters"`
	MemLimit int64          `yaml:"mem_limit,omitempty"` // bytes; 0 means unlimited
}

// FilterConfig names one filter list: either a path on disk (reloaded on
// mtime change) or an in-memory blob supplied directly in the config file.
type FilterConfig struct {
	ID       int    `yaml:"id"`
	Path     string `yaml:"path,omitempty"`
	Data     string `yaml:"data,omitempty"`
	InMemory bool   `yaml:"in_memory,omitempty"`
}
