package collector

import "time"

// CollectorConfig contains configurable parameters for the snapshot
// collector. Use DefaultCollectorConfig() to get sensible defaults, then
// override as needed.
type CollectorConfig struct {
	// CollectTimeout bounds one full snapshot collection (default: 5s).
	CollectTimeout time.Duration

	// Kernel table locations, overridable for tests.
	MemInfoPath  string // default: /proc/meminfo
	SoftIrqsPath string // default: /proc/softirqs
}

// DefaultCollectorConfig returns a CollectorConfig with sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		CollectTimeout: 5 * time.Second,
		MemInfoPath:    "/proc/meminfo",
		SoftIrqsPath:   "/proc/softirqs",
	}
}

// WithCollectTimeout returns a copy of the config with modified timeout.
func (c CollectorConfig) WithCollectTimeout(d time.Duration) CollectorConfig {
	c.CollectTimeout = d
	return c
}

// WithMemInfoPath returns a copy of the config reading an alternate meminfo.
func (c CollectorConfig) WithMemInfoPath(path string) CollectorConfig {
	c.MemInfoPath = path
	return c
}

// WithSoftIrqsPath returns a copy of the config reading an alternate softirqs.
func (c CollectorConfig) WithSoftIrqsPath(path string) CollectorConfig {
	c.SoftIrqsPath = path
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c CollectorConfig) Validate() error {
	if c.CollectTimeout <= 0 {
		return &ConfigError{Field: "CollectTimeout", Message: "must be positive"}
	}
	if c.MemInfoPath == "" {
		return &ConfigError{Field: "MemInfoPath", Message: "must not be empty"}
	}
	if c.SoftIrqsPath == "" {
		return &ConfigError{Field: "SoftIrqsPath", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
