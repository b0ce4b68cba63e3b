package collector

import (
	"testing"
	"time"
)

func TestDefaultCollectorConfig(t *testing.T) {
	cfg := DefaultCollectorConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CollectTimeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.CollectTimeout)
	}
	if cfg.MemInfoPath != "/proc/meminfo" || cfg.SoftIrqsPath != "/proc/softirqs" {
		t.Errorf("paths = %q, %q", cfg.MemInfoPath, cfg.SoftIrqsPath)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(CollectorConfig) CollectorConfig
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c CollectorConfig) CollectorConfig { return c },
		},
		{
			name:    "zero timeout",
			mutate:  func(c CollectorConfig) CollectorConfig { return c.WithCollectTimeout(0) },
			wantErr: true,
		},
		{
			name:    "empty meminfo path",
			mutate:  func(c CollectorConfig) CollectorConfig { return c.WithMemInfoPath("") },
			wantErr: true,
		},
		{
			name:    "empty softirqs path",
			mutate:  func(c CollectorConfig) CollectorConfig { return c.WithSoftIrqsPath("") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.mutate(DefaultCollectorConfig())
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigWithCopies(t *testing.T) {
	base := DefaultCollectorConfig()
	changed := base.WithCollectTimeout(time.Second)
	if base.CollectTimeout == changed.CollectTimeout {
		t.Error("WithCollectTimeout mutated the receiver")
	}
}
