package persist

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.PoolSize != 10 {
		t.Errorf("expected default pool_size 10, got %d", cfg.PoolSize)
	}
	if cfg.MinIdleConns != 2 {
		t.Errorf("expected default min_idle_conns 2, got %d", cfg.MinIdleConns)
	}
	if cfg.DialTimeout != "5s" || cfg.ReadTimeout != "3s" || cfg.WriteTimeout != "3s" {
		t.Errorf("unexpected default timeouts: %+v", cfg)
	}
}

func TestConfigApplyDefaultsPreservesSetFields(t *testing.T) {
	cfg := Config{Addr: "redis:6380", PoolSize: 5}
	cfg.ApplyDefaults()

	if cfg.Addr != "redis:6380" {
		t.Errorf("expected addr to be preserved, got %q", cfg.Addr)
	}
	if cfg.PoolSize != 5 {
		t.Errorf("expected pool_size to be preserved, got %d", cfg.PoolSize)
	}
}

func TestConfigValidateDisabled(t *testing.T) {
	cfg := Config{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestConfigValidateMissingAddr(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	cfg.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing addr")
	}
}

func TestConfigValidateBadPoolSize(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	cfg.PoolSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive pool_size")
	}
}

func TestConfigValidateBadTimeout(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	cfg.DialTimeout = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparseable dial_timeout")
	}
}

func TestConfigValidateValid(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
