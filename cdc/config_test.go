package cdc

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if len(cfg.Brokers) == 0 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("expected default broker, got %v", cfg.Brokers)
	}
	if cfg.DialTimeout != "10s" {
		t.Errorf("expected default dial_timeout '10s', got %q", cfg.DialTimeout)
	}
}

func TestConfigApplyDefaultsSASLMechanism(t *testing.T) {
	cfg := Config{EnableSASL: true}
	cfg.ApplyDefaults()
	if cfg.SASLMechanism != "PLAIN" {
		t.Errorf("expected default SASL mechanism 'PLAIN', got %q", cfg.SASLMechanism)
	}
}

func TestConfigValidateDisabled(t *testing.T) {
	cfg := Config{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestConfigValidateMissingTopic(t *testing.T) {
	cfg := Config{Enabled: true, Brokers: []string{"broker:9092"}, GroupID: "g"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing topic")
	}
}

func TestConfigValidateMissingGroupID(t *testing.T) {
	cfg := Config{Enabled: true, Brokers: []string{"broker:9092"}, Topic: "events"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing group_id")
	}
}

func TestConfigValidateValid(t *testing.T) {
	cfg := Config{Enabled: true, Brokers: []string{"broker:9092"}, Topic: "events", GroupID: "g"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidateSASLRequiresUsername(t *testing.T) {
	cfg := Config{Enabled: true, Brokers: []string{"broker:9092"}, Topic: "events", GroupID: "g", EnableSASL: true}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing SASL username")
	}
}

func TestParseDurationEmpty(t *testing.T) {
	if d := ParseDuration(""); d != 0 {
		t.Errorf("expected 0 for empty duration, got %v", d)
	}
}
