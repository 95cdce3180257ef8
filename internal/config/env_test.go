package config

import (
	"strings"
	"testing"
)

func TestParseEnvDefaults(t *testing.T) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.ConfigsDir != "./configs" || cfg.DataDir != "./data" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.DisableDB || cfg.EnablePprof {
		t.Fatalf("bool defaults: %+v", cfg)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("COLONY_ADDR", "127.0.0.1:9000")
	t.Setenv("COLONY_DISABLE_DB", "true")
	t.Setenv("COLONY_TUNING", "/etc/colony/tuning.yaml")

	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || !cfg.DisableDB || cfg.TuningPath != "/etc/colony/tuning.yaml" {
		t.Fatalf("overrides: %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("COLONY_DISABLE_DB", "not-a-bool")

	var cfg Server
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
