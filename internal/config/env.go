package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server is the environment-driven configuration of cmd/server. Flags
// override whatever is set here.
type Server struct {
	Addr        string `env:"COLONY_ADDR" envDefault:":8080"`
	ConfigsDir  string `env:"COLONY_CONFIGS" envDefault:"./configs"`
	TuningPath  string `env:"COLONY_TUNING"`
	DataDir     string `env:"COLONY_DATA" envDefault:"./data"`
	DisableDB   bool   `env:"COLONY_DISABLE_DB"`
	NoAudit     bool   `env:"COLONY_NO_AUDIT"`
	EnablePprof bool   `env:"COLONY_ENABLE_PPROF"`
	Lenient     bool   `env:"COLONY_LENIENT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
