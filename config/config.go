// Package config loads the CLI-level run options of §6 (report/trial
// log switches, status-log level, file and rotation, and a solver
// trial-limit override) that sit above a
// project's own [OPTIONS]/[TIMES] input sections, grounded on the
// layered koanf loader pattern the example pack's config packages use:
// defaults, then a YAML file, then PIPENET_-prefixed environment
// overrides, highest priority last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PIPENET_"

// Config is the CLI's own settings, independent of anything a project
// file itself carries.
type Config struct {
	Report struct {
		TrialLog  bool `koanf:"trial_log"`
		Energy    bool `koanf:"energy"`
		Quiet     bool `koanf:"quiet"`
	} `koanf:"report"`

	Log struct {
		Level      string `koanf:"level"`
		File       string `koanf:"file"`
		MaxSizeMB  int    `koanf:"max_size_mb"`
		MaxBackups int    `koanf:"max_backups"`
		MaxAgeDays int    `koanf:"max_age_days"`
		Compress   bool   `koanf:"compress"`
	} `koanf:"log"`

	Solver struct {
		MaxTrialsOverride int `koanf:"max_trials_override"` // 0 = use project value
	} `koanf:"solver"`
}

// Loader accumulates config sources before producing a Config.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
}

// NewLoader returns a Loader that checks the given paths in order,
// falling back to pipenet.yaml / .pipenet.yaml in the working
// directory when none are given.
func NewLoader(paths ...string) *Loader {
	if len(paths) == 0 {
		paths = []string{"pipenet.yaml", ".pipenet.yaml"}
	}
	return &Loader{k: koanf.New("."), configPaths: paths}
}

// Load resolves defaults, then the first config file found, then
// environment overrides, then unmarshals into a Config.
func (l *Loader) Load() (*Config, error) {
	defaults := map[string]any{
		"report.trial_log":  false,
		"report.energy":     true,
		"report.quiet":      false,
		"log.level":         "info",
		"log.file":          "",
		"log.max_size_mb":   50,
		"log.max_backups":   3,
		"log.max_age_days":  14,
		"log.compress":      true,
		"solver.max_trials_override": 0,
	}
	if err := l.k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	for _, p := range l.configPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			if err := l.k.Load(file.Provider(abs), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", abs, err)
			}
			break
		}
	}

	if err := l.k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Load is the convenience entry point used by cmd/pipenet.
func Load(paths ...string) (*Config, error) {
	return NewLoader(paths...).Load()
}
