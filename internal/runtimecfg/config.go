// Package runtimecfg loads the optional runtime configuration file: the
// handful of tunables (typewriter speed, skip-mode multiplier, default
// character color, VM stack cap) an embedder may want to set once instead
// of passing as flags on every invocation.
package runtimecfg

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/nmscript/nms/internal/runtime"
)

// Config holds every runtime tunable the config file may set. Zero values
// are never written back by Load; a config file that omits a key leaves
// that field at whatever Default() put there.
type Config struct {
	TypewriterSpeed       float64 `yaml:"typewriter_speed"`
	SkipMultiplier        float64 `yaml:"skip_multiplier"`
	StackCapacity         int     `yaml:"stack_capacity"`
	DefaultCharacterColor string  `yaml:"default_character_color"`
}

// Default returns the built-in tunables, matching internal/runtime's and
// internal/vm's own compiled-in defaults so a missing config file and an
// empty config file behave identically.
func Default() Config {
	return Config{
		TypewriterSpeed:       runtime.TypewriterSpeedDefault,
		SkipMultiplier:        runtime.SkipMultiplierDefault,
		StackCapacity:         0, // 0 defers to vm.DefaultStackCapacity
		DefaultCharacterColor: "#ffffff",
	}
}

// Load reads and parses the YAML config file at path, overlaying it onto
// Default(). A missing path is not an error: the config file is optional,
// so Load silently returns Default(). A present-but-malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply pushes every configured tunable onto r. Called once after
// construction, before any CLI flag override: config file sets the
// baseline, flags win.
func (c Config) Apply(r *runtime.Runtime) {
	r.SetTypewriterSpeed(c.TypewriterSpeed)
	r.SetSkipMultiplier(c.SkipMultiplier)
	if c.StackCapacity > 0 {
		r.SetStackCapacity(c.StackCapacity)
	}
}
