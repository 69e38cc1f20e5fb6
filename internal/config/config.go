// Package config loads wiregen project files.
//
// A project file names one schema and the outputs generated from it:
//
//	schema: proto/smash.d.ts
//	log_level: info
//	outputs:
//	  - target: go
//	    path: server/proto/smash.go
//	    package: proto
//	  - target: ts
//	    path: web/src/proto.ts
//
// The same fields are accepted in TOML when the file ends in .toml. Relative
// paths are resolved against the directory holding the project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are the project file names Find looks for, in order.
var DefaultFiles = []string{"wiregen.yaml", "wiregen.yml", "wiregen.toml"}

// DefaultLogLevel is used when log_level is not set.
const DefaultLogLevel = "warn"

// ErrNotFound is returned by Find when a directory has no project file.
var ErrNotFound = errors.New("config: no project file found")

// Config is a loaded project file.
type Config struct {
	Schema   string   `yaml:"schema" toml:"schema"`
	LogLevel string   `yaml:"log_level" toml:"log_level"`
	Outputs  []Output `yaml:"outputs" toml:"outputs"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// Output is one generated file.
type Output struct {
	// Target names a registered emitter ("go", "ts").
	Target string `yaml:"target" toml:"target"`
	Path   string `yaml:"path" toml:"path"`

	// Package is passed to the emitter. Targets without packages ignore it.
	Package string `yaml:"package,omitempty" toml:"package"`
}

// Find returns the first of DefaultFiles present in dir.
func Find(dir string) (string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(DefaultFiles, ", "))
}

// Load reads a project file. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	cfg.Path = abs
	cfg.resolve(filepath.Dir(abs))
	return cfg, nil
}

func parse(path string, data []byte) (*Config, error) {
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown fields: %s", strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

func validate(cfg *Config) error {
	if cfg.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: unknown level %q", cfg.LogLevel)
	}
	if len(cfg.Outputs) == 0 {
		return fmt.Errorf("outputs list is required and must be non-empty")
	}

	seen := make(map[string]int, len(cfg.Outputs))
	for i, out := range cfg.Outputs {
		if out.Target == "" {
			return fmt.Errorf("outputs[%d].target is required", i)
		}
		if out.Path == "" {
			return fmt.Errorf("outputs[%d].path is required", i)
		}
		key := filepath.Clean(out.Path)
		if j, dup := seen[key]; dup {
			return fmt.Errorf("outputs[%d].path %q is already written by outputs[%d]", i, out.Path, j)
		}
		seen[key] = i
	}
	return nil
}

// resolve makes relative paths absolute against dir.
func (c *Config) resolve(dir string) {
	c.Schema = join(dir, c.Schema)
	for i := range c.Outputs {
		c.Outputs[i].Path = join(dir, c.Outputs[i].Path)
	}
}

func join(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// Level returns the configured log level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}
