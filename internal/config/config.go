// Package config loads csort configuration files and resolves the effective
// ordering policy from defaults, file values and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/csort/internal/model"
)

// Config file names discovered in the working directory. TOML wins when
// both are present.
const (
	TOMLName = "csort.toml"
	YAMLName = ".csort.yaml"
)

// ErrConfig marks configuration errors: unknown category names, malformed
// levels, unreadable files. These abort the run before any file is touched.
var ErrConfig = errors.New("invalid configuration")

// Overrides is one partial option set from a single precedence source.
// Nil fields fall through to the next source.
type Overrides struct {
	Levels          map[model.Category]int
	UseCustomGroups *bool
	AutoStatic      *bool
}

// fileConfig mirrors the on-disk schema, shared by both formats.
type fileConfig struct {
	Order           map[string]int `toml:"order" yaml:"order"`
	UseCustomGroups *bool          `toml:"use_custom_groups" yaml:"use_custom_groups"`
	AutoStatic      *bool          `toml:"auto_static" yaml:"auto_static"`
}

// Load reads one configuration file, chosen by extension.
func Load(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("%s: %v: %w", path, err, ErrConfig)
	}

	var fc fileConfig
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return Overrides{}, fmt.Errorf("%s: unsupported config format %q: %w", path, ext, ErrConfig)
	}
	if err != nil {
		return Overrides{}, fmt.Errorf("%s: %v: %w", path, err, ErrConfig)
	}

	levels, err := categoryLevels(fc.Order, path)
	if err != nil {
		return Overrides{}, err
	}
	return Overrides{
		Levels:          levels,
		UseCustomGroups: fc.UseCustomGroups,
		AutoStatic:      fc.AutoStatic,
	}, nil
}

// Discover locates a config file in dir. Returns empty Overrides and an
// empty path when no file exists; that is not an error.
func Discover(dir string) (Overrides, string, error) {
	for _, name := range []string{TOMLName, YAMLName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ov, err := Load(path)
		return ov, path, err
	}
	return Overrides{}, "", nil
}

// ParseLevels parses repeated --level name=N flag values.
func ParseLevels(specs []string) (map[model.Category]int, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	levels := make(map[model.Category]int, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("--level %q: want name=integer: %w", spec, ErrConfig)
		}
		name = strings.TrimSpace(name)
		if !model.Known(name) {
			return nil, fmt.Errorf("--level: unknown category %q: %w", name, ErrConfig)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("--level %q: level must be an integer: %w", spec, ErrConfig)
		}
		levels[model.Category(name)] = n
	}
	return levels, nil
}

// Resolve merges defaults, file values and CLI overrides into one policy.
// Precedence is per individual field: cli > file > defaults.
func Resolve(file, cli Overrides) (model.OrderingPolicy, error) {
	policy := model.DefaultPolicy()

	for _, ov := range []Overrides{file, cli} {
		for c, l := range ov.Levels {
			if !model.Known(string(c)) {
				return model.OrderingPolicy{}, fmt.Errorf("unknown category %q: %w", c, ErrConfig)
			}
			policy.Levels[c] = l
		}
		if ov.UseCustomGroups != nil {
			policy.HonorCustomGroups = *ov.UseCustomGroups
		}
		if ov.AutoStatic != nil {
			policy.AutoConvertStatic = *ov.AutoStatic
		}
	}
	return policy, nil
}

func categoryLevels(order map[string]int, path string) (map[model.Category]int, error) {
	if len(order) == 0 {
		return nil, nil
	}
	levels := make(map[model.Category]int, len(order))
	for name, level := range order {
		if !model.Known(name) {
			return nil, fmt.Errorf("%s: unknown category %q: %w", path, name, ErrConfig)
		}
		levels[model.Category(name)] = level
	}
	return levels, nil
}
