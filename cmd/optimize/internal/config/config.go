package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/delaneyj/turnsignal/compiler"
	"gopkg.in/yaml.v3"
)

const FileName = "optimize.yaml"

// Config is the optional optimize.yaml project file.
type Config struct {
	// StaticKeys are extra node keys allowed on static elements.
	StaticKeys []string `yaml:"staticKeys"`
	// ReservedTags are treated as platform elements on top of the platform set.
	ReservedTags []string `yaml:"reservedTags"`
	// Platform picks the base reserved tag set: "web" (default) or "none".
	Platform string `yaml:"platform"`
}

// LoadOptional reads optimize.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Merge appends command line values to the file values.
func (c *Config) Merge(staticKeys, reservedTags []string, platform string) {
	c.StaticKeys = append(c.StaticKeys, staticKeys...)
	c.ReservedTags = append(c.ReservedTags, reservedTags...)
	if p := strings.TrimSpace(platform); p != "" {
		c.Platform = p
	}
}

// Options resolves the optimizer options.
func (c *Config) Options() (compiler.Options, error) {
	var base func(string) bool
	switch strings.ToLower(strings.TrimSpace(c.Platform)) {
	case "", "web":
		base = compiler.IsReservedTag
	case "none":
	default:
		return compiler.Options{}, fmt.Errorf("unknown platform %q", c.Platform)
	}

	keys := make([]string, 0, len(c.StaticKeys))
	for _, k := range c.StaticKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return compiler.Options{
		StaticKeys:    strings.Join(keys, ","),
		IsReservedTag: compiler.ReservedTags(base, c.ReservedTags...),
	}, nil
}
