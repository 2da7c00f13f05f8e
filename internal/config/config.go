// Package config loads the optional import configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls optional behavior of an import run. All fields have
// working defaults, so a missing config file is not an error.
type Config struct {
	// CoverStem is the base filename (without extension) of issue and
	// article cover images.
	CoverStem string `yaml:"cover_stem"`
	// GenerateHTML controls whether an HTML galley is produced from the
	// article body when the metadata format carries one.
	GenerateHTML bool `yaml:"generate_html"`
	// ParserOrder lists metadata parsers by name in probe order.
	ParserOrder []string `yaml:"parser_order"`
}

// knownParsers are the parser names accepted in parser_order.
var knownParsers = map[string]bool{
	"aplusplus": true,
	"jats":      true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		CoverStem:    "cover",
		GenerateHTML: true,
		ParserOrder:  []string{"aplusplus", "jats"},
	}
}

// Load reads and validates a config file. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.CoverStem == "" {
		cfg.CoverStem = "cover"
	}
	if len(cfg.ParserOrder) == 0 {
		cfg.ParserOrder = Default().ParserOrder
	}
	for _, name := range cfg.ParserOrder {
		if !knownParsers[name] {
			return nil, fmt.Errorf("%s: unknown parser %q in parser_order", path, name)
		}
	}

	return cfg, nil
}
