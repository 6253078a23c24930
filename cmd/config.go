// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bow/domwait/wait"
)

// fileConfig is the content of a --config file. Every field is optional.
type fileConfig struct {
	File     string           `yaml:"file" toml:"file"`
	URL      string           `yaml:"url" toml:"url"`
	Headless *bool            `yaml:"headless" toml:"headless"`
	Strategy *wait.Descriptor `yaml:"strategy" toml:"strategy"`
}

// loadConfig reads a config file, picking the format from its extension.
func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	case ".toml":
		err = toml.Unmarshal(raw, &cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &cfg, nil
}

// apply copies config values into s, except for those whose flag was set on the command line.
func (s *settings) apply(cfg *fileConfig, changed func(flag string) bool) {
	// A source given on the command line replaces both sources of the file.
	if !changed("file") && !changed("url") {
		if cfg.File != "" {
			s.file = cfg.File
		}
		if cfg.URL != "" {
			s.url = cfg.URL
		}
	}
	if cfg.Headless != nil && !changed("headless") {
		s.headless = *cfg.Headless
	}

	d := cfg.Strategy
	if d == nil {
		return
	}
	if d.Variant != "" && !changed("strategy") {
		s.variant = d.Variant
	}
	if d.TimeoutInMil > 0 && !changed("timeout") {
		s.timeout = time.Duration(d.TimeoutInMil) * time.Millisecond
	}
	if d.IntervalInMil > 0 && !changed("poll-freq") {
		s.pollFreq = time.Duration(d.IntervalInMil) * time.Millisecond
	}
}
