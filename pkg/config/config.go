// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	BackendFile = "file" // Newline-delimited text file in the temp dir
	BackendBolt = "bolt" // bbolt database in the temp dir

	DefaultBufferSize = 32 * 1024
)

// 🔎 searchNames are tried in order inside the user config dir when no path is given
var searchNames = []string{"fsclip.yaml", "fsclip.yml", "fsclip.json", "fsclip.hcl"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 💾 Store selects where the clipboard state lives
type Store struct {
	Backend string `json:"backend" yaml:"backend"` // file or bolt
	Path    string `json:"path" yaml:"path"`       // Empty means the backend's default temp location
}

// 🚚 Transfer tunes the paste side
type Transfer struct {
	BufferSize   int      `json:"buffer_size" yaml:"buffer_size"`     // Copy buffer in bytes
	Ignore       []string `json:"ignore" yaml:"ignore"`               // Doublestar globs skipped inside directory sources
	HideProgress bool     `json:"hide_progress" yaml:"hide_progress"` // Disable progress bars
}

// 📚 Config represents the complete configuration
type Config struct {
	Store    Store    `json:"store" yaml:"store"`
	Transfer Transfer `json:"transfer" yaml:"transfer"`

	location string
}

// 🏭 Default returns a validated config with no file behind it
func Default() *Config {
	cfg := &Config{}
	// defaults never fail validation
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file. An empty path searches the
// user config dir and falls back to Default when nothing is found.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		found, err := search()
		if err != nil {
			return nil, errors.Errorf("searching for config: %w", err)
		}
		if found == "" {
			logger.Debug().Msg("no config file found, using defaults")
			return Default(), nil
		}
		path = found
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	return cfg, nil
}

func search() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		// no config dir (e.g. $HOME unset) is not an error for us
		return "", nil
	}

	for _, name := range searchNames {
		candidate := filepath.Join(dir, "fsclip", name)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Errorf("checking %s: %w", candidate, err)
		}
	}

	return "", nil
}

// 🔍 Validate checks if the configuration is valid and fills defaults
func (cfg *Config) Validate() error {
	switch cfg.Store.Backend {
	case "":
		cfg.Store.Backend = BackendFile
	case BackendFile, BackendBolt:
	default:
		return errors.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendBolt, cfg.Store.Backend)
	}

	if cfg.Store.Path != "" {
		cfg.Store.Path = filepath.Clean(cfg.Store.Path)
	}

	if cfg.Transfer.BufferSize < 0 {
		return errors.Errorf("transfer.buffer_size must not be negative")
	}
	if cfg.Transfer.BufferSize == 0 {
		cfg.Transfer.BufferSize = DefaultBufferSize
	}

	return nil
}

// 📍 Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	path := cfg.Store.Path
	if path == "" {
		path = "default"
	}
	return fmt.Sprintf("store=%s:%s buffer=%d ignore=%d", cfg.Store.Backend, path, cfg.Transfer.BufferSize, len(cfg.Transfer.Ignore))
}
