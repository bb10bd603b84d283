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

// Package resolve turns user supplied path strings into absolute, cleaned
// paths that exist on disk.
package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidSource marks a path that cannot be staged: it does not exist, or its
// name cannot be stored one per line.
var ErrInvalidSource = errors.Base("invalid source")

// 🚫 Rejection records an input that was dropped during resolution
type Rejection struct {
	Input string // Raw input as given by the user
	Err   error  // Why it was dropped
}

// 🧭 Abs expands a leading ~ and returns the absolute, cleaned form of raw.
// It does not touch the filesystem.
func Abs(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.Errorf("%w: empty path", ErrInvalidSource)
	}

	expanded, err := expandHome(raw)
	if err != nil {
		return "", errors.Errorf("expanding home directory: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Errorf("getting absolute path: %w", err)
	}

	return filepath.Clean(abs), nil
}

// 🔍 Resolve returns the absolute path of raw, failing with ErrInvalidSource
// when nothing exists there
func Resolve(raw string) (string, error) {
	abs, err := Abs(raw)
	if err != nil {
		return "", err
	}

	if strings.ContainsAny(abs, "\r\n") {
		return "", errors.Errorf("%w: %q contains a line break", ErrInvalidSource, abs)
	}

	if _, err := os.Lstat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("%w: %s does not exist", ErrInvalidSource, abs)
		}
		return "", errors.Errorf("checking %s: %w", abs, err)
	}

	return abs, nil
}

// 📋 All resolves every input independently. Order and duplicates are kept;
// inputs that fail are returned as rejections and never block the rest.
func All(ctx context.Context, raws []string) ([]string, []Rejection) {
	logger := zerolog.Ctx(ctx)

	resolved := make([]string, 0, len(raws))
	var rejected []Rejection
	for _, raw := range raws {
		abs, err := Resolve(raw)
		if err != nil {
			logger.Debug().Str("input", raw).Err(err).Msg("rejecting input")
			rejected = append(rejected, Rejection{Input: raw, Err: err})
			continue
		}
		logger.Debug().Str("input", raw).Str("path", abs).Msg("resolved input")
		resolved = append(resolved, abs)
	}

	return resolved, rejected
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
