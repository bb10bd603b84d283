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

// Package clipboard persists the ordered list of staged paths between
// separate fsclip invocations.
//
// There is exactly one clipboard per machine: every backend stores its state
// at a fixed location under the OS temp dir, shared by all invocations and not
// namespaced per working directory or session. Concurrent instances clobber
// each other; the later write wins.
package clipboard

import (
	"context"
	"strings"

	"github.com/walteh/fsclip/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// ErrClipboardUnavailable means nothing has ever been staged.
var ErrClipboardUnavailable = errors.Base("clipboard unavailable")

// 📎 Entry is one staged absolute path
type Entry string

// 💾 Store reads and writes the whole clipboard state
type Store interface {
	// Write replaces the stored state with entries
	Write(ctx context.Context, entries []Entry) error
	// Read returns the stored state, or ErrClipboardUnavailable if nothing was staged
	Read(ctx context.Context) ([]Entry, error)
	// Location describes where the state lives
	Location() string
}

// 📝 Encode serializes entries as one path per line
func Encode(entries []Entry) []byte {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = string(e)
	}
	return []byte(strings.Join(lines, "\n"))
}

// 📖 Decode splits stored content back into entries, skipping blank lines
func Decode(data []byte) []Entry {
	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		entries = append(entries, Entry(line))
	}
	return entries
}

// 🏭 Open returns the store selected by cfg
func Open(cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case config.BackendBolt:
		return NewBoltStore(cfg.Path), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
	}
}
