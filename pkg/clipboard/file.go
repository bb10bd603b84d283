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

package clipboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileName is the clipboard file inside os.TempDir()
const DefaultFileName = "fsclip.clipboard"

// 📄 FileStore keeps the state in a newline-delimited text file
type FileStore struct {
	path string
}

// 🏭 NewFileStore creates a file store at path, or at the default temp
// location when path is empty
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileLocation()
	}
	return &FileStore{path: filepath.Clean(path)}
}

// DefaultFileLocation is the shared clipboard file used by every invocation
func DefaultFileLocation() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

func (s *FileStore) Location() string {
	return s.path
}

// 💾 Write replaces the file through a temp file and rename, so readers see
// either the old state or the new one
func (s *FileStore) Write(ctx context.Context, entries []Entry) error {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("entries", len(entries)).Msg("writing clipboard")

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())

	// Write to temp file
	if err := os.WriteFile(tempPath, Encode(entries), 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// 📖 Read loads the file
func (s *FileStore) Read(ctx context.Context) ([]Entry, error) {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("reading clipboard")

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: nothing staged at %s", ErrClipboardUnavailable, s.path)
		}
		return nil, errors.Errorf("reading clipboard file: %w", err)
	}

	return Decode(data), nil
}
