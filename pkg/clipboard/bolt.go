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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.etcd.io/bbolt"
)

const (
	DefaultBoltFileName = "fsclip.db"

	clipboardBucket = "clipboard"
	stateKey        = "state"
	openTimeout     = time.Second
)

// 🗄️ BoltStore keeps the state under a single key of a bbolt database.
// The database is opened per call; fsclip invocations are short lived.
type BoltStore struct {
	path string
}

// 🏭 NewBoltStore creates a bolt store at path, or at the default temp
// location when path is empty
func NewBoltStore(path string) *BoltStore {
	if path == "" {
		path = filepath.Join(os.TempDir(), DefaultBoltFileName)
	}
	return &BoltStore{path: filepath.Clean(path)}
}

func (s *BoltStore) Location() string {
	return s.path
}

// 💾 Write replaces the stored state in one transaction
func (s *BoltStore) Write(ctx context.Context, entries []Entry) error {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("entries", len(entries)).Msg("writing clipboard")

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return errors.Errorf("opening bolt database: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(clipboardBucket))
		if err != nil {
			return errors.Errorf("creating bucket: %w", err)
		}
		return b.Put([]byte(stateKey), Encode(entries))
	})
	if err != nil {
		return errors.Errorf("writing state: %w", err)
	}

	return nil
}

// 📖 Read loads the stored state without creating the database
func (s *BoltStore) Read(ctx context.Context) ([]Entry, error) {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("reading clipboard")

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: nothing staged at %s", ErrClipboardUnavailable, s.path)
		}
		return nil, errors.Errorf("checking bolt database: %w", err)
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: openTimeout, ReadOnly: true})
	if err != nil {
		return nil, errors.Errorf("opening bolt database: %w", err)
	}
	defer db.Close()

	var entries []Entry
	found := false
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(clipboardBucket))
		if b == nil {
			return nil
		}
		// an empty state is stored as a zero-length value, which Get can report as nil
		k, v := b.Cursor().Seek([]byte(stateKey))
		if !bytes.Equal(k, []byte(stateKey)) {
			return nil
		}
		found = true
		// Decode copies out of the mmap'd value
		entries = Decode(v)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("reading state: %w", err)
	}

	if !found {
		return nil, errors.Errorf("%w: nothing staged at %s", ErrClipboardUnavailable, s.path)
	}

	return entries, nil
}
