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

package operation

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/fsclip/pkg/conflict"
	"github.com/walteh/fsclip/pkg/progress"
	"github.com/walteh/fsclip/pkg/resolve"
	"github.com/walteh/fsclip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// 📦 Paste transfers every staged path that survives the conflict filter into
// dest. The clipboard is only read, so the same paths can be pasted again.
func (o *operator) Paste(ctx context.Context, dest string) (*PasteResult, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := o.store.Read(ctx)
	if err != nil {
		return nil, errors.Errorf("reading clipboard: %w", err)
	}

	if dest == "" {
		dest = "."
	}
	destAbs, err := resolve.Abs(dest)
	if err != nil {
		return nil, errors.Errorf("resolving destination: %w", err)
	}

	logger.Debug().
		Str("destination", destAbs).
		Int("staged", len(entries)).
		Msg("pasting")

	filtered := conflict.Filter(destAbs, entries)
	for _, ex := range filtered.Excluded {
		logger.Debug().Err(ex.Err()).Msg("excluding entry")
		o.console.Ignored(ex.Source, ex.Reason.String())
	}

	result := &PasteResult{
		Destination: destAbs,
		Excluded:    filtered.Excluded,
	}

	if len(filtered.Kept) == 0 {
		logger.Debug().Msg("nothing left to transfer")
		return result, nil
	}

	summary, err := progress.Drive(o.engine.Run(ctx, filtered.Kept), o.sink, func(ev transfer.Event) {
		if ev.Kind == transfer.EventDone {
			o.console.Transferred(ev.Request.Source, ev.Request.Target, ev.Copied)
		}
	})

	result.Transferred = summary.Entries
	result.Files = summary.Files
	result.Bytes = summary.Bytes

	if err != nil {
		return result, errors.Errorf("pasting into %s: %w", destAbs, err)
	}

	return result, nil
}

// 👀 Show reads the clipboard and checks which entries still exist
func (o *operator) Show(ctx context.Context) ([]Staged, error) {
	entries, err := o.store.Read(ctx)
	if err != nil {
		return nil, errors.Errorf("reading clipboard: %w", err)
	}

	staged := make([]Staged, 0, len(entries))
	for _, entry := range entries {
		_, err := os.Lstat(string(entry))
		staged = append(staged, Staged{Entry: entry, Exists: err == nil})
	}

	zerolog.Ctx(ctx).Debug().Int("entries", len(staged)).Str("store", o.store.Location()).Msg("clipboard read")

	return staged, nil
}
