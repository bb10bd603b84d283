package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/fsclip/pkg/clipboard"
	"github.com/walteh/fsclip/pkg/resolve"
	"gitlab.com/tozd/go/errors"
)

// 📋 Copy resolves paths and replaces the clipboard with those that exist.
// Missing inputs are warned about and skipped. If none exist the clipboard is
// cleared.
func (o *operator) Copy(ctx context.Context, paths []string) (*CopyResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Strs("paths", paths).Msg("copying paths")

	resolved, rejected := resolve.All(ctx, paths)
	for _, r := range rejected {
		o.console.Ignored(r.Input, r.Err.Error())
	}

	result := &CopyResult{Rejected: rejected}

	entries := make([]clipboard.Entry, 0, len(resolved))
	for _, path := range resolved {
		entries = append(entries, clipboard.Entry(path))
	}

	if err := o.store.Write(ctx, entries); err != nil {
		return result, errors.Errorf("writing clipboard: %w", err)
	}

	for _, entry := range entries {
		o.console.Staged(string(entry))
	}

	logger.Debug().
		Int("staged", len(entries)).
		Int("rejected", len(rejected)).
		Str("store", o.store.Location()).
		Msg("clipboard written")

	result.Staged = entries
	return result, nil
}
