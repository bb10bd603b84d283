// Package operation ties the clipboard store, conflict filter and transfer
// engine into the copy and paste commands
package operation

import (
	"context"
	"io"
	"iter"

	"github.com/rs/zerolog"
	"github.com/walteh/fsclip/pkg/clipboard"
	"github.com/walteh/fsclip/pkg/conflict"
	"github.com/walteh/fsclip/pkg/log"
	"github.com/walteh/fsclip/pkg/progress"
	"github.com/walteh/fsclip/pkg/resolve"
	"github.com/walteh/fsclip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operator defines the main interface for fsclip operations
type Operator interface {
	// Copy replaces the clipboard with the paths that exist
	Copy(ctx context.Context, paths []string) (*CopyResult, error)
	// Paste transfers the staged paths into dest
	Paste(ctx context.Context, dest string) (*PasteResult, error)
	// Show lists the staged paths without changing anything
	Show(ctx context.Context) ([]Staged, error)
}

// 🚚 Transferer runs transfer requests; *transfer.Engine implements it
type Transferer interface {
	Run(ctx context.Context, reqs []conflict.Request) iter.Seq2[transfer.Event, error]
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Store persists the staged paths
	Store clipboard.Store
	// Engine performs the transfers
	Engine Transferer
	// Sink shows transfer progress; nil disables it
	Sink progress.Sink
	// Console receives user facing lines; nil discards them
	Console *log.Logger
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("store is required")
	}
	if opts.Engine == nil {
		return nil, errors.Errorf("engine is required")
	}
	if opts.Sink == nil {
		opts.Sink = progress.NopSink{}
	}
	if opts.Console == nil {
		opts.Console = log.New(io.Discard, zerolog.Nop())
	}
	return &operator{
		store:   opts.Store,
		engine:  opts.Engine,
		sink:    opts.Sink,
		console: opts.Console,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	store   clipboard.Store
	engine  Transferer
	sink    progress.Sink
	console *log.Logger
}

// 📋 CopyResult reports what a copy staged
type CopyResult struct {
	Staged   []clipboard.Entry
	Rejected []resolve.Rejection
}

// 📦 PasteResult reports what a paste did
type PasteResult struct {
	Destination string
	Transferred int   // Staged entries fully transferred
	Files       int   // Regular files written, counting directory contents
	Bytes       int64 // Bytes written
	Excluded    []conflict.Exclusion
}

// 👀 Staged is one clipboard entry as it looks on disk right now
type Staged struct {
	Entry  clipboard.Entry
	Exists bool
}
