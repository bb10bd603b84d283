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

package transfer

import (
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/fsclip/pkg/conflict"
	"gitlab.com/tozd/go/errors"
)

// ErrTransferIO marks a read or write failure while copying. It aborts the
// whole batch.
var ErrTransferIO = errors.Base("transfer failed")

// errStopped is returned internally when the consumer stops iterating
var errStopped = errors.Base("consumer stopped")

const defaultBufferSize = 32 * 1024

// 📊 EventKind tells the consumer what happened
type EventKind int

const (
	EventStart    EventKind = iota // One per request, before any bytes move
	EventProgress                  // Bytes were written
	EventDone                      // Terminal event for a request
)

// String returns a string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// 📨 Event is one step of a transfer
type Event struct {
	Kind    EventKind
	Request conflict.Request
	Label   string // Base name of the source, for display
	Path    string // File being written (progress only)
	Delta   int64  // Bytes added by this event (progress only)
	Copied  int64  // Bytes copied so far for this request
	Total   int64  // Bytes measured before copying started
	Files   int    // Regular files copied so far for this request
}

// 🚚 Engine copies files and directory trees
type Engine struct {
	bufferSize int
	ignore     []string
}

// Option configures an Engine
type Option func(*Engine)

// WithBufferSize sets the copy buffer; non-positive values keep the default
func WithBufferSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bufferSize = n
		}
	}
}

// WithIgnore skips paths inside directory sources that match any doublestar
// pattern. Patterns are matched against slash separated paths relative to the
// source root.
func WithIgnore(patterns ...string) Option {
	return func(e *Engine) {
		e.ignore = append(e.ignore, patterns...)
	}
}

// 🏭 New creates an engine
func New(opts ...Option) (*Engine, error) {
	e := &Engine{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(e)
	}

	for _, pattern := range e.ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	return e, nil
}

// 📄 item is one filesystem entry of a source, relative to the source root
type item struct {
	rel  string
	mode fs.FileMode
	size int64
}

// 📏 Measure returns the number of bytes a transfer of src would copy
func (e *Engine) Measure(src string) (int64, error) {
	_, total, err := e.plan(src)
	return total, err
}

// plan lists what will be copied for src, parents before children
func (e *Engine) plan(src string) ([]item, int64, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, 0, errors.Errorf("inspecting source: %w", err)
	}

	if !info.IsDir() {
		it := item{rel: ".", mode: info.Mode()}
		if info.Mode().IsRegular() {
			it.size = info.Size()
		}
		return []item{it}, it.size, nil
	}

	var items []item
	var total int64
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if rel != "." && e.ignored(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		it := item{rel: rel, mode: info.Mode()}
		if info.Mode().IsRegular() {
			it.size = info.Size()
			total += it.size
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, 0, errors.Errorf("walking source: %w", err)
	}

	return items, total, nil
}

func (e *Engine) ignored(rel string) bool {
	for _, pattern := range e.ignore {
		// patterns were validated in New
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// 🏃 Run transfers each request in order and reports it as a lazy event
// sequence. Every request yields a start event, progress events and one done
// event. The first error is yielded once and ends the sequence; requests
// after it are never attempted. Breaking out of the loop stops the transfer
// where it is.
func (e *Engine) Run(ctx context.Context, reqs []conflict.Request) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		logger := zerolog.Ctx(ctx)

		for _, req := range reqs {
			if err := ctx.Err(); err != nil {
				yield(Event{}, errors.Errorf("transfer cancelled: %w", err))
				return
			}

			logger.Debug().Str("source", req.Source).Str("target", req.Target).Msg("starting transfer")

			ok, err := e.transfer(req, yield)
			if err != nil {
				logger.Debug().Str("source", req.Source).Err(err).Msg("transfer failed")
				yield(Event{}, errors.Errorf("%w: %s: %w", ErrTransferIO, req.Source, err))
				return
			}
			if !ok {
				return
			}
		}
	}
}

// transfer copies one request. It returns false when the consumer stopped.
func (e *Engine) transfer(req conflict.Request, yield func(Event, error) bool) (bool, error) {
	items, total, err := e.plan(req.Source)
	if err != nil {
		return false, err
	}

	ev := Event{
		Kind:    EventStart,
		Request: req,
		Label:   filepath.Base(req.Source),
		Total:   total,
	}
	if !yield(ev, nil) {
		return false, nil
	}

	if err := os.MkdirAll(req.Destination, 0755); err != nil {
		return false, errors.Errorf("creating destination: %w", err)
	}

	buf := make([]byte, e.bufferSize)
	var dirs []item
	for _, it := range items {
		src := filepath.Join(req.Source, it.rel)
		dst := filepath.Join(req.Target, it.rel)

		switch {
		case it.mode.IsDir():
			// owner needs write access while filling the tree; real mode is applied below
			if err := os.MkdirAll(dst, it.mode.Perm()|0700); err != nil {
				return false, errors.Errorf("creating directory %s: %w", dst, err)
			}
			dirs = append(dirs, it)

		case it.mode&fs.ModeSymlink != 0:
			link, err := os.Readlink(src)
			if err != nil {
				return false, errors.Errorf("reading link %s: %w", src, err)
			}
			if err := os.Symlink(link, dst); err != nil {
				return false, errors.Errorf("creating link %s: %w", dst, err)
			}

		case it.mode.IsRegular():
			err := copyFile(src, dst, it.mode.Perm(), buf, func(n int) bool {
				ev.Kind = EventProgress
				ev.Path = dst
				ev.Delta = int64(n)
				ev.Copied += int64(n)
				return yield(ev, nil)
			})
			if errors.Is(err, errStopped) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			ev.Files++

		default:
			// sockets, devices and pipes have no bytes to copy
			continue
		}
	}

	// innermost first so a read-only parent does not block its children
	for i := len(dirs) - 1; i >= 0; i-- {
		dst := filepath.Join(req.Target, dirs[i].rel)
		if err := os.Chmod(dst, dirs[i].mode.Perm()); err != nil {
			return false, errors.Errorf("setting mode on %s: %w", dst, err)
		}
	}

	ev.Kind = EventDone
	ev.Path = ""
	ev.Delta = 0
	return yield(ev, nil), nil
}

// 📄 copyFile copies src into a new file at dst, calling onWrite after every
// successful write. The destination must not exist.
func copyFile(src, dst string, perm fs.FileMode, buf []byte, onWrite func(n int) bool) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	pw := &progressWriter{w: destination, onWrite: onWrite}
	// hide os.File's WriterTo so every chunk passes through pw with our buffer
	_, copyErr := io.CopyBuffer(pw, struct{ io.Reader }{source}, buf)
	closeErr := destination.Close()

	if copyErr != nil {
		if errors.Is(copyErr, errStopped) {
			return copyErr
		}
		return errors.Errorf("copying file content: %w", copyErr)
	}
	if closeErr != nil {
		return errors.Errorf("closing destination file: %w", closeErr)
	}

	// the create mode was filtered through the umask
	if err := os.Chmod(dst, perm); err != nil {
		return errors.Errorf("setting mode: %w", err)
	}

	return nil
}

// 📈 progressWriter counts bytes as they are written
type progressWriter struct {
	w       io.Writer
	onWrite func(n int) bool
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 && !pw.onWrite(n) {
		return n, errStopped
	}
	return n, err
}
