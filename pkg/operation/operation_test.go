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
	"bytes"
	"context"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fsclip/pkg/clipboard"
	"github.com/walteh/fsclip/pkg/conflict"
	"github.com/walteh/fsclip/pkg/log"
	"github.com/walteh/fsclip/pkg/resolve"
	"github.com/walteh/fsclip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockStore is a mock implementation of the clipboard.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Write(ctx context.Context, entries []clipboard.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockStore) Read(ctx context.Context) ([]clipboard.Entry, error) {
	result := m.Called(ctx)
	entries, _ := result.Get(0).([]clipboard.Entry)
	return entries, result.Error(1)
}

func (m *MockStore) Location() string {
	return "mock"
}

// 🧪 scriptedEngine replays fixed events for every run
type scriptedEngine struct {
	events []transfer.Event
	err    error
	runs   int
}

func (s *scriptedEngine) Run(ctx context.Context, reqs []conflict.Request) iter.Seq2[transfer.Event, error] {
	s.runs++
	return func(yield func(transfer.Event, error) bool) {
		for _, ev := range s.events {
			if !yield(ev, nil) {
				return
			}
		}
		if s.err != nil {
			yield(transfer.Event{}, s.err)
		}
	}
}

// 🧪 recordingSink counts what it is shown
type recordingSink struct {
	starts []string
	added  int64
	dones  int
}

func (r *recordingSink) Start(label string, total int64) { r.starts = append(r.starts, label) }
func (r *recordingSink) Add(n int64)                     { r.added += n }
func (r *recordingSink) Done()                           { r.dones++ }

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func newTestOperator(t *testing.T, store clipboard.Store, opts ...func(*Options)) (Operator, *bytes.Buffer) {
	t.Helper()

	engine, err := transfer.New()
	require.NoError(t, err)

	console := &bytes.Buffer{}
	o := Options{
		Store:   store,
		Engine:  engine,
		Console: log.New(console, zerolog.New(zerolog.NewTestWriter(t))),
	}
	for _, opt := range opts {
		opt(&o)
	}

	op, err := New(o)
	require.NoError(t, err)
	return op, console
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// chdir moves into dir for the rest of the test and returns the working
// directory as the process sees it
func chdir(t *testing.T, dir string) string {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func TestNew(t *testing.T) {
	engine, err := transfer.New()
	require.NoError(t, err)

	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{name: "missing_store", opts: Options{Engine: engine}, errContains: "store is required"},
		{name: "missing_engine", opts: Options{Store: clipboard.NewMemoryStore()}, errContains: "engine is required"},
		{name: "defaults_fill_sink_and_console", opts: Options{Store: clipboard.NewMemoryStore(), Engine: engine}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := New(tt.opts)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, op)
		})
	}
}

func TestCopy(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	dir := filepath.Join(tmpDir, "dir")
	writeFile(t, a, "a")
	writeFile(t, filepath.Join(dir, "inner.txt"), "inner")
	missing := filepath.Join(tmpDir, "missing.txt")

	tests := []struct {
		name         string
		paths        []string
		wantStaged   []clipboard.Entry
		wantRejected []string
	}{
		{
			name:       "all_exist",
			paths:      []string{a, dir},
			wantStaged: []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(dir)},
		},
		{
			name:         "missing_inputs_skipped_in_order",
			paths:        []string{missing, dir, a},
			wantStaged:   []clipboard.Entry{clipboard.Entry(dir), clipboard.Entry(a)},
			wantRejected: []string{missing},
		},
		{
			name:       "duplicates_preserved",
			paths:      []string{a, a},
			wantStaged: []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(a)},
		},
		{
			name:         "nothing_exists_clears",
			paths:        []string{missing},
			wantRejected: []string{missing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			store := clipboard.NewMemoryStore()
			op, _ := newTestOperator(t, store)

			res, err := op.Copy(ctx, tt.paths)

			var rejected []string
			for _, r := range res.Rejected {
				rejected = append(rejected, r.Input)
				assert.True(t, errors.Is(r.Err, resolve.ErrInvalidSource))
			}
			assert.Equal(t, tt.wantRejected, rejected, "rejected inputs should match")

			require.NoError(t, err)
			assert.Equal(t, 1, store.Writes(), "every copy should write the store once")

			got, err := store.Read(ctx)
			require.NoError(t, err)
			if len(tt.wantStaged) == 0 {
				assert.Empty(t, res.Staged)
				assert.Empty(t, got, "store should hold the empty set")
				return
			}
			assert.Equal(t, tt.wantStaged, res.Staged)
			assert.Equal(t, tt.wantStaged, got, "store should hold exactly the staged entries")
		})
	}
}

func TestCopyReplacesPreviousState(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	b := filepath.Join(tmpDir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	store := clipboard.NewFileStore(filepath.Join(tmpDir, "state", "fsclip.clipboard"))
	op, _ := newTestOperator(t, store)

	_, err := op.Copy(ctx, []string{a})
	require.NoError(t, err)
	_, err = op.Copy(ctx, []string{b})
	require.NoError(t, err)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []clipboard.Entry{clipboard.Entry(b)}, got, "second copy should replace the first")

	// an all-missing copy replaces it with nothing
	res, err := op.Copy(ctx, []string{filepath.Join(tmpDir, "nope")})
	require.NoError(t, err)
	require.Len(t, res.Rejected, 1)
	assert.True(t, errors.Is(res.Rejected[0].Err, resolve.ErrInvalidSource))

	got, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "previous entries should be cleared")
}

func TestPasteAfterEmptyCopy(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	dst := filepath.Join(tmpDir, "dst")
	writeFile(t, a, "a")

	tests := []struct {
		name  string
		store clipboard.Store
	}{
		{name: "file", store: clipboard.NewFileStore(filepath.Join(tmpDir, "file", "fsclip.clipboard"))},
		{name: "bolt", store: clipboard.NewBoltStore(filepath.Join(tmpDir, "bolt", "fsclip.db"))},
		{name: "memory", store: clipboard.NewMemoryStore()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, _ := newTestOperator(t, tt.store)

			_, err := op.Copy(ctx, []string{a})
			require.NoError(t, err)
			_, err = op.Copy(ctx, []string{filepath.Join(tmpDir, "gone.txt")})
			require.NoError(t, err)

			res, err := op.Paste(ctx, dst)
			require.NoError(t, err)
			assert.Zero(t, res.Transferred, "the earlier copy should not be pasted")
			assert.Empty(t, res.Excluded)
			assert.NoFileExists(t, filepath.Join(dst, "a.txt"))
		})
	}
}

func TestCopyWriteFailure(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	writeFile(t, a, "a")

	store := &MockStore{}
	store.On("Write", mock.Anything, []clipboard.Entry{clipboard.Entry(a)}).Return(errors.New("disk full"))

	op, _ := newTestOperator(t, store)
	_, err := op.Copy(ctx, []string{a})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing clipboard")
	assert.Contains(t, err.Error(), "disk full")

	store.AssertExpectations(t)
}

func TestCopyConsoleOutput(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	writeFile(t, a, "a")

	op, console := newTestOperator(t, clipboard.NewMemoryStore())
	_, err := op.Copy(ctx, []string{a, filepath.Join(tmpDir, "b.txt")})
	require.NoError(t, err)

	out := console.String()
	assert.Contains(t, out, "- "+filepath.Join(tmpDir, "b.txt"))
	assert.Contains(t, out, "does not exist")
	assert.Contains(t, out, "+ "+a)
	assert.Contains(t, out, "staged")
}

func TestCopyThenPaste(t *testing.T) {
	ctx := testContext(t)
	wd := chdir(t, t.TempDir())
	writeFile(t, filepath.Join(wd, "a.txt"), "hello")

	store := clipboard.NewMemoryStore()
	op, _ := newTestOperator(t, store)

	res, err := op.Copy(ctx, []string{"a.txt", "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []clipboard.Entry{clipboard.Entry(filepath.Join(wd, "a.txt"))}, res.Staged)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "b.txt", res.Rejected[0].Input)

	pasted, err := op.Paste(ctx, "./dst")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "dst"), pasted.Destination)
	assert.Equal(t, 1, pasted.Transferred)
	assert.Equal(t, int64(len("hello")), pasted.Bytes)
	assert.Empty(t, pasted.Excluded)

	got, err := os.ReadFile(filepath.Join(wd, "dst", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	// paste leaves the clipboard intact
	entries, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPasteDefaultsToWorkingDirectory(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src", "a.txt")
	writeFile(t, src, "a")

	store := clipboard.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(src)}))

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "here"), 0755))
	wd := chdir(t, filepath.Join(tmpDir, "here"))

	op, _ := newTestOperator(t, store)
	res, err := op.Paste(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, wd, res.Destination)
	assert.FileExists(t, filepath.Join(wd, "a.txt"))
}

func TestPasteSkipsCollision(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "src", "a.txt")
	b := filepath.Join(tmpDir, "src", "b.txt")
	dst := filepath.Join(tmpDir, "dst")
	writeFile(t, a, "new a")
	writeFile(t, b, "new b")
	writeFile(t, filepath.Join(dst, "a.txt"), "old a")

	store := clipboard.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(b)}))

	op, _ := newTestOperator(t, store)
	res, err := op.Paste(ctx, dst)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Transferred)
	assert.Equal(t, []conflict.Exclusion{{Source: a, Reason: conflict.ReasonNameCollision}}, res.Excluded)

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old a", string(got), "colliding file should be left alone")

	got, err = os.ReadFile(filepath.Join(dst, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new b", string(got))
}

func TestPasteSameAsDestination(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "dir")
	writeFile(t, filepath.Join(dir, "x.txt"), "x")

	store := clipboard.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(dir)}))

	engine := &scriptedEngine{}
	op, _ := newTestOperator(t, store, func(o *Options) { o.Engine = engine })

	res, err := op.Paste(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, res.Transferred)
	assert.Equal(t, []conflict.Exclusion{{Source: dir, Reason: conflict.ReasonSameAsDestination}}, res.Excluded)
	assert.Zero(t, engine.runs, "no transfer should start")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "destination should be untouched")
}

func TestPasteWithoutCopy(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "dst")

	store := &MockStore{}
	store.On("Read", mock.Anything).Return(nil, errors.Errorf("%w: nothing staged", clipboard.ErrClipboardUnavailable))

	engine := &scriptedEngine{}
	op, _ := newTestOperator(t, store, func(o *Options) { o.Engine = engine })

	res, err := op.Paste(ctx, dst)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, clipboard.ErrClipboardUnavailable))
	assert.Zero(t, engine.runs)
	assert.NoDirExists(t, dst, "nothing should be written")

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestPasteWithoutCopyFileStore(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	storePath := filepath.Join(tmpDir, "state", "fsclip.clipboard")

	op, _ := newTestOperator(t, clipboard.NewFileStore(storePath))

	_, err := op.Paste(ctx, filepath.Join(tmpDir, "dst"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, clipboard.ErrClipboardUnavailable))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "neither the store nor the destination should be created")
}

func TestPasteTransferErrorStopsBatch(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	b := filepath.Join(tmpDir, "b.txt")
	writeFile(t, a, "aaaa")
	writeFile(t, b, "b")

	store := clipboard.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(b)}))

	reqA := conflict.Request{Source: a, Target: filepath.Join(tmpDir, "dst", "a.txt")}
	engine := &scriptedEngine{
		events: []transfer.Event{
			{Kind: transfer.EventStart, Request: reqA, Label: "a.txt", Total: 4},
			{Kind: transfer.EventProgress, Request: reqA, Delta: 4, Copied: 4, Total: 4},
			{Kind: transfer.EventDone, Request: reqA, Copied: 4, Total: 4, Files: 1},
			{Kind: transfer.EventStart, Label: "b.txt", Total: 1},
		},
		err: errors.Errorf("%w: write failed", transfer.ErrTransferIO),
	}
	sink := &recordingSink{}
	op, _ := newTestOperator(t, store, func(o *Options) {
		o.Engine = engine
		o.Sink = sink
	})

	res, err := op.Paste(ctx, filepath.Join(tmpDir, "dst"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, transfer.ErrTransferIO))
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Transferred, "entries finished before the failure are reported")
	assert.Equal(t, int64(4), res.Bytes)
	assert.Equal(t, 2, sink.dones, "the interrupted entry should still be closed on the sink")
}

func TestPasteDrivesSink(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "src", "a.txt")
	d := filepath.Join(tmpDir, "src", "tree")
	writeFile(t, a, "0123456789")
	writeFile(t, filepath.Join(d, "x"), "xx")
	writeFile(t, filepath.Join(d, "nested", "y"), "yyy")

	store := clipboard.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(d)}))

	sink := &recordingSink{}
	op, _ := newTestOperator(t, store, func(o *Options) { o.Sink = sink })

	dst := filepath.Join(tmpDir, "dst")
	res, err := op.Paste(ctx, dst)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "tree"}, sink.starts)
	assert.Equal(t, 2, sink.dones)
	assert.Equal(t, int64(15), sink.added, "progress should add up to the bytes copied")
	assert.Equal(t, 2, res.Transferred)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, int64(15), res.Bytes)
	assert.FileExists(t, filepath.Join(dst, "tree", "nested", "y"))
}

func TestShow(t *testing.T) {
	ctx := testContext(t)
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.txt")
	gone := filepath.Join(tmpDir, "gone.txt")
	writeFile(t, a, "a")

	store := clipboard.NewMemoryStore()
	op, _ := newTestOperator(t, store)

	_, err := op.Show(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, clipboard.ErrClipboardUnavailable))

	require.NoError(t, store.Write(ctx, []clipboard.Entry{clipboard.Entry(a), clipboard.Entry(gone)}))

	staged, err := op.Show(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Staged{
		{Entry: clipboard.Entry(a), Exists: true},
		{Entry: clipboard.Entry(gone), Exists: false},
	}, staged)
	assert.Equal(t, 1, store.Writes(), "show should not write")
}
