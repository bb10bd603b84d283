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

// Package conflict decides which staged paths may be pasted into a
// destination.
//
// Filter never touches the filesystem except through its stat function and
// never returns early: every staged entry ends up either kept or excluded
// with a reason, so the full report can be checked as a function of inputs.
package conflict

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/fsclip/pkg/clipboard"
	"github.com/walteh/fsclip/pkg/resolve"
	"gitlab.com/tozd/go/errors"
)

// ErrExcludedByConflict marks a staged path skipped because of the destination.
var ErrExcludedByConflict = errors.Base("excluded by conflict")

// 🚦 Reason explains why an entry was excluded
type Reason int

const (
	ReasonUnknown                 Reason = iota
	ReasonSourceMissing                  // Source no longer on disk
	ReasonSameAsDestination              // Source path is the destination path
	ReasonDestinationInsideSource        // Pasting a directory into itself
	ReasonNameCollision                  // Destination already has that name
)

// String returns a string representation of Reason
func (r Reason) String() string {
	switch r {
	case ReasonSourceMissing:
		return "source missing"
	case ReasonSameAsDestination:
		return "source and destination identical"
	case ReasonDestinationInsideSource:
		return "destination inside source"
	case ReasonNameCollision:
		return "destination name collision"
	default:
		return "unknown"
	}
}

// 📦 Request is one eligible transfer
type Request struct {
	Source      string // Absolute source path
	Destination string // Absolute destination directory
	Target      string // Destination/base(Source)
	IsDir       bool   // Source was a directory when filtered
}

// 🚫 Exclusion is a staged path that will not be transferred
type Exclusion struct {
	Source string
	Reason Reason
}

// Err returns the exclusion as an error for logging and matching
func (e Exclusion) Err() error {
	if e.Reason == ReasonSourceMissing {
		return errors.Errorf("%w: %s: %s", resolve.ErrInvalidSource, e.Source, e.Reason)
	}
	return errors.Errorf("%w: %s: %s", ErrExcludedByConflict, e.Source, e.Reason)
}

// 📋 Result splits the staged entries; Kept preserves store order
type Result struct {
	Kept     []Request
	Excluded []Exclusion
}

// StatFunc matches os.Lstat
type StatFunc func(name string) (fs.FileInfo, error)

type options struct {
	stat StatFunc
}

// Option configures Filter
type Option func(*options)

// WithStat replaces os.Lstat, mostly for tests
func WithStat(stat StatFunc) Option {
	return func(o *options) {
		o.stat = stat
	}
}

// 🔍 Filter checks each source against dest, in order, stopping at the first
// failing check for that source:
//
//  1. source missing
//  2. source and destination identical
//  3. destination inside a directory source
//  4. name collision inside the destination (or dest itself is an existing file)
//
// Two staged entries that would land on the same target also collide; the
// first one wins.
func Filter(dest string, sources []clipboard.Entry, opts ...Option) Result {
	o := &options{stat: os.Lstat}
	for _, opt := range opts {
		opt(o)
	}

	dest = filepath.Clean(dest)
	destInfo, err := o.stat(dest)
	destIsFile := err == nil && !destInfo.IsDir()

	claimed := make(map[string]bool)

	var res Result
	for _, entry := range sources {
		src := filepath.Clean(string(entry))

		exclude := func(r Reason) {
			res.Excluded = append(res.Excluded, Exclusion{Source: src, Reason: r})
		}

		srcInfo, err := o.stat(src)
		if err != nil {
			exclude(ReasonSourceMissing)
			continue
		}

		if src == dest {
			exclude(ReasonSameAsDestination)
			continue
		}

		if srcInfo.IsDir() && within(dest, src) {
			exclude(ReasonDestinationInsideSource)
			continue
		}

		target := filepath.Join(dest, filepath.Base(src))
		if destIsFile {
			exclude(ReasonNameCollision)
			continue
		}
		if _, err := o.stat(target); err == nil || claimed[target] {
			exclude(ReasonNameCollision)
			continue
		}

		claimed[target] = true
		res.Kept = append(res.Kept, Request{
			Source:      src,
			Destination: dest,
			Target:      target,
			IsDir:       srcInfo.IsDir(),
		})
	}

	return res
}

// within reports whether path is strictly below dir
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
