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

// Package progress renders transfer events for a person watching.
//
// The transfer engine knows nothing about terminals. A Sink receives one
// Start, any number of Add calls and one Done per pasted entry; Drive feeds
// a transfer sequence into a Sink and returns the run's summary.
package progress

import (
	"io"
	"iter"

	"github.com/pterm/pterm"
	"github.com/walteh/fsclip/pkg/transfer"
)

// 📊 Sink displays the progress of one entry at a time
type Sink interface {
	Start(label string, total int64)
	Add(n int64)
	Done()
}

// 🔌 Observe adapts a Sink to a transfer.Tally observer
func Observe(sink Sink) func(transfer.Event) {
	return func(ev transfer.Event) {
		switch ev.Kind {
		case transfer.EventStart:
			sink.Start(ev.Label, ev.Total)
		case transfer.EventProgress:
			sink.Add(ev.Delta)
		case transfer.EventDone:
			sink.Done()
		}
	}
}

// 🏃 Drive drains seq into sink, then hands each event to the observers. An
// entry interrupted by an error is still closed on the sink so nothing is
// left drawing.
func Drive(seq iter.Seq2[transfer.Event, error], sink Sink, observers ...func(transfer.Event)) (transfer.Summary, error) {
	open := false
	observe := Observe(sink)

	summary, err := transfer.Tally(seq, func(ev transfer.Event) {
		open = ev.Kind != transfer.EventDone
		observe(ev)
		for _, o := range observers {
			o(ev)
		}
	})
	if err != nil && open {
		sink.Done()
	}
	return summary, err
}

// 🔇 NopSink ignores everything
type NopSink struct{}

func (NopSink) Start(string, int64) {}
func (NopSink) Add(int64)           {}
func (NopSink) Done()               {}

// 📈 PtermSink draws a pterm progress bar per entry
type PtermSink struct {
	writer io.Writer
	bar    *pterm.ProgressbarPrinter
}

// 🏭 NewPtermSink creates a sink drawing to w; nil means pterm's default output
func NewPtermSink(w io.Writer) *PtermSink {
	return &PtermSink{writer: w}
}

func (s *PtermSink) Start(label string, total int64) {
	s.stop()

	// an empty entry has nothing to draw
	if total <= 0 {
		return
	}

	printer := pterm.DefaultProgressbar.
		WithTotal(int(total)).
		WithTitle(label).
		WithShowCount(false).
		WithRemoveWhenDone(true)
	if s.writer != nil {
		printer = printer.WithWriter(s.writer)
	}

	bar, err := printer.Start()
	if err != nil {
		// progress is cosmetic; the copy goes on without a bar
		return
	}
	s.bar = bar
}

func (s *PtermSink) Add(n int64) {
	if s.bar == nil {
		return
	}
	s.bar.Add(int(n))
}

func (s *PtermSink) Done() {
	s.stop()
}

func (s *PtermSink) stop() {
	if s.bar == nil {
		return
	}
	if s.bar.IsActive {
		_, _ = s.bar.Stop()
	}
	s.bar = nil
}
