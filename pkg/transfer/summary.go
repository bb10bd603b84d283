package transfer

import "iter"

// 🧮 Summary totals a finished run
type Summary struct {
	Entries int   // Requests that reached their done event
	Files   int   // Regular files copied
	Bytes   int64 // Bytes copied
}

// Tally drains seq, passing every event to the observers. It returns the
// first error from the sequence together with the totals up to that point.
func Tally(seq iter.Seq2[Event, error], observers ...func(Event)) (Summary, error) {
	var s Summary
	for ev, err := range seq {
		if err != nil {
			return s, err
		}

		for _, observe := range observers {
			observe(ev)
		}

		if ev.Kind == EventDone {
			s.Entries++
			s.Files += ev.Files
			s.Bytes += ev.Copied
		}
	}
	return s, nil
}
