package cast

// Retiming helpers. Serialized recordings carry absolute timestamps; the
// duration-based transforms below require the stream to be converted to
// inter-event durations first, and back afterwards.

// WithRelativeTime converts absolute timestamps to inter-event durations.
func WithRelativeTime(events []Event) []Event {
	out := make([]Event, len(events))
	previous := 0.0
	for i, e := range events {
		out[i] = Event{Time: e.Time - previous, Kind: e.Kind, Data: e.Data}
		previous = e.Time
	}
	return out
}

// WithAbsoluteTime converts inter-event durations back to absolute
// timestamps.
func WithAbsoluteTime(events []Event) []Event {
	out := make([]Event, len(events))
	clock := 0.0
	for i, e := range events {
		clock += e.Time
		out[i] = Event{Time: clock, Kind: e.Kind, Data: e.Data}
	}
	return out
}

// ScaleDurations multiplies every duration by factor. Requires relative
// times. A factor of zero collapses the recording to instantaneous
// playback, which is a supported use.
func ScaleDurations(events []Event, factor float64) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = Event{Time: e.Time * factor, Kind: e.Kind, Data: e.Data}
	}
	return out
}

// CapDurations limits every duration to at most max. Requires relative
// times. Useful to trim long idle stretches out of a recording.
func CapDurations(events []Event, max float64) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		d := e.Time
		if d > max {
			d = max
		}
		out[i] = Event{Time: d, Kind: e.Kind, Data: e.Data}
	}
	return out
}

// Duration sums a relative-time stream into the recording's total length.
func Duration(events []Event) float64 {
	total := 0.0
	for _, e := range events {
		total += e.Time
	}
	return total
}
