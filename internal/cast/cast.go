// Package cast implements the asciicast v2 recording format: a JSON header
// line followed by one JSON array per event. Event timestamps are absolute
// seconds from the start of the recording and must never decrease.
package cast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind is the asciicast event type code.
type EventKind string

const (
	// Keystroke marks a simulated keypress being echoed.
	Keystroke EventKind = "i"
	// Output marks captured interpreter output being displayed verbatim.
	Output EventKind = "o"
)

// Event is one timed record in a recording. Events are immutable once
// created; retiming helpers return fresh values.
type Event struct {
	// Time is in seconds. Absolute in serialized recordings; the retiming
	// helpers also work on streams converted to inter-event durations.
	Time float64
	Kind EventKind
	Data string
}

// Header is the first line of an asciicast v2 file.
type Header struct {
	Version   int     `json:"version"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Title     string  `json:"title,omitempty"`
}

// MarshalLine renders the event as an asciicast v2 line. Timestamps keep
// six fractional digits so the minimal monotonicity bump survives
// serialization. Newlines in the payload become CRLF, which terminals
// require to move the cursor back to column zero.
func (e Event) MarshalLine() (string, error) {
	if e.Kind != Keystroke && e.Kind != Output {
		return "", fmt.Errorf("unknown event kind %q", e.Kind)
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return "", fmt.Errorf("encode event data: %w", err)
	}
	return fmt.Sprintf(`[%.6f, "%s", %s]`, e.Time, e.Kind, fixNewlines(string(data))), nil
}

// fixNewlines rewrites escaped LF sequences as CRLF inside an encoded JSON
// string. Existing CRLF sequences are left alone.
func fixNewlines(encoded string) string {
	encoded = strings.ReplaceAll(encoded, `\r\n`, `\n`)
	return strings.ReplaceAll(encoded, `\n`, `\r\n`)
}

// ParseLine decodes one event line.
func ParseLine(line string) (Event, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Event{}, fmt.Errorf("decode event line: %w", err)
	}
	if len(fields) != 3 {
		return Event{}, fmt.Errorf("event line has %d fields, want 3", len(fields))
	}

	var event Event
	if err := json.Unmarshal(fields[0], &event.Time); err != nil {
		return Event{}, fmt.Errorf("decode event time: %w", err)
	}
	var kind string
	if err := json.Unmarshal(fields[1], &kind); err != nil {
		return Event{}, fmt.Errorf("decode event kind: %w", err)
	}
	event.Kind = EventKind(kind)
	if err := json.Unmarshal(fields[2], &event.Data); err != nil {
		return Event{}, fmt.Errorf("decode event data: %w", err)
	}
	return event, nil
}

// MarshalLine renders the header as the first line of a recording.
func (h Header) MarshalLine() (string, error) {
	if h.Version == 0 {
		h.Version = 2
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	return string(data), nil
}

// ParseHeader decodes the header line of a recording.
func ParseHeader(line string) (Header, error) {
	var header Header
	if err := json.Unmarshal([]byte(line), &header); err != nil {
		return Header{}, fmt.Errorf("decode header: %w", err)
	}
	if header.Version != 2 {
		return Header{}, fmt.Errorf("unsupported asciicast version %d", header.Version)
	}
	return header, nil
}
