package cast

import (
	"bufio"
	"fmt"
	"io"
)

// Writer streams a recording to a sink incrementally, so arbitrarily long
// sessions never require buffering the whole event list. It is the only
// component that touches the sink; a write failure aborts the pass and no
// partial-file cleanup is attempted.
type Writer struct {
	buf        *bufio.Writer
	wroteHead  bool
	wroteEvent bool
	last       float64
	count      int
}

// NewWriter wraps w for incremental recording output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// WriteHeader writes the header line. It must be called exactly once,
// before any event.
func (w *Writer) WriteHeader(h Header) error {
	if w.wroteHead {
		return fmt.Errorf("header already written")
	}
	line, err := h.MarshalLine()
	if err != nil {
		return err
	}
	if _, err := w.buf.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.wroteHead = true
	return nil
}

// WriteEvent appends one event line. Timestamps must not decrease across
// calls; a regression indicates a bug upstream and fails the pass rather
// than producing a recording players would reject.
func (w *Writer) WriteEvent(e Event) error {
	if !w.wroteHead {
		return fmt.Errorf("event %d: header not written", w.count)
	}
	if w.wroteEvent && e.Time < w.last {
		return fmt.Errorf("event %d: timestamp %.6f regresses below %.6f", w.count, e.Time, w.last)
	}
	line, err := e.MarshalLine()
	if err != nil {
		return fmt.Errorf("event %d: %w", w.count, err)
	}
	if _, err := w.buf.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write event %d: %w", w.count, err)
	}
	w.last = e.Time
	w.wroteEvent = true
	w.count++
	return nil
}

// Flush drains buffered output to the sink. Callers must flush on every
// exit path, including failure.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush recording: %w", err)
	}
	return nil
}

// Read decodes a recording, calling fn for each event in order. Returning
// an error from fn stops iteration and surfaces the error.
func Read(r io.Reader, fn func(Event) error) (Header, error) {
	scanner := newScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Header{}, fmt.Errorf("scan recording: %w", err)
		}
		return Header{}, fmt.Errorf("recording is empty")
	}
	header, err := ParseHeader(scanner.Text())
	if err != nil {
		return Header{}, err
	}

	index := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		event, err := ParseLine(line)
		if err != nil {
			return header, fmt.Errorf("event %d: %w", index, err)
		}
		if err := fn(event); err != nil {
			return header, err
		}
		index++
	}

	if err := scanner.Err(); err != nil {
		return header, fmt.Errorf("scan recording: %w", err)
	}
	return header, nil
}

// ReadAll decodes a recording into memory. Retiming operates on the whole
// event stream at once.
func ReadAll(r io.Reader) (Header, []Event, error) {
	var events []Event
	header, err := Read(r, func(e Event) error {
		events = append(events, e)
		return nil
	})
	if err != nil {
		return Header{}, nil, err
	}
	return header, events, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow large output payloads on a single event line.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}
