// Package trace defines the interaction records consumed by the animation
// engine. Records are produced by a script-execution collaborator (see the
// repl package) and are immutable once assembled.
package trace

import "fmt"

// Record is one captured prompt/input/output unit from a scripted
// interactive session.
type Record struct {
	// Prompt is the prompt text shown before the input was typed, e.g.
	// a primary or continuation prompt.
	Prompt string
	// Input is the line as typed, without a trailing newline.
	Input string
	// Output is the interpreter's response, possibly empty. The animation
	// engine treats it as an opaque string.
	Output string
	// Line is the 1-based source line the record originates from, used for
	// diagnostics. Synthetic records may carry 0.
	Line int
}

// Error reports a record that violates the trace contract. The whole pass
// aborts at the offending record; there is no partial output.
type Error struct {
	Index  int // position in the trace, 0-based
	Line   int // source line, when known
	Reason string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("trace record %d (line %d): %s", e.Index, e.Line, e.Reason)
	}
	return fmt.Sprintf("trace record %d: %s", e.Index, e.Reason)
}

// Validate checks the trace contract: inputs are single lines and source
// line numbers are not negative.
func Validate(records []Record) error {
	for i, rec := range records {
		if rec.Line < 0 {
			return &Error{Index: i, Reason: fmt.Sprintf("negative source line %d", rec.Line)}
		}
		for _, ch := range rec.Input {
			if ch == '\n' || ch == '\r' {
				return &Error{Index: i, Line: rec.Line, Reason: "input contains a line break"}
			}
		}
	}
	return nil
}
