// Package repl runs a scripted interpreter session and captures the
// prompt/input/output trace the animation engine consumes. The engine never
// executes code itself; this package is the upstream collaborator that
// does.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"replcast/internal/pragma"
	"replcast/internal/trace"
)

// Repl simulates an interactive interpreter fed from a script.
type Repl interface {
	// Prompt returns the prompt the interpreter would show for the next
	// line, reflecting continuation state.
	Prompt() string
	// WillTerminate reports whether line ends the session. A terminating
	// line is typed out but never evaluated.
	WillTerminate(line string) bool
	// Eval runs one script line and returns everything the interpreter
	// printed, including its own error messages. A non-nil error means the
	// interpreter session itself broke, not that the line misbehaved.
	Eval(line string) (string, error)
}

// Run feeds script to r line by line and assembles the ordered trace.
//
// Prompt text is folded into the output stream: the first prompt becomes a
// leading output-only record, and each evaluated line's record carries the
// echoed newline, the captured output, and the next prompt. The engine can
// then treat prompts as ordinary interpreter output and never needs a
// prompt event of its own.
//
// Directive lines (see the pragma package) bypass the interpreter entirely
// and are passed through verbatim for the engine to act on.
func Run(r Repl, script io.Reader) ([]trace.Record, error) {
	scanner := bufio.NewScanner(script)

	records := []trace.Record{{Output: r.Prompt()}}

	line := 0
	for scanner.Scan() {
		line++
		input := scanner.Text()

		if _, ok, err := pragma.Parse(input, line); ok || err != nil {
			// Malformed directive values are passed through too; the
			// engine reports them with full source context.
			records = append(records, trace.Record{
				Prompt: r.Prompt(),
				Input:  input,
				Line:   line,
			})
			continue
		}

		if r.WillTerminate(input) {
			records = append(records, trace.Record{
				Prompt: r.Prompt(),
				Input:  input,
				Line:   line,
			})
			return records, nil
		}

		prompt := r.Prompt()
		output, err := r.Eval(input)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, trace.Record{
			Prompt: prompt,
			Input:  input,
			Output: "\n" + output + r.Prompt(),
			Line:   line,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return records, nil
}
