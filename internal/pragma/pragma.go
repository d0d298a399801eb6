// Package pragma implements the whole-line directives that may be embedded
// in a trace to control visibility and pacing of the generated recording.
//
// Exactly five forms are recognized, each occupying an entire trimmed input
// line by itself:
//
//	off                 suppress event emission (time still advances)
//	on                  resume event emission
//	think-time=F        absolute read pause before the next interaction, one-shot
//	speed=F             persistent multiplier on all delays
//	keypress-speed=F    persistent multiplier on keystroke delays only
//
// Anything else, however similar, is ordinary interaction content and is
// typed out character by character.
package pragma

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies a directive form.
type Kind int

const (
	KindNone Kind = iota
	KindOff
	KindOn
	KindThinkTime
	KindSpeed
	KindKeypressSpeed
)

// Directive is a parsed pragma. Value is meaningful for the parameterized
// kinds only.
type Directive struct {
	Kind  Kind
	Value float64
}

// ConfigError reports a directive with a malformed or out-of-range argument.
type ConfigError struct {
	Line   int    // source line, when known
	Text   string // raw input line
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid directive %q: %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("invalid directive %q: %s", e.Text, e.Reason)
}

// Parse examines one input line. It returns the directive and true when the
// trimmed line is an exact, whole-line match for one of the five recognized
// forms. A recognized parameterized form with a non-numeric or negative
// argument yields a ConfigError; every other line is reported as ordinary
// content.
func Parse(line string, sourceLine int) (Directive, bool, error) {
	trimmed := strings.TrimSpace(line)

	switch trimmed {
	case "off":
		return Directive{Kind: KindOff}, true, nil
	case "on":
		return Directive{Kind: KindOn}, true, nil
	}

	key, rest, found := strings.Cut(trimmed, "=")
	if !found {
		return Directive{}, false, nil
	}

	var kind Kind
	switch key {
	case "think-time":
		kind = KindThinkTime
	case "speed":
		kind = KindSpeed
	case "keypress-speed":
		kind = KindKeypressSpeed
	default:
		return Directive{}, false, nil
	}

	value, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return Directive{}, true, &ConfigError{Line: sourceLine, Text: line, Reason: "value is not a number"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Directive{}, true, &ConfigError{Line: sourceLine, Text: line, Reason: "value is not finite"}
	}
	if value < 0 {
		return Directive{}, true, &ConfigError{Line: sourceLine, Text: line, Reason: "value is negative"}
	}

	return Directive{Kind: kind, Value: value}, true, nil
}

// State is the pacing state threaded through one animation pass. It is
// owned by a single pass: created at pass start, mutated only through Apply
// and TakeThinkTime, and discarded at pass end.
type State struct {
	// Rendering gates event emission. Time advances regardless.
	Rendering bool
	// Speed scales every delay. Persists until changed.
	Speed float64
	// KeypressSpeed additionally scales keystroke delays. Persists until
	// changed and composes multiplicatively with Speed.
	KeypressSpeed float64

	thinkTime    float64
	hasThinkTime bool
}

// NewState returns the default pacing state: rendering enabled, both
// multipliers 1.0, no pending think time.
func NewState() State {
	return State{Rendering: true, Speed: 1, KeypressSpeed: 1}
}

// Apply mutates the state according to d. Directives of KindNone are
// ignored.
func (s *State) Apply(d Directive) {
	switch d.Kind {
	case KindOff:
		s.Rendering = false
	case KindOn:
		s.Rendering = true
	case KindThinkTime:
		s.thinkTime = d.Value
		s.hasThinkTime = true
	case KindSpeed:
		s.Speed = d.Value
	case KindKeypressSpeed:
		s.KeypressSpeed = d.Value
	}
}

// TakeThinkTime consumes the pending one-shot think time, if any. After a
// successful take the pending value is cleared.
func (s *State) TakeThinkTime() (float64, bool) {
	if !s.hasThinkTime {
		return 0, false
	}
	s.hasThinkTime = false
	return s.thinkTime, true
}
