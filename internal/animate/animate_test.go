package animate

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"replcast/internal/cast"
	"replcast/internal/pragma"
	"replcast/internal/trace"
)

func render(t *testing.T, opts Options, records []trace.Record) []cast.Event {
	t.Helper()

	builder, err := NewBuilder(opts)
	if err != nil {
		t.Fatalf("NewBuilder returned error: %v", err)
	}
	var events []cast.Event
	if err := builder.Render(records, func(e cast.Event) error {
		events = append(events, e)
		return nil
	}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	return events
}

func sampleTrace() []trace.Record {
	return []trace.Record{
		{Prompt: "> ", Input: "print('a')", Output: "\na\n> ", Line: 1},
		{Prompt: "> ", Input: "1+1", Output: "\n2\n> ", Line: 2},
		{Prompt: "> ", Input: "os.exit()", Line: 3},
	}
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	events := render(t, Options{Seed: 7, Speed: 1, KeypressSpeed: 1}, sampleTrace())
	if len(events) == 0 {
		t.Fatal("no events generated")
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time <= events[i-1].Time {
			t.Fatalf("event %d time %.9f does not exceed %.9f", i, events[i].Time, events[i-1].Time)
		}
	}
}

func TestVisibilityDoesNotAlterTiming(t *testing.T) {
	full := sampleTrace()
	bracketed := []trace.Record{
		full[0],
		{Input: "off", Line: 10},
		full[1],
		{Input: "on", Line: 11},
		full[2],
	}

	plain := render(t, Options{Seed: 7, Speed: 1, KeypressSpeed: 1}, full)
	hidden := render(t, Options{Seed: 7, Speed: 1, KeypressSpeed: 1}, bracketed)

	// Record 2's keystrokes and output (3+1 events for "1+1") are absent.
	if want := len(plain) - 4; len(hidden) != want {
		t.Fatalf("hidden run has %d events, want %d", len(hidden), want)
	}

	// Record 1 events identical.
	firstLen := len("print('a')") + 1
	for i := 0; i < firstLen; i++ {
		if plain[i] != hidden[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, plain[i], hidden[i])
		}
	}
	// Record 3 events identical in time and payload despite the hidden
	// stretch in between: the clock always advances.
	for i := 0; i < len("os.exit()"); i++ {
		p := plain[firstLen+4+i]
		h := hidden[firstLen+i]
		if p != h {
			t.Fatalf("trailing event %d differs: %+v vs %+v", i, p, h)
		}
	}
}

func TestDeterministicSerialization(t *testing.T) {
	serialize := func() string {
		var buf bytes.Buffer
		w := cast.NewWriter(&buf)
		if err := w.WriteHeader(cast.Header{Version: 2, Width: 80, Height: 35}); err != nil {
			t.Fatalf("WriteHeader returned error: %v", err)
		}
		builder, err := NewBuilder(Options{Seed: 1234, Speed: 1, KeypressSpeed: 1, EndHold: 1})
		if err != nil {
			t.Fatalf("NewBuilder returned error: %v", err)
		}
		if err := builder.Render(sampleTrace(), w.WriteEvent); err != nil {
			t.Fatalf("Render returned error: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush returned error: %v", err)
		}
		return buf.String()
	}

	if serialize() != serialize() {
		t.Fatal("identical trace and seed produced different bytes")
	}
}

func TestKeypressSpeedZeroCollapsesTyping(t *testing.T) {
	records := []trace.Record{
		{Input: "keypress-speed=0", Line: 1},
		{Prompt: "> ", Input: "abc", Output: "\nok\n> ", Line: 2},
		{Prompt: "> ", Input: "x", Output: "\ndone\n> ", Line: 3},
	}
	events := render(t, Options{Seed: 5, Speed: 1, KeypressSpeed: 1}, records)

	// 3 keystrokes + output, then 1 keystroke + output.
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}

	// Keystroke spacing within a record collapses to the minimal bump.
	for i := 1; i < 3; i++ {
		delta := events[i].Time - events[i-1].Time
		if math.Abs(delta-Epsilon) > 1e-12 {
			t.Fatalf("keystroke delta %d = %.9f, want epsilon", i, delta)
		}
	}
	// The output event still appears, bumped past the last keystroke.
	if events[3].Kind != cast.Output || events[3].Data != "\nok\n> " {
		t.Fatalf("unexpected output event: %+v", events[3])
	}
	// The read pause before the next record is unaffected by the
	// keypress multiplier.
	if gap := events[4].Time - events[3].Time; gap < 0.01 {
		t.Fatalf("read pause collapsed to %.9f", gap)
	}
}

func TestSpeedZeroJumpPlayback(t *testing.T) {
	records := []trace.Record{
		{Input: "speed=0", Line: 1},
		{Prompt: "> ", Input: "abc", Output: "\nok\n> ", Line: 2},
		{Prompt: "> ", Input: "de", Output: "\ndone\n> ", Line: 3},
	}
	events := render(t, Options{Seed: 5, Speed: 1, KeypressSpeed: 1}, records)

	last := events[len(events)-1]
	if last.Time > 0.001 {
		t.Fatalf("zero speed should collapse the whole recording, last event at %.6f", last.Time)
	}
}

func TestThinkTimeAppliesToExactlyOnePause(t *testing.T) {
	records := []trace.Record{
		{Prompt: "> ", Input: "x", Output: "\ny\n> ", Line: 1},
		{Input: "think-time=2.5", Line: 2},
		{Prompt: "> ", Input: "z", Output: "\nw\n> ", Line: 3},
		{Prompt: "> ", Input: "v", Output: "\nu\n> ", Line: 4},
	}
	// Zero keypress speed isolates the pauses from keystroke sampling.
	events := render(t, Options{Seed: 11, Speed: 1, KeypressSpeed: 0}, records)

	// Events: key x, out y, key z, out w, key v, out u.
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}

	pauseAB := events[2].Time - events[1].Time
	if math.Abs(pauseAB-2.5) > 1e-5 {
		t.Fatalf("think-time pause = %.9f, want 2.5", pauseAB)
	}

	// The next pause reverts to the sampled model.
	pauseBC := events[4].Time - events[3].Time
	if math.Abs(pauseBC-2.5) < 1e-6 {
		t.Fatalf("think time applied twice: pause = %.9f", pauseBC)
	}
	if pauseBC <= 0 {
		t.Fatalf("sampled pause not positive: %.9f", pauseBC)
	}
}

func TestDirectiveExactness(t *testing.T) {
	records := []trace.Record{
		{Prompt: "> ", Input: "  off  ", Line: 1},
		{Prompt: "> ", Input: "print('off')", Output: "\noff\n> ", Line: 2},
	}
	events := render(t, Options{Seed: 2, Speed: 1, KeypressSpeed: 1}, records)

	// The whole-line directive suppressed everything after it.
	if len(events) != 0 {
		t.Fatalf("expected no events after off directive, got %d", len(events))
	}

	// The same text inside ordinary content is typed out.
	records = []trace.Record{
		{Prompt: "> ", Input: "print('off')", Output: "\noff\n> ", Line: 1},
	}
	events = render(t, Options{Seed: 2, Speed: 1, KeypressSpeed: 1}, records)
	if want := len("print('off')") + 1; len(events) != want {
		t.Fatalf("expected %d events, got %d", want, len(events))
	}
	for i, ch := range "print('off')" {
		if events[i].Kind != cast.Keystroke || events[i].Data != string(ch) {
			t.Fatalf("event %d = %+v, want keystroke %q", i, events[i], string(ch))
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	records := []trace.Record{
		{Prompt: ">>> ", Input: "1+1", Output: "2", Line: 1},
		{Input: "think-time=0.0", Line: 2},
		{Prompt: ">>> ", Input: "quit()", Output: "", Line: 3},
	}
	events := render(t, Options{Seed: 42, Speed: 1, KeypressSpeed: 1}, records)

	want := []struct {
		kind cast.EventKind
		data string
	}{
		{cast.Keystroke, "1"},
		{cast.Keystroke, "+"},
		{cast.Keystroke, "1"},
		{cast.Output, "2"},
		{cast.Keystroke, "q"},
		{cast.Keystroke, "u"},
		{cast.Keystroke, "i"},
		{cast.Keystroke, "t"},
		{cast.Keystroke, "("},
		{cast.Keystroke, ")"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Data != w.data {
			t.Fatalf("event %d = %+v, want %v %q", i, events[i], w.kind, w.data)
		}
		if i > 0 && events[i].Time <= events[i-1].Time {
			t.Fatalf("event %d time not increasing", i)
		}
	}

	// Zero think time: the q keystroke follows the output almost
	// immediately, separated by a single keystroke delay.
	if gap := events[4].Time - events[3].Time; gap > 1.0 {
		t.Fatalf("zero think-time pause too large: %.6f", gap)
	}
}

func TestEndHoldEmitsFinalFrame(t *testing.T) {
	records := sampleTrace()
	plain := render(t, Options{Seed: 3, Speed: 1, KeypressSpeed: 1}, records)
	held := render(t, Options{Seed: 3, Speed: 1, KeypressSpeed: 1, EndHold: 5}, records)

	if len(held) != len(plain)+1 {
		t.Fatalf("expected one extra event, got %d vs %d", len(held), len(plain))
	}
	final := held[len(held)-1]
	if final.Kind != cast.Output || final.Data != "" {
		t.Fatalf("unexpected final event: %+v", final)
	}
	if gap := final.Time - held[len(held)-2].Time; math.Abs(gap-5) > 0.001 {
		t.Fatalf("end hold gap = %.6f, want 5", gap)
	}
}

func TestConfigErrorCarriesSourceLine(t *testing.T) {
	builder, err := NewBuilder(Options{Seed: 1, Speed: 1, KeypressSpeed: 1})
	if err != nil {
		t.Fatalf("NewBuilder returned error: %v", err)
	}
	records := []trace.Record{
		{Prompt: "> ", Input: "speed=-2", Line: 7},
	}
	renderErr := builder.Render(records, func(cast.Event) error { return nil })

	var cfgErr *pragma.ConfigError
	if !errors.As(renderErr, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", renderErr)
	}
	if cfgErr.Line != 7 {
		t.Fatalf("error line = %d, want 7", cfgErr.Line)
	}
}

func TestTraceErrorAbortsBeforeEmission(t *testing.T) {
	builder, err := NewBuilder(Options{Seed: 1, Speed: 1, KeypressSpeed: 1})
	if err != nil {
		t.Fatalf("NewBuilder returned error: %v", err)
	}
	records := []trace.Record{
		{Prompt: "> ", Input: "ok", Output: "fine", Line: 1},
		{Prompt: "> ", Input: "bad\ninput", Line: 2},
	}

	emitted := 0
	renderErr := builder.Render(records, func(cast.Event) error {
		emitted++
		return nil
	})

	var traceErr *trace.Error
	if !errors.As(renderErr, &traceErr) {
		t.Fatalf("expected trace.Error, got %v", renderErr)
	}
	if emitted != 0 {
		t.Fatalf("events emitted before validation failure: %d", emitted)
	}
}

func TestNewBuilderRejectsNegativeMultipliers(t *testing.T) {
	if _, err := NewBuilder(Options{Speed: -1}); err == nil {
		t.Fatal("expected error for negative speed")
	}
	if _, err := NewBuilder(Options{KeypressSpeed: -0.5}); err == nil {
		t.Fatal("expected error for negative keypress speed")
	}
}
