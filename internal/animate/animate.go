// Package animate turns an ordered interaction trace into a timed asciicast
// event stream that plays back as if a human had typed the session live.
//
// The builder walks the trace exactly once, consulting the pragma state and
// the timing model per record, and hands each event to a caller-supplied
// emit function as soon as it exists. Regenerating the stream means
// re-running the pass; there is no seeking into a paused one.
package animate

import (
	"fmt"

	"replcast/internal/cast"
	"replcast/internal/pragma"
	"replcast/internal/timing"
	"replcast/internal/trace"
)

// Epsilon is the minimal increment applied when a computed timestamp would
// not exceed the previously emitted one. It must survive the serializer's
// six fractional digits.
const Epsilon = 1e-6

// Options configures one animation pass.
type Options struct {
	// Seed for the timing model's random stream. The same trace, seed, and
	// directive sequence reproduces a byte-identical recording.
	Seed int64
	// Profile supplies the delay distributions. Nil means defaults.
	Profile *timing.Profile
	// Speed and KeypressSpeed set the initial multipliers, before any
	// speed= or keypress-speed= directive. Use 1 for the natural rate; a
	// zero multiplier collapses the affected delays for jump playback.
	Speed         float64
	KeypressSpeed float64
	// EndHold advances the clock after the last record and emits one final
	// empty output event, so players do not cut away instantly. Zero
	// disables the hold.
	EndHold float64
}

// Builder performs a single forward pass over a trace. Each Builder owns
// its own pacing state, clock, and random stream, and must not be shared
// across passes.
type Builder struct {
	state      pragma.State
	model      *timing.Model
	endHold    float64
	clock      float64
	last       float64
	emitted    bool
	prevOutput string
}

// NewBuilder validates opts and prepares a pass. Negative multipliers are
// rejected here, before any event is generated.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Speed < 0 {
		return nil, fmt.Errorf("speed multiplier must not be negative: %v", opts.Speed)
	}
	if opts.KeypressSpeed < 0 {
		return nil, fmt.Errorf("keypress speed multiplier must not be negative: %v", opts.KeypressSpeed)
	}
	if opts.EndHold < 0 {
		return nil, fmt.Errorf("end hold must not be negative: %v", opts.EndHold)
	}

	profile := timing.DefaultProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}

	state := pragma.NewState()
	state.Speed = opts.Speed
	state.KeypressSpeed = opts.KeypressSpeed

	return &Builder{
		state:   state,
		model:   timing.NewModel(profile, opts.Seed),
		endHold: opts.EndHold,
	}, nil
}

// Render walks records in order and emits timed events. Directive records
// mutate the pacing state and produce no events; every other record is
// typed out keystroke by keystroke, followed by its output. The clock
// advances for every record whether or not rendering is enabled;
// suppression only withholds emission.
//
// Render either completes the full sequence or aborts at the first error,
// before handing anything further to emit.
func (b *Builder) Render(records []trace.Record, emit func(cast.Event) error) error {
	if err := trace.Validate(records); err != nil {
		return err
	}

	for _, rec := range records {
		directive, ok, err := pragma.Parse(rec.Input, rec.Line)
		if err != nil {
			return err
		}
		if ok {
			// Directives are instantaneous: no clock advance, no event.
			b.state.Apply(directive)
			continue
		}

		// The pause for reading the previous interaction's output comes
		// before the first keystroke, so think-time directives between two
		// interactions affect the gap they sit in.
		b.clock += b.model.ReadPause(b.prevOutput, &b.state)

		prev := '\n'
		for _, ch := range rec.Input {
			b.clock += b.model.Keystroke(prev, ch, &b.state)
			if b.state.Rendering {
				if err := b.emit(cast.Keystroke, string(ch), emit); err != nil {
					return err
				}
			}
			prev = ch
		}

		// Output appears at the instant the prompt would return; it is not
		// itself delayed.
		if rec.Output != "" && b.state.Rendering {
			if err := b.emit(cast.Output, rec.Output, emit); err != nil {
				return err
			}
		}

		b.prevOutput = rec.Output
	}

	if b.endHold > 0 {
		b.clock += b.endHold
		if err := b.emit(cast.Output, "", emit); err != nil {
			return err
		}
	}

	return nil
}

// emit materializes an event at the current clock, bumping the timestamp by
// Epsilon when it would not strictly exceed the previously emitted one.
func (b *Builder) emit(kind cast.EventKind, data string, fn func(cast.Event) error) error {
	ts := b.clock
	if b.emitted && ts <= b.last {
		ts = b.last + Epsilon
	}
	b.last = ts
	b.emitted = true
	return fn(cast.Event{Time: ts, Kind: kind, Data: data})
}
