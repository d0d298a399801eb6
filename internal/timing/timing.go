// Package timing samples plausible human delays for the animation engine.
//
// Keystroke delays follow a log-normal distribution whose parameters are
// derived from a target mean and standard deviation. The (mean, stddev)
// pair for a keystroke is chosen per bigram: inter-key intervals differ
// between same-hand, alternating-hand, and repeated-letter bigrams, so the
// model assigns ASCII characters to hands using the layout of a contoured
// split keyboard and keeps separate statistics for each class.
//
// All sampling goes through a single seeded source, so an identical trace,
// seed, and directive sequence reproduces an identical delay stream.
package timing

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"replcast/internal/pragma"
)

// Params holds the target mean and standard deviation of one delay
// distribution, in seconds.
type Params struct {
	Mean   float64 `yaml:"mean"`
	Stddev float64 `yaml:"stddev"`
}

// Profile bundles every distribution the model samples from. Keystroke
// statistics are per bigram class; ReadPause governs the pause between an
// interaction's output and the next interaction's first keystroke.
type Profile struct {
	LeftHand  string `yaml:"left_hand"`
	RightHand string `yaml:"right_hand"`

	LeftHandKey   Params `yaml:"left_hand_key"`
	RightHandKey  Params `yaml:"right_hand_key"`
	AlternateKey  Params `yaml:"alternate_key"`
	SameLetterKey Params `yaml:"same_letter_key"`

	ReadPause Params `yaml:"read_pause"`
}

// Inter-key interval statistics in seconds, from published measurements of
// free-text typing, partitioned by hand assignment.
var defaultProfile = Profile{
	LeftHand: "=12345qwertasdfgzxcvb`§" +
		"+!@#$%QWERTASDFGZXCVB~±",
	RightHand: "67890-yuiop\\hjkl;'nm,./[]" +
		"^&*()_YUIOP|HJKL:\"NM<>?{} ",

	LeftHandKey:   Params{Mean: 0.12437, Stddev: 0.02590},
	RightHandKey:  Params{Mean: 0.11724, Stddev: 0.02503},
	AlternateKey:  Params{Mean: 0.10862, Stddev: 0.01757},
	SameLetterKey: Params{Mean: 0.14479, Stddev: 0.02746},

	ReadPause: Params{Mean: 1.0, Stddev: 0.3},
}

// DefaultProfile returns a copy of the built-in timing profile.
func DefaultProfile() Profile {
	return defaultProfile
}

// LoadProfile reads a YAML timing profile from path. Absent fields keep
// their defaults, so a profile file may override a single distribution.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := profile.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, nil
}

func (p Profile) validate() error {
	for _, entry := range []struct {
		name   string
		params Params
	}{
		{"left_hand_key", p.LeftHandKey},
		{"right_hand_key", p.RightHandKey},
		{"alternate_key", p.AlternateKey},
		{"same_letter_key", p.SameLetterKey},
		{"read_pause", p.ReadPause},
	} {
		if entry.params.Mean < 0 || entry.params.Stddev < 0 {
			return fmt.Errorf("%s: mean and stddev must not be negative", entry.name)
		}
	}
	return nil
}

// Model draws delays from the profile's distributions using a dedicated
// seeded random stream. A Model belongs to a single animation pass and is
// not safe for concurrent use.
type Model struct {
	profile Profile
	rng     *rand.Rand
}

// NewModel returns a model sampling from profile, seeded with seed.
func NewModel(profile Profile, seed int64) *Model {
	return &Model{profile: profile, rng: rand.New(rand.NewSource(seed))}
}

// Keystroke returns the delay before cur is typed, given the previously
// typed character. The raw log-normal draw is scaled by both the speed and
// keypress-speed multipliers from st.
func (m *Model) Keystroke(prev, cur rune, st *pragma.State) float64 {
	return m.sample(m.keyParams(prev, cur)) * st.Speed * st.KeypressSpeed
}

// ReadPause returns the pause after an interaction's output, before the
// next interaction's first keystroke. A pending think time replaces the
// sampled value outright and is not scaled; otherwise the sampled default
// is scaled by the speed multiplier only.
func (m *Model) ReadPause(prevOutput string, st *pragma.State) float64 {
	if think, ok := st.TakeThinkTime(); ok {
		return think
	}
	return m.sample(m.readParams(prevOutput)) * st.Speed
}

// keyParams picks the bigram class for the prev→cur transition.
func (m *Model) keyParams(prev, cur rune) Params {
	switch {
	case prev == cur:
		return m.profile.SameLetterKey
	case m.onLeftHand(prev) && m.onLeftHand(cur):
		return m.profile.LeftHandKey
	case m.onRightHand(prev) && m.onRightHand(cur):
		return m.profile.RightHandKey
	default:
		return m.profile.AlternateKey
	}
}

// readParams derives the pause distribution from the previous output. A
// longer output takes longer to read, but the reader skims more of a long
// output, so the mean grows with the logarithm of the line count. With no
// previous output there is nothing to read and the pause collapses to a
// keystroke-sized gap.
func (m *Model) readParams(prevOutput string) Params {
	if strings.TrimSpace(prevOutput) == "" {
		return m.profile.AlternateKey
	}
	params := m.profile.ReadPause
	if lines := strings.Count(prevOutput, "\n"); lines > 1 {
		params.Mean += math.Log(float64(lines))
	}
	return params
}

func (m *Model) onLeftHand(ch rune) bool {
	return strings.ContainsRune(m.profile.LeftHand, ch)
}

func (m *Model) onRightHand(ch rune) bool {
	return strings.ContainsRune(m.profile.RightHand, ch)
}

// sample draws from the log-normal distribution with target mean and
// stddev. The underlying normal parameters are
//
//	sigma² = ln(1 + (stddev/mean)²)
//	mu     = ln(mean) − sigma²/2
//
// so the draw's expected value matches params.Mean.
func (m *Model) sample(params Params) float64 {
	if params.Mean <= 0 {
		return 0
	}
	ratio := params.Stddev / params.Mean
	sigma2 := math.Log(1 + ratio*ratio)
	mu := math.Log(params.Mean) - sigma2/2
	return math.Exp(mu + math.Sqrt(sigma2)*m.rng.NormFloat64())
}
