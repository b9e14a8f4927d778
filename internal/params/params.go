// Package params resolves speaker references and style presets into the
// effective synthesis parameters, and assembles the per-request config
// records the pipeline stages consume.
package params

import (
	"fmt"
	"strings"

	"github.com/aurislabs/auris-core/internal/speaker"
	"github.com/aurislabs/auris-core/internal/synth"
)

const (
	// maxSeed bounds the seed range accepted by the synthesis capability.
	maxSeed = 1<<32 - 1

	// defaultTemperature applies when neither the caller nor the style
	// sets one.
	defaultTemperature = 0.3

	// degenerateTemperature replaces a requested temperature of exactly
	// 0.1, which makes the sampler collapse; near-zero keeps it greedy
	// without tripping that failure mode.
	degenerateTemperature = 1e-9
)

// Overrides carries the caller's explicit request parameters. Numeric
// directive fields use -1 for "omitted"; zero and empty values are treated
// as unset during coalescing, so a style preset can still supply them.
type Overrides struct {
	Style string

	Temperature float64
	TopP        float64
	TopK        int
	Seed        int64
	Prompt      string
	Prompt1     string
	Prompt2     string
	Prefix      string

	Oral        int
	SpeechSpeed int
	BreakLevel  int
	Laugh       int

	BatchSize      int
	SplitThreshold int
	EOS            string
	Sync           bool

	Pitch        float64
	SpeedRate    float64
	VolumeGainDB float64
	Normalize    bool
	HeadroomDB   float64

	Denoise bool
	Enhance bool

	Format  string
	Codec   string
	Bitrate string
}

// NewOverrides returns overrides with every directive sentinel in place.
func NewOverrides() Overrides {
	return Overrides{
		Seed:        -1,
		Oral:        -1,
		SpeechSpeed: -1,
		BreakLevel:  -1,
		Laugh:       -1,
	}
}

// Effective is the fully resolved parameter set for one request.
type Effective struct {
	TTS synth.TTSParams

	Oral        int
	SpeechSpeed int
	BreakLevel  int
	Laugh       int
}

// An explicit value beats the preset only when it is set: non-zero,
// non-empty, and not the -1 sentinel. A deliberate zero therefore cannot
// override a style default.
func coalesceString(explicit, preset string) string {
	if explicit != "" {
		return explicit
	}
	return preset
}

func coalesceFloat(explicit, preset float64) float64 {
	if explicit != 0 && explicit != -1 {
		return explicit
	}
	return preset
}

func coalesceInt(explicit, preset int) int {
	if explicit != 0 && explicit != -1 {
		return explicit
	}
	return preset
}

func coalesceSeed(explicit, preset int64) int64 {
	if explicit != 0 && explicit != -1 {
		return explicit
	}
	return preset
}

// ClampSeed coerces any integer into the accepted seed range. -1 remains
// the "random seed" sentinel.
func ClampSeed(seed int64) int64 {
	if seed < -1 {
		return -1
	}
	if seed > maxSeed {
		return maxSeed
	}
	return seed
}

// NormalizeTemperature applies the degenerate-sampling workaround and the
// default for an unset temperature.
func NormalizeTemperature(t float64) float64 {
	if t == 0 {
		t = defaultTemperature
	}
	if t == 0.1 {
		return degenerateTemperature
	}
	return t
}

// RefinePrompt renders the directive fields as refinement control tokens.
// Omitted directives (-1) produce no token; all four omitted yields the
// empty prompt.
func RefinePrompt(oral, speechSpeed, breakLevel, laugh int) string {
	var b strings.Builder
	if oral >= 0 {
		fmt.Fprintf(&b, "[oral_%d]", oral)
	}
	if speechSpeed >= 0 {
		fmt.Fprintf(&b, "[speed_%d]", speechSpeed)
	}
	if breakLevel >= 0 {
		fmt.Fprintf(&b, "[break_%d]", breakLevel)
	}
	if laugh >= 0 {
		fmt.Fprintf(&b, "[laugh_%d]", laugh)
	}
	return b.String()
}

// Resolve produces the concrete speaker and the effective parameters for a
// request: the style preset fills every slot the caller left unset, and the
// seed falls back from explicit to style to the speaker's default.
func Resolve(ref speaker.Ref, styleName string, ov Overrides, speakers *speaker.Store, styles *speaker.StyleStore) (speaker.Speaker, Effective, error) {
	style := styles.Get(styleName)

	var spk speaker.Speaker
	if ref == nil && style.Speaker != "" {
		named, ok := speakers.Get(style.Speaker)
		if !ok {
			return speaker.Speaker{}, Effective{}, fmt.Errorf("%w: style speaker %q not found", speaker.ErrValidation, style.Speaker)
		}
		spk = named
	} else {
		resolved, err := speaker.Resolve(ref, speakers)
		if err != nil {
			return speaker.Speaker{}, Effective{}, err
		}
		spk = resolved
	}
	return spk, resolveParams(spk, style, ov), nil
}

// ResolveWith applies the coalescing rules against an already resolved
// speaker, for callers that carry their own speaker lookup.
func ResolveWith(spk speaker.Speaker, styleName string, ov Overrides, styles *speaker.StyleStore) Effective {
	return resolveParams(spk, styles.Get(styleName), ov)
}

func resolveParams(spk speaker.Speaker, style speaker.Style, ov Overrides) Effective {
	seed := coalesceSeed(ov.Seed, style.Seed)
	seed = coalesceSeed(seed, spk.DefaultSeed)

	eff := Effective{
		TTS: synth.TTSParams{
			Temperature: NormalizeTemperature(coalesceFloat(ov.Temperature, style.Temperature)),
			TopP:        ov.TopP,
			TopK:        ov.TopK,
			Prompt:      coalesceString(ov.Prompt, style.Prompt),
			Prompt1:     coalesceString(ov.Prompt1, style.Prompt1),
			Prompt2:     coalesceString(ov.Prompt2, style.Prompt2),
			Prefix:      coalesceString(ov.Prefix, style.Prefix),
			Seed:        ClampSeed(seed),
		},
		Oral:        coalesceDirective(ov.Oral, style.Oral),
		SpeechSpeed: coalesceDirective(ov.SpeechSpeed, style.SpeechSpeed),
		BreakLevel:  coalesceDirective(ov.BreakLevel, style.BreakLevel),
		Laugh:       coalesceDirective(ov.Laugh, style.Laugh),
	}
	return eff
}

// RefinePrompt renders the resolved directive tokens for this request.
func (e Effective) RefinePrompt() string {
	return RefinePrompt(e.Oral, e.SpeechSpeed, e.BreakLevel, e.Laugh)
}

// Directive fields keep -1 when neither side sets them, so the refine
// prompt can omit the token entirely.
func coalesceDirective(explicit, preset int) int {
	if explicit >= 0 {
		return explicit
	}
	return preset
}
