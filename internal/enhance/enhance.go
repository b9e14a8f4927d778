// Package enhance blends synthesized audio with an externally enhanced
// version of itself. The external model is a collaborator; this package owns
// only the blend contract and the two fixed intent presets.
package enhance

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurislabs/auris-core/internal/dsp"
)

// ErrEnhancement indicates a failure of the external enhancement call.
var ErrEnhancement = errors.New("enhancement failed")

// Blend weights for the two supported intents. These are fixed presets:
// denoising keeps 90% of the enhanced signal, enhance-only keeps 10%.
const (
	DenoiseWeight = 0.9
	EnhanceWeight = 0.1
)

// Config controls the optional enhancement stage.
type Config struct {
	Enabled     bool
	BlendWeight float64
}

// ConfigFor maps the caller's intent flags onto a config. Denoise wins over
// enhance-only; with neither flag the stage is disabled and must not be
// invoked at all, not even with weight zero.
func ConfigFor(denoise, enhance bool) Config {
	cfg := Config{Enabled: denoise || enhance}
	if denoise {
		cfg.BlendWeight = DenoiseWeight
	} else {
		cfg.BlendWeight = EnhanceWeight
	}
	return cfg
}

// Enhancer is the contract for the external enhancement capability.
type Enhancer interface {
	Enhance(ctx context.Context, buf dsp.Buffer, blendWeight float64) (dsp.Buffer, error)
}

// Apply runs the enhancement stage when enabled. A disabled config returns
// the buffer untouched without calling the enhancer.
func Apply(ctx context.Context, enhancer Enhancer, buf dsp.Buffer, cfg Config) (dsp.Buffer, error) {
	if !cfg.Enabled {
		return buf, nil
	}
	out, err := enhancer.Enhance(ctx, buf, cfg.BlendWeight)
	if err != nil {
		return dsp.Buffer{}, fmt.Errorf("%w: %v", ErrEnhancement, err)
	}
	return out, nil
}
