package enhance

import (
	"context"

	"github.com/aurislabs/auris-core/internal/dsp"
)

type mockEnhancer struct{}

// NewMockEnhancer returns an enhancer that blends the input with silence,
// so the blend weight is directly observable in the output amplitude.
func NewMockEnhancer() Enhancer {
	return mockEnhancer{}
}

func (mockEnhancer) Enhance(ctx context.Context, buf dsp.Buffer, blendWeight float64) (dsp.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return dsp.Buffer{}, err
	}
	out := buf.Clone()
	for i, s := range out.Samples {
		out.Samples[i] = s * (1 - blendWeight)
	}
	return out, nil
}
