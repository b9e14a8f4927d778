package synth

import (
	"context"
	"math"
	"time"
	"unicode/utf8"
)

type mockSynth struct {
	sampleRate int
	delay      time.Duration
}

// NewMockSynth returns a synthesizer that generates a short tone per
// request, sized by the text length. Deterministic and model-free, for
// tests and dry runs.
func NewMockSynth(sampleRate int, delay time.Duration) Synthesizer {
	return &mockSynth{sampleRate: sampleRate, delay: delay}
}

func (m *mockSynth) Synthesize(ctx context.Context, req Request) (Result, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(m.delay):
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// 50ms of tone per rune, pitched by the seed so distinct parameters
	// are audible.
	n := utf8.RuneCountInString(req.Text) * m.sampleRate / 20
	freq := 220.0 + float64(req.Params.Seed%8)*55
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(m.sampleRate))
	}
	return Result{SampleRate: m.sampleRate, Samples: samples}, nil
}
