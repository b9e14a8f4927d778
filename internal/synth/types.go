// Package synth dispatches batched synthesis requests to the external
// synthesis capability and reassembles the results in submission order.
package synth

import (
	"context"
	"errors"
	"time"

	"github.com/aurislabs/auris-core/internal/dsp"
	"github.com/aurislabs/auris-core/internal/speaker"
)

var (
	// ErrSynthesis indicates a failure of the external synthesis call.
	ErrSynthesis = errors.New("synthesis failed")
	// ErrSampleRateMismatch is returned when segments of one request come
	// back at different sample rates.
	ErrSampleRateMismatch = errors.New("sample rate mismatch across segments")
)

// TTSParams conditions a single synthesis call.
type TTSParams struct {
	Temperature float64
	TopP        float64
	TopK        int
	Prompt      string
	Prompt1     string
	Prompt2     string
	Prefix      string
	Seed        int64
}

// InferConfig controls batch dispatch for one request.
type InferConfig struct {
	BatchSize      int
	SplitThreshold int
	EOS            string
	Seed           int64
	Sync           bool
}

// Request is one synthesis call to the external capability.
type Request struct {
	Text    string
	Speaker speaker.Speaker
	Params  TTSParams
	Infer   InferConfig
}

// Result carries the waveform for one request.
type Result struct {
	SampleRate int
	Samples    []float64
}

// Synthesizer is the contract for the external synthesis capability.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

// Item is one unit of an orchestrated request: spoken text, or a pause when
// Break is set. Pauses never reach the synthesizer, even at zero duration.
type Item struct {
	Text    string
	Speaker speaker.Speaker
	Params  TTSParams
	Break   bool
	Pause   time.Duration

	// Adjust applies segment-local prosody after synthesis, before the
	// segment joins the output stream. The zero value is the identity.
	Adjust dsp.AdjustConfig
}

// IsBreak reports whether the item is a pause.
func (i Item) IsBreak() bool {
	return i.Break
}
