package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aurislabs/auris-core/internal/dsp"
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 4

// Orchestrator fans text items out to the synthesis capability in bounded
// batches and reassembles one buffer in submission order.
type Orchestrator struct {
	synth Synthesizer
	log   *slog.Logger

	// FallbackSampleRate shapes break-only requests, where no synthesis
	// call establishes a rate.
	FallbackSampleRate int
}

// NewOrchestrator wires an orchestrator to a synthesis capability.
func NewOrchestrator(synth Synthesizer, fallbackRate int, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		synth:              synth,
		log:                log.With(slog.String("component", "orchestrator")),
		FallbackSampleRate: fallbackRate,
	}
}

// Render synthesizes every text item and splices pauses in between. Up to
// BatchSize calls run concurrently, but reassembly is keyed by submission
// index: the output order never depends on completion order. All segments
// must come back at one sample rate or the whole request fails. On error or
// cancellation no partial audio is returned.
func (o *Orchestrator) Render(ctx context.Context, items []Item, infer InferConfig) (dsp.Buffer, error) {
	batchSize := infer.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	textIndexes := make([]int, 0, len(items))
	for i, item := range items {
		if !item.IsBreak() {
			textIndexes = append(textIndexes, i)
		}
	}

	// Result slots are pre-assigned by submission index.
	results := make([]Result, len(textIndexes))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(batchSize)
	for submission, itemIndex := range textIndexes {
		group.Go(func() error {
			item := items[itemIndex]
			res, err := o.synth.Synthesize(groupCtx, Request{
				Text:    item.Text,
				Speaker: item.Speaker,
				Params:  item.Params,
				Infer:   infer,
			})
			if err != nil {
				return fmt.Errorf("%w: segment %d: %v", ErrSynthesis, submission, err)
			}
			results[submission] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return dsp.Buffer{}, err
	}

	sampleRate := o.FallbackSampleRate
	for i, res := range results {
		if i == 0 {
			sampleRate = res.SampleRate
			continue
		}
		if res.SampleRate != sampleRate {
			return dsp.Buffer{}, fmt.Errorf("%w: segment %d reports %d, expected %d",
				ErrSampleRateMismatch, i, res.SampleRate, sampleRate)
		}
	}

	buffers := make([]dsp.Buffer, 0, len(items))
	next := 0
	for _, item := range items {
		if item.IsBreak() {
			buffers = append(buffers, dsp.Silence(sampleRate, item.Pause))
			continue
		}
		segment := dsp.Buffer{SampleRate: sampleRate, Samples: results[next].Samples}
		buffers = append(buffers, dsp.Adjust(segment, item.Adjust))
		next++
	}

	o.log.Debug("request rendered",
		slog.Int("segments", len(items)),
		slog.Int("synthesized", len(textIndexes)),
		slog.Int("sample_rate", sampleRate))

	return dsp.Concat(buffers), nil
}
