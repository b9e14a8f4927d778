package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/aurislabs/auris-core/internal/dsp"
	"github.com/aurislabs/auris-core/internal/enhance"
	"github.com/aurislabs/auris-core/internal/params"
	"github.com/aurislabs/auris-core/internal/speaker"
	"github.com/aurislabs/auris-core/internal/synth"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type countingSynth struct {
	calls atomic.Int64
	inner synth.Synthesizer
}

func (c *countingSynth) Synthesize(ctx context.Context, req synth.Request) (synth.Result, error) {
	c.calls.Add(1)
	return c.inner.Synthesize(ctx, req)
}

type countingEnhancer struct {
	calls atomic.Int64
}

func (c *countingEnhancer) Enhance(_ context.Context, buf dsp.Buffer, _ float64) (dsp.Buffer, error) {
	c.calls.Add(1)
	return buf, nil
}

func newPipeline(t *testing.T, s synth.Synthesizer, e enhance.Enhancer, opts Options) *Pipeline {
	t.Helper()
	log := newLogger()
	store, err := speaker.NewStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("speaker store: %v", err)
	}
	if s == nil {
		s = synth.NewMockSynth(8000, 0)
	}
	if e == nil {
		e = enhance.NewMockEnhancer()
	}
	return New(store, speaker.NewStyleStore(), s, 8000, e, opts, log)
}

func TestSynthesizeFromTextProducesWAV(t *testing.T) {
	p := newPipeline(t, nil, nil, Options{})

	audio, err := p.SynthesizeFromText(context.Background(), "Hello there. How are you?", speaker.BySeed{Seed: 5}, params.NewOverrides())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if audio.SampleRate != 8000 {
		t.Fatalf("expected sample rate 8000, got %d", audio.SampleRate)
	}
	if !bytes.HasPrefix(audio.Data, []byte("RIFF")) {
		t.Fatal("default format must be a RIFF/WAVE container")
	}
}

func TestSynthesizeFromSSML(t *testing.T) {
	p := newPipeline(t, nil, nil, Options{})

	markup := `<speak version="0.1"><voice spk="5">Hello.</voice><break time="300"/><voice spk="7">Bye.</voice></speak>`
	audio, err := p.SynthesizeFromSSML(context.Background(), markup, params.NewOverrides())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(audio.Data) == 0 {
		t.Fatal("expected encoded audio")
	}
}

func TestZeroDurationBreakNeverReachesSynthesizer(t *testing.T) {
	counting := &countingSynth{inner: synth.NewMockSynth(8000, 0)}
	p := newPipeline(t, counting, nil, Options{})

	markup := `<speak version="0.1"><voice spk="1">Hi.</voice><break time="0"/></speak>`
	if _, err := p.SynthesizeFromSSML(context.Background(), markup, params.NewOverrides()); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if counting.calls.Load() != 1 {
		t.Fatalf("expected 1 synthesis call for the text segment, got %d", counting.calls.Load())
	}
}

func TestSynthesizeFromTextEmptyInput(t *testing.T) {
	p := newPipeline(t, nil, nil, Options{})
	if _, err := p.SynthesizeFromText(context.Background(), "   \n ", nil, params.NewOverrides()); !errors.Is(err, ErrEmptySegments) {
		t.Fatalf("expected ErrEmptySegments, got %v", err)
	}
}

func TestSynthesizeFromSSMLMalformed(t *testing.T) {
	p := newPipeline(t, nil, nil, Options{})
	if _, err := p.SynthesizeFromSSML(context.Background(), "<speak><oops>", params.NewOverrides()); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestUnknownSpeakerFailsBeforeSynthesis(t *testing.T) {
	counting := &countingSynth{inner: synth.NewMockSynth(8000, 0)}
	p := newPipeline(t, counting, nil, Options{})

	markup := `<speak version="0.1"><voice spk="nobody">Hello.</voice></speak>`
	if _, err := p.SynthesizeFromSSML(context.Background(), markup, params.NewOverrides()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if counting.calls.Load() != 0 {
		t.Fatalf("validation must fail before any synthesis call, got %d calls", counting.calls.Load())
	}
}

func TestEnhancerSkippedWithoutIntent(t *testing.T) {
	enh := &countingEnhancer{}
	p := newPipeline(t, nil, enh, Options{})

	if _, err := p.SynthesizeFromText(context.Background(), "Hello.", speaker.BySeed{Seed: 1}, params.NewOverrides()); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if enh.calls.Load() != 0 {
		t.Fatalf("enhancer must not run without intent, got %d calls", enh.calls.Load())
	}

	ov := params.NewOverrides()
	ov.Denoise = true
	if _, err := p.SynthesizeFromText(context.Background(), "Hello.", speaker.BySeed{Seed: 1}, ov); err != nil {
		t.Fatalf("synthesize with denoise: %v", err)
	}
	if enh.calls.Load() != 1 {
		t.Fatalf("denoise intent must invoke the enhancer once, got %d calls", enh.calls.Load())
	}
}

func TestLengthBudgetExhausted(t *testing.T) {
	p := newPipeline(t, nil, nil, Options{MaxTotalChars: 3})

	markup := `<speak version="0.1"><voice spk="1">this segment is far too long</voice></speak>`
	if _, err := p.SynthesizeFromSSML(context.Background(), markup, params.NewOverrides()); !errors.Is(err, ErrEmptySegments) {
		t.Fatalf("expected ErrEmptySegments when the budget drops everything, got %v", err)
	}
}

func TestSynthesisFailureReturnsNoPartialAudio(t *testing.T) {
	p := newPipeline(t, failingSynth{}, nil, Options{})
	audio, err := p.SynthesizeFromText(context.Background(), "Hello.", speaker.BySeed{Seed: 1}, params.NewOverrides())
	if !errors.Is(err, ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
	if len(audio.Data) != 0 {
		t.Fatal("failed requests must not return partial audio")
	}
}

type failingSynth struct{}

func (failingSynth) Synthesize(context.Context, synth.Request) (synth.Result, error) {
	return synth.Result{}, errors.New("model unavailable")
}
