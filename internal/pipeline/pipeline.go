// Package pipeline is the public surface of the synthesis core: it turns
// raw text or SSML markup into one encoded audio stream, driving the
// segmenters, resolvers, orchestrator, post-processing, enhancement and
// encoding stages in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/aurislabs/auris-core/internal/dsp"
	"github.com/aurislabs/auris-core/internal/encoder"
	"github.com/aurislabs/auris-core/internal/enhance"
	"github.com/aurislabs/auris-core/internal/params"
	"github.com/aurislabs/auris-core/internal/speaker"
	"github.com/aurislabs/auris-core/internal/ssml"
	"github.com/aurislabs/auris-core/internal/synth"
	"github.com/aurislabs/auris-core/internal/textseg"
)

// The request error taxonomy. Stage packages own the sentinels; the
// pipeline re-exports them so callers match errors in one place.
var (
	ErrParse              = ssml.ErrParse
	ErrValidation         = speaker.ErrValidation
	ErrSampleRateMismatch = synth.ErrSampleRateMismatch
	ErrSynthesis          = synth.ErrSynthesis
	ErrEnhancement        = enhance.ErrEnhancement
	ErrEncoding           = encoder.ErrEncoding

	// ErrEmptySegments is returned when nothing speakable remains after
	// parsing and length limiting.
	ErrEmptySegments = errors.New("no segments to synthesize")
)

const (
	defaultMaxTotalChars = 1000
	defaultSpeakerSeed   = 2
	defaultTimeout       = 120 * time.Second
)

// Options configures one pipeline instance.
type Options struct {
	// MaxTotalChars bounds the cumulative spoken-text length per request.
	MaxTotalChars int
	// EncoderCommand runs for output formats without a native encode path.
	EncoderCommand string
	// DefaultSpeaker serves requests that name no speaker at all.
	DefaultSpeaker speaker.Ref
	// Timeout bounds one whole request, external calls included.
	Timeout time.Duration
}

// Audio is the result of one pipeline invocation.
type Audio struct {
	SampleRate int
	Format     encoder.Format
	Data       []byte
}

// Pipeline serves synthesis requests. Speaker and style stores are shared
// read-mostly registries; everything else is per-request state.
type Pipeline struct {
	speakers *speaker.Store
	styles   *speaker.StyleStore
	orch     *synth.Orchestrator
	enhancer enhance.Enhancer
	opts     Options
	log      *slog.Logger

	meter    metric.Meter
	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// New wires a pipeline to its collaborators.
func New(speakers *speaker.Store, styles *speaker.StyleStore, synthesizer synth.Synthesizer, fallbackRate int, enhancer enhance.Enhancer, opts Options, log *slog.Logger) *Pipeline {
	if opts.MaxTotalChars <= 0 {
		opts.MaxTotalChars = defaultMaxTotalChars
	}
	if opts.DefaultSpeaker == nil {
		opts.DefaultSpeaker = speaker.BySeed{Seed: defaultSpeakerSeed}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	p := &Pipeline{
		speakers: speakers,
		styles:   styles,
		orch:     synth.NewOrchestrator(synthesizer, fallbackRate, log),
		enhancer: enhancer,
		opts:     opts,
		log:      log.With(slog.String("component", "pipeline")),
		meter:    otel.Meter("github.com/aurislabs/auris-core/pipeline"),
	}
	if err := p.initMetrics(); err != nil {
		p.log.Warn("failed to initialize metrics", slog.String("error", err.Error()))
	}
	return p
}

func (p *Pipeline) initMetrics() error {
	var err error
	p.requests, err = p.meter.Int64Counter("auris_pipeline_requests_total",
		metric.WithDescription("Synthesis requests served, by entry point"))
	if err != nil {
		return err
	}
	p.failures, err = p.meter.Int64Counter("auris_pipeline_failures_total",
		metric.WithDescription("Synthesis requests that failed"))
	if err != nil {
		return err
	}
	p.duration, err = p.meter.Float64Histogram("auris_pipeline_duration_seconds",
		metric.WithDescription("End-to-end request duration"))
	return err
}

// SynthesizeFromSSML renders markup into encoded audio. Parsing, limiting
// and speaker resolution run eagerly, so an invalid request fails before
// any synthesis call is issued.
func (p *Pipeline) SynthesizeFromSSML(ctx context.Context, markup string, ov params.Overrides) (Audio, error) {
	return p.serve(ctx, "ssml", ov, func() ([]synth.Item, params.Effective, error) {
		segments, err := ssml.Parse(markup)
		if err != nil {
			return nil, params.Effective{}, err
		}
		segments = ssml.LimitSegments(segments, p.opts.MaxTotalChars)
		if countText(segments) == 0 {
			return nil, params.Effective{}, ErrEmptySegments
		}
		return p.itemsFromSegments(segments, ov)
	})
}

// SynthesizeFromText renders plain text with one speaker for the whole
// request. The text is normalized and split into threshold-bounded
// sentences before dispatch.
func (p *Pipeline) SynthesizeFromText(ctx context.Context, text string, ref speaker.Ref, ov params.Overrides) (Audio, error) {
	return p.serve(ctx, "text", ov, func() ([]synth.Item, params.Effective, error) {
		if ref == nil && p.styles.Get(ov.Style).Speaker == "" {
			ref = p.opts.DefaultSpeaker
		}
		spk, eff, err := params.Resolve(ref, ov.Style, ov, p.speakers, p.styles)
		if err != nil {
			return nil, params.Effective{}, err
		}
		return p.textItems(text, spk, eff, ov)
	})
}

// SynthesizeFromTextNamed is SynthesizeFromText for callers that carry the
// speaker as a string: an integer selects a seed, anything else names a
// stored profile, and the empty string uses the default speaker.
func (p *Pipeline) SynthesizeFromTextNamed(ctx context.Context, text, speakerName string, ov params.Overrides) (Audio, error) {
	return p.serve(ctx, "text", ov, func() ([]synth.Item, params.Effective, error) {
		sp := ssml.NewParams()
		sp.Speaker = speakerName
		spk, eff, err := p.resolveSegment(sp, ov)
		if err != nil {
			return nil, params.Effective{}, err
		}
		return p.textItems(text, spk, eff, ov)
	})
}

// textItems normalizes, splits and budget-limits plain text, binding every
// sentence to the one resolved speaker.
func (p *Pipeline) textItems(text string, spk speaker.Speaker, eff params.Effective, ov params.Overrides) ([]synth.Item, params.Effective, error) {
	text = textseg.Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil, params.Effective{}, ErrEmptySegments
	}

	splitter := textseg.Splitter{Threshold: ov.SplitThreshold, EOS: ov.EOS}
	sentences := splitter.Split(text)

	segments := make([]ssml.Segment, 0, len(sentences))
	for _, s := range sentences {
		segments = append(segments, ssml.TextSegment{Text: s.Text, Params: ssml.NewParams()})
	}
	segments = ssml.LimitSegments(segments, p.opts.MaxTotalChars)
	if len(segments) == 0 {
		return nil, params.Effective{}, ErrEmptySegments
	}

	items := make([]synth.Item, 0, len(segments))
	for _, seg := range segments {
		sentence := seg.(ssml.TextSegment)
		items = append(items, synth.Item{
			Text:    sentence.Text,
			Speaker: spk,
			Params:  withRefinePrompt(eff),
		})
	}
	return items, eff, nil
}

// serve runs the shared tail of both entry points: request records, the
// encoder session, orchestration, post-processing, enhancement, encoding.
func (p *Pipeline) serve(ctx context.Context, entry string, ov params.Overrides, prepare func() ([]synth.Item, params.Effective, error)) (Audio, error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("entry", entry))
	if p.requests != nil {
		p.requests.Add(ctx, 1, attrs)
	}

	audio, err := p.run(ctx, ov, prepare)
	if p.duration != nil {
		p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if err != nil {
		if p.failures != nil {
			p.failures.Add(ctx, 1, attrs)
		}
		p.log.Warn("synthesis request failed",
			slog.String("entry", entry),
			slog.String("error", err.Error()))
		return Audio{}, err
	}
	p.log.Info("synthesis request served",
		slog.String("entry", entry),
		slog.String("format", string(audio.Format)),
		slog.Int("sample_rate", audio.SampleRate),
		slog.Int("bytes", len(audio.Data)),
		slog.Duration("elapsed", time.Since(start)))
	return audio, nil
}

func (p *Pipeline) run(ctx context.Context, ov params.Overrides, prepare func() ([]synth.Item, params.Effective, error)) (Audio, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	items, eff, err := prepare()
	if err != nil {
		return Audio{}, err
	}

	cfg, err := params.BuildRequest(ov, eff)
	if err != nil {
		return Audio{}, err
	}

	session, err := encoder.Open(cfg.Encoder, p.opts.EncoderCommand, p.log)
	if err != nil {
		return Audio{}, err
	}
	defer session.Close()

	buf, err := p.orch.Render(ctx, items, cfg.Infer)
	if err != nil {
		return Audio{}, err
	}
	buf = dsp.Adjust(buf, cfg.Adjust)
	buf, err = enhance.Apply(ctx, p.enhancer, buf, cfg.Enhance)
	if err != nil {
		return Audio{}, err
	}

	data, err := session.Encode(ctx, buf)
	if err != nil {
		return Audio{}, err
	}
	return Audio{SampleRate: buf.SampleRate, Format: cfg.Encoder.Format, Data: data}, nil
}

// itemsFromSegments resolves every text segment's speaker and parameters
// up front. Prosody attributes become segment-local adjustments.
func (p *Pipeline) itemsFromSegments(segments []ssml.Segment, ov params.Overrides) ([]synth.Item, params.Effective, error) {
	items := make([]synth.Item, 0, len(segments))
	var first params.Effective
	haveFirst := false

	for _, seg := range segments {
		switch s := seg.(type) {
		case ssml.BreakSegment:
			items = append(items, synth.Item{Break: true, Pause: s.Duration})
		case ssml.TextSegment:
			spk, eff, err := p.resolveSegment(s.Params, ov)
			if err != nil {
				return nil, params.Effective{}, err
			}
			if !haveFirst {
				first, haveFirst = eff, true
			}
			items = append(items, synth.Item{
				Text:    s.Text,
				Speaker: spk,
				Params:  withRefinePrompt(eff),
				Adjust: dsp.AdjustConfig{
					Pitch:        s.Params.Pitch,
					SpeedRate:    s.Params.Rate,
					VolumeGainDB: s.Params.Volume,
				},
			})
		}
	}
	return items, first, nil
}

// resolveSegment merges a segment's markup attributes over the request
// overrides and resolves the speaker it names.
func (p *Pipeline) resolveSegment(sp ssml.Params, ov params.Overrides) (speaker.Speaker, params.Effective, error) {
	if sp.Seed != 0 && sp.Seed != -1 {
		ov.Seed = sp.Seed
	}
	if sp.Temperature != 0 {
		ov.Temperature = sp.Temperature
	}
	style := sp.Style
	if style == "" {
		style = ov.Style
	}

	switch {
	case sp.Speaker == "":
		var ref speaker.Ref
		if p.styles.Get(style).Speaker == "" {
			ref = p.opts.DefaultSpeaker
		}
		return params.Resolve(ref, style, ov, p.speakers, p.styles)
	default:
		if seed, err := strconv.ParseInt(sp.Speaker, 10, 64); err == nil {
			return params.Resolve(speaker.BySeed{Seed: seed}, style, ov, p.speakers, p.styles)
		}
		named, ok := p.speakers.Get(sp.Speaker)
		if !ok {
			return speaker.Speaker{}, params.Effective{}, fmt.Errorf("%w: unknown speaker %q", ErrValidation, sp.Speaker)
		}
		return named, params.ResolveWith(named, style, ov, p.styles), nil
	}
}

// withRefinePrompt folds the resolved refinement tokens into the prompt
// slot when the style or caller supplied none.
func withRefinePrompt(eff params.Effective) synth.TTSParams {
	tts := eff.TTS
	if tts.Prompt == "" {
		tts.Prompt = eff.RefinePrompt()
	}
	return tts
}

func countText(segments []ssml.Segment) int {
	n := 0
	for _, seg := range segments {
		if _, ok := seg.(ssml.TextSegment); ok {
			n++
		}
	}
	return n
}
