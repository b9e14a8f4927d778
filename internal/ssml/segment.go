// Package ssml parses SSML v0.1 markup into an ordered segment sequence and
// applies the total-length budget used by the synthesis pipeline.
package ssml

import "time"

// Params carries the per-segment overrides collected from enclosing
// elements. Zero values mean "not set"; Seed uses -1 as its unset sentinel.
type Params struct {
	Speaker     string
	Style       string
	Seed        int64
	Temperature float64
	Rate        float64
	Pitch       float64
	Volume      float64
}

// NewParams returns a Params with all sentinels in their unset state.
func NewParams() Params {
	return Params{Seed: -1}
}

// Segment is one unit of parsed markup: spoken text or a timed break.
type Segment interface {
	segment()
}

// TextSegment is a run of spoken text with its local parameter overrides.
type TextSegment struct {
	Text   string
	Params Params
}

// BreakSegment is a timed pause inserted into the output stream.
type BreakSegment struct {
	Duration time.Duration
}

func (TextSegment) segment()  {}
func (BreakSegment) segment() {}
