package ssml

import "unicode/utf8"

// LimitSegments enforces a total budget on spoken text, measured in runes.
// Break segments never count toward the budget but are emitted as long as
// the budget holds. Iteration stops entirely at the first text segment that
// would exceed the budget: that segment and everything after it, breaks
// included, are dropped. There is no look-ahead for smaller trailing
// segments.
func LimitSegments(segments []Segment, maxTotal int) []Segment {
	var (
		kept  []Segment
		total int
	)
	for _, seg := range segments {
		text, ok := seg.(TextSegment)
		if !ok {
			kept = append(kept, seg)
			continue
		}
		total += utf8.RuneCountInString(text.Text)
		if total > maxTotal {
			break
		}
		kept = append(kept, seg)
	}
	return kept
}
