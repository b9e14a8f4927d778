package textseg

import (
	"strings"
	"unicode/utf8"
)

// Sentence is one output chunk of the splitter, carrying its submission
// index and measured length for downstream batch-capacity planning.
type Sentence struct {
	Index  int
	Text   string
	Length int
}

// Splitter chunks long plain text into sentences no longer than Threshold
// runes, preferring sentence terminators over clause separators and clause
// separators over hard cuts. EOS, when set, is appended to every sentence
// and counted in its length.
type Splitter struct {
	Threshold int
	EOS       string
}

const defaultThreshold = 100

var (
	sentenceEnders = []rune{'.', '!', '?', ';', '。', '！', '？', '；', '\n'}
	clauseEnders   = []rune{',', ':', '，', '、', '：'}
)

// Split returns the ordered sentence sequence for the given text. Empty
// input yields no sentences.
func (s Splitter) Split(text string) []Sentence {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	var sentences []Sentence
	for _, chunk := range splitBounded(text, threshold) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		chunk += s.EOS
		sentences = append(sentences, Sentence{
			Index:  len(sentences),
			Text:   chunk,
			Length: utf8.RuneCountInString(chunk),
		})
	}
	return sentences
}

// splitBounded greedily packs terminator-delimited units into chunks of at
// most threshold runes. A single unit that exceeds the threshold is split
// again at clause boundaries, and hard-cut as a last resort.
func splitBounded(text string, threshold int) []string {
	var (
		chunks  []string
		current strings.Builder
		curLen  int
	)

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			curLen = 0
		}
	}

	for _, unit := range splitAfter(text, sentenceEnders) {
		unitLen := utf8.RuneCountInString(unit)
		if unitLen > threshold {
			flush()
			chunks = append(chunks, splitLongUnit(unit, threshold)...)
			continue
		}
		if curLen+unitLen > threshold {
			flush()
		}
		current.WriteString(unit)
		curLen += unitLen
	}
	flush()
	return chunks
}

func splitLongUnit(unit string, threshold int) []string {
	var (
		chunks  []string
		current strings.Builder
		curLen  int
	)
	for _, clause := range splitAfter(unit, clauseEnders) {
		clauseLen := utf8.RuneCountInString(clause)
		if clauseLen > threshold {
			if curLen > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
				curLen = 0
			}
			chunks = append(chunks, hardCut(clause, threshold)...)
			continue
		}
		if curLen+clauseLen > threshold {
			chunks = append(chunks, current.String())
			current.Reset()
			curLen = 0
		}
		current.WriteString(clause)
		curLen += clauseLen
	}
	if curLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// hardCut slices at exact rune offsets when no usable boundary exists.
func hardCut(text string, threshold int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > threshold {
		chunks = append(chunks, string(runes[:threshold]))
		runes = runes[threshold:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// splitAfter splits text after any of the given boundary runes, keeping the
// boundary attached to the preceding piece.
func splitAfter(text string, boundaries []rune) []string {
	var (
		pieces  []string
		current strings.Builder
	)
	isBoundary := func(r rune) bool {
		for _, b := range boundaries {
			if r == b {
				return true
			}
		}
		return false
	}
	for _, r := range text {
		current.WriteRune(r)
		if isBoundary(r) {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
