// Package speaker holds voice identities: seed-derived synthetic speakers,
// profile files on disk, reference-audio speakers, and the stores that
// resolve them by name or style.
package speaker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
)

// ErrValidation indicates a speaker that cannot be used: a malformed
// profile file or a reference-audio speaker without a transcript.
var ErrValidation = errors.New("speaker validation error")

const embeddingSize = 768

// Speaker is a resolved voice identity used to condition synthesis.
// Embedding is opaque to the pipeline; it is produced here or read from a
// profile file and handed to the synthesis capability untouched.
type Speaker struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
	Embedding   []byte `json:"embedding"`
	DefaultSeed int64  `json:"default_seed,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// FromSeed derives a synthetic speaker deterministically from a seed. The
// same seed always yields the same embedding.
func FromSeed(seed int64) Speaker {
	rng := rand.New(rand.NewSource(seed))
	embedding := make([]byte, embeddingSize)
	for i := range embedding {
		embedding[i] = byte(rng.Intn(256))
	}
	return Speaker{
		Name:        fmt.Sprintf("seed-%d", seed),
		Gender:      "*",
		Description: fmt.Sprintf("synthetic speaker derived from seed %d", seed),
		Embedding:   embedding,
		DefaultSeed: seed,
	}
}

// FromReferenceAudio builds a speaker keyed by the reference audio content
// and its transcript. Two different transcripts over identical audio yield
// distinct speakers. A blank transcript fails validation.
func FromReferenceAudio(wavData []byte, transcript string) (Speaker, error) {
	if isBlank(transcript) {
		return Speaker{}, fmt.Errorf("%w: reference audio transcript is empty", ErrValidation)
	}
	if len(wavData) == 0 {
		return Speaker{}, fmt.Errorf("%w: reference audio is empty", ErrValidation)
	}

	h := sha256.New()
	h.Write(wavData)
	h.Write([]byte{0})
	h.Write([]byte(transcript))
	key := h.Sum(nil)

	return Speaker{
		Name:        "ref-" + hex.EncodeToString(key[:8]),
		Gender:      "*",
		Description: "speaker cloned from reference audio",
		Embedding:   key,
		DefaultSeed: -1,
		Transcript:  transcript,
	}, nil
}

// DisplayName renders the speaker for listings: "gender : name", or just
// the name when the gender is unknown.
func (s Speaker) DisplayName() string {
	if s.Gender == "*" || s.Gender == "" {
		return s.Name
	}
	return s.Gender + " : " + s.Name
}

// Validate checks the fields a profile file must carry.
func (s Speaker) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrValidation)
	}
	if s.Gender == "" {
		return fmt.Errorf("%w: missing gender", ErrValidation)
	}
	if s.Description == "" {
		return fmt.Errorf("%w: missing description", ErrValidation)
	}
	if len(s.Embedding) == 0 {
		return fmt.Errorf("%w: missing embedding", ErrValidation)
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
