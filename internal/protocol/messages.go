// Package protocol defines the bus message types and subjects of the
// synthesis service surface.
package protocol

import "time"

// TextRequest asks for synthesis of plain text.
type TextRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"text"`

	Speaker string `json:"speaker,omitempty"`
	Style   string `json:"style,omitempty"`

	Seed        int64   `json:"seed,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`

	Pitch        float64 `json:"pitch,omitempty"`
	SpeedRate    float64 `json:"speed_rate,omitempty"`
	VolumeGainDB float64 `json:"volume_gain_db,omitempty"`
	Normalize    bool    `json:"normalize,omitempty"`
	HeadroomDB   float64 `json:"headroom_db,omitempty"`

	Denoise bool `json:"denoise,omitempty"`
	Enhance bool `json:"enhance,omitempty"`

	Format  string `json:"format,omitempty"`
	Codec   string `json:"codec,omitempty"`
	Bitrate string `json:"bitrate,omitempty"`

	BatchSize      int    `json:"batch_size,omitempty"`
	SplitThreshold int    `json:"split_threshold,omitempty"`
	EOS            string `json:"eos,omitempty"`
}

// SSMLRequest asks for synthesis of SSML markup. Per-segment speakers and
// styles come from the markup itself.
type SSMLRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Markup    string `json:"markup"`

	Pitch        float64 `json:"pitch,omitempty"`
	SpeedRate    float64 `json:"speed_rate,omitempty"`
	VolumeGainDB float64 `json:"volume_gain_db,omitempty"`
	Normalize    bool    `json:"normalize,omitempty"`
	HeadroomDB   float64 `json:"headroom_db,omitempty"`

	Denoise bool `json:"denoise,omitempty"`
	Enhance bool `json:"enhance,omitempty"`

	Format  string `json:"format,omitempty"`
	Codec   string `json:"codec,omitempty"`
	Bitrate string `json:"bitrate,omitempty"`

	BatchSize      int    `json:"batch_size,omitempty"`
	SplitThreshold int    `json:"split_threshold,omitempty"`
	EOS            string `json:"eos,omitempty"`
}

// SynthesisReply answers a synthesis request. Audio is empty when Error is
// set; requests never return partial audio.
type SynthesisReply struct {
	RequestID  string    `json:"request_id,omitempty"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Format     string    `json:"format,omitempty"`
	Audio      []byte    `json:"audio,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SpeakerInfo describes one stored speaker profile.
type SpeakerInfo struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
	DisplayName string `json:"display_name"`
}

// SpeakerListReply answers a speaker listing request.
type SpeakerListReply struct {
	Speakers []SpeakerInfo `json:"speakers"`
	Styles   []string      `json:"styles"`
	Error    string        `json:"error,omitempty"`
}

const (
	SubjectSynthesizeText = "speech.synthesize.text"
	SubjectSynthesizeSSML = "speech.synthesize.ssml"
	SubjectSpeakerList    = "speech.speakers.list"
)
