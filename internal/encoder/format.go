package encoder

import "fmt"

// Format names an output container for encoded audio.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatOGG  Format = "ogg"
	FormatFLAC Format = "flac"
	FormatAAC  Format = "aac"
)

// DefaultBitrate applies when a request carries no bitrate of its own.
const DefaultBitrate = "128k"

var defaultCodecs = map[Format]string{
	FormatMP3:  "libmp3lame",
	FormatWAV:  "pcm_s16le",
	FormatOGG:  "libvorbis",
	FormatFLAC: "flac",
	FormatAAC:  "aac",
}

// ParseFormat maps a request string onto a supported format.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := defaultCodecs[f]; !ok {
		return "", fmt.Errorf("%w: unsupported format %q", ErrEncoding, s)
	}
	return f, nil
}

// DefaultCodec returns the codec used for this format when the caller
// does not override it.
func (f Format) DefaultCodec() string {
	return defaultCodecs[f]
}

// Config carries the resolved encoding parameters for one session.
type Config struct {
	Format  Format
	Codec   string
	Bitrate string
}

// NewConfig fills codec and bitrate defaults from the format table.
func NewConfig(format Format, codec, bitrate string) Config {
	if codec == "" {
		codec = format.DefaultCodec()
	}
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	return Config{Format: format, Codec: codec, Bitrate: bitrate}
}
