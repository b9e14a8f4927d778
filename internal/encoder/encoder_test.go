package encoder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/aurislabs/auris-core/internal/dsp"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDefaultCodecs(t *testing.T) {
	cases := map[Format]string{
		FormatMP3:  "libmp3lame",
		FormatWAV:  "pcm_s16le",
		FormatOGG:  "libvorbis",
		FormatFLAC: "flac",
		FormatAAC:  "aac",
	}
	for format, codec := range cases {
		if got := format.DefaultCodec(); got != codec {
			t.Errorf("%s: expected codec %q, got %q", format, codec, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("mp3"); err != nil {
		t.Fatalf("mp3 must parse: %v", err)
	}
	if _, err := ParseFormat("mp4"); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding for unsupported format, got %v", err)
	}
}

func TestNewConfigFillsDefaults(t *testing.T) {
	cfg := NewConfig(FormatOGG, "", "")
	if cfg.Codec != "libvorbis" {
		t.Fatalf("expected default codec libvorbis, got %q", cfg.Codec)
	}
	if cfg.Bitrate != DefaultBitrate {
		t.Fatalf("expected default bitrate %q, got %q", DefaultBitrate, cfg.Bitrate)
	}

	cfg = NewConfig(FormatOGG, "opus", "64k")
	if cfg.Codec != "opus" || cfg.Bitrate != "64k" {
		t.Fatal("explicit codec and bitrate must win over defaults")
	}
}

func TestWAVSessionRoundTrip(t *testing.T) {
	s, err := Open(NewConfig(FormatWAV, "", ""), "", newLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	buf := dsp.Silence(8000, 100*time.Millisecond)
	buf.Samples[0] = 0.5

	data, err := s.Encode(context.Background(), buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	decoded, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode produced wav: %v", err)
	}
	if dec.SampleRate != 8000 {
		t.Fatalf("expected sample rate 8000, got %d", dec.SampleRate)
	}
	if len(decoded.Data) != 800 {
		t.Fatalf("expected 800 samples, got %d", len(decoded.Data))
	}
	if decoded.Data[0] == 0 {
		t.Fatal("first sample lost in encoding")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s, err := Open(NewConfig(FormatWAV, "", ""), "", newLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := s.Encode(context.Background(), dsp.Silence(8000, time.Millisecond)); !errors.Is(err, ErrEncoding) {
		t.Fatalf("encode after close must fail with ErrEncoding, got %v", err)
	}
}

func TestOpenRequiresCommandForExternalFormats(t *testing.T) {
	if _, err := Open(NewConfig(FormatMP3, "", ""), "", newLogger()); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding without encoder command, got %v", err)
	}
}

func TestEncodeRejectsZeroRate(t *testing.T) {
	s, err := Open(NewConfig(FormatWAV, "", ""), "", newLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := s.Encode(context.Background(), dsp.Buffer{}); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding for zero sample rate, got %v", err)
	}
}
