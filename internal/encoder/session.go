package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattn/go-shellwords"

	"github.com/aurislabs/auris-core/internal/dsp"
)

// ErrEncoding marks failures while packaging audio into its output format.
var ErrEncoding = errors.New("encoding failed")

// Session encodes rendered audio into one output container. Sessions are
// single-use: Close releases the session and further Encode calls fail.
type Session struct {
	cfg Config
	cmd []string
	log *slog.Logger

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Open prepares an encoding session. Formats other than WAV run through an
// external encoder process, so command must name one.
func Open(cfg Config, command string, log *slog.Logger) (*Session, error) {
	if _, ok := defaultCodecs[cfg.Format]; !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncoding, cfg.Format)
	}
	s := &Session{cfg: cfg, log: log.With(slog.String("component", "encoder"))}
	if cfg.Format == FormatWAV {
		return s, nil
	}

	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse encoder command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no encoder command configured for format %q", ErrEncoding, cfg.Format)
	}
	s.cmd = args
	return s, nil
}

// Encode packages the buffer into the session's output format.
func (s *Session) Encode(ctx context.Context, buf dsp.Buffer) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", ErrEncoding)
	}
	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: buffer has no sample rate", ErrEncoding)
	}

	wavBytes, err := encodeWAV(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if s.cfg.Format == FormatWAV {
		return wavBytes, nil
	}

	out, err := s.runExternal(ctx, wavBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	s.log.Debug("encoded audio",
		slog.String("format", string(s.cfg.Format)),
		slog.String("codec", s.cfg.Codec),
		slog.Int("bytes", len(out)))
	return out, nil
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return nil
}

// Config reports the session's resolved parameters.
func (s *Session) Config() Config {
	return s.cfg
}
