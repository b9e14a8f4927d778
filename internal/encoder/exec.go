package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// runExternal pipes a WAV rendition through the configured encoder process
// and returns the container bytes from its stdout.
func (s *Session) runExternal(ctx context.Context, wavBytes []byte) ([]byte, error) {
	file, err := os.CreateTemp(os.TempDir(), "auris_enc_in_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if _, err := file.Write(wavBytes); err != nil {
		return nil, fmt.Errorf("write temp wav: %w", err)
	}

	args := append([]string{}, s.cmd[1:]...)
	args = append(args,
		"--input", file.Name(),
		"--format", string(s.cfg.Format),
		"--codec", s.cfg.Codec,
		"--bitrate", s.cfg.Bitrate,
	)

	command := exec.CommandContext(ctx, s.cmd[0], args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("encoder command failed: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("encoder command produced no output")
	}
	return stdout.Bytes(), nil
}
