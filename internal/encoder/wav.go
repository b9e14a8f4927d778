package encoder

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aurislabs/auris-core/internal/dsp"
)

// encodeWAV renders the buffer as a 16-bit mono RIFF/WAVE file. The wav
// encoder needs a seekable target to patch chunk sizes, so it goes through
// a temp file.
func encodeWAV(buf dsp.Buffer) ([]byte, error) {
	file, err := os.CreateTemp(os.TempDir(), "auris_enc_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(buf.Samples)),
	}
	for i, sample := range buf.Samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		intBuf.Data[i] = int(sample * math.MaxInt16)
	}

	enc := wav.NewEncoder(file, buf.SampleRate, 16, 1, 1)
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind wav: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return data, nil
}
