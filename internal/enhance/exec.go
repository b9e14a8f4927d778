package enhance

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"

	"github.com/aurislabs/auris-core/internal/dsp"
	"github.com/mattn/go-shellwords"
)

type execEnhancer struct {
	cmd []string
}

type execRequest struct {
	SampleRate  int     `json:"sample_rate"`
	BlendWeight float64 `json:"blend_weight"`
	PCMBase64   string  `json:"pcm_base64"`
}

type execResponse struct {
	SampleRate int    `json:"sample_rate"`
	PCMBase64  string `json:"pcm_base64"`
	Error      string `json:"error,omitempty"`
}

// NewExecEnhancer wraps an external enhancement process. The process reads
// one JSON request on stdin carrying 16-bit little-endian PCM and writes one
// JSON response to stdout.
func NewExecEnhancer(command string) (Enhancer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse enhancer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("enhancer command empty")
	}
	return &execEnhancer{cmd: args}, nil
}

func (e *execEnhancer) Enhance(ctx context.Context, buf dsp.Buffer, blendWeight float64) (dsp.Buffer, error) {
	payload, err := json.Marshal(execRequest{
		SampleRate:  buf.SampleRate,
		BlendWeight: blendWeight,
		PCMBase64:   base64.StdEncoding.EncodeToString(pcm16Encode(buf.Samples)),
	})
	if err != nil {
		return dsp.Buffer{}, err
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return dsp.Buffer{}, fmt.Errorf("enhancer process: %w", err)
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return dsp.Buffer{}, fmt.Errorf("decode enhancer response: %w", err)
	}
	if resp.Error != "" {
		return dsp.Buffer{}, fmt.Errorf("enhancer: %s", resp.Error)
	}
	pcm, err := base64.StdEncoding.DecodeString(resp.PCMBase64)
	if err != nil {
		return dsp.Buffer{}, fmt.Errorf("decode enhancer pcm: %w", err)
	}

	rate := resp.SampleRate
	if rate == 0 {
		rate = buf.SampleRate
	}
	return dsp.Buffer{SampleRate: rate, Samples: pcm16Decode(pcm)}, nil
}

func pcm16Encode(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*math.MaxInt16)))
	}
	return out
}

func pcm16Decode(data []byte) []float64 {
	out := make([]float64, len(data)/2)
	for i := range out {
		out[i] = float64(int16(binary.LittleEndian.Uint16(data[i*2:]))) / math.MaxInt16
	}
	return out
}
