package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

type execSynth struct {
	cmd []string
	mu  sync.Mutex
}

type execSynthRequest struct {
	Text        string  `json:"text"`
	SpeakerName string  `json:"speaker_name"`
	Embedding   string  `json:"embedding_base64"`
	Transcript  string  `json:"transcript,omitempty"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
	Prompt      string  `json:"prompt,omitempty"`
	Prompt1     string  `json:"prompt1,omitempty"`
	Prompt2     string  `json:"prompt2,omitempty"`
	Prefix      string  `json:"prefix,omitempty"`
	Seed        int64   `json:"seed"`
}

type execSynthResponse struct {
	SampleRate int    `json:"sample_rate"`
	PCMBase64  string `json:"pcm_base64"`
	Error      string `json:"error,omitempty"`
}

// NewExecSynth wraps an external synthesis process. Each call spawns the
// process, writes one JSON request to stdin, and reads one JSON response
// carrying 16-bit little-endian PCM from stdout. Calls are serialized.
func NewExecSynth(command string) (Synthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse synthesizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("synthesizer command empty")
	}
	return &execSynth{cmd: args}, nil
}

func (e *execSynth) Synthesize(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(execSynthRequest{
		Text:        req.Text,
		SpeakerName: req.Speaker.Name,
		Embedding:   base64.StdEncoding.EncodeToString(req.Speaker.Embedding),
		Transcript:  req.Speaker.Transcript,
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		TopK:        req.Params.TopK,
		Prompt:      req.Params.Prompt,
		Prompt1:     req.Params.Prompt1,
		Prompt2:     req.Params.Prompt2,
		Prefix:      req.Params.Prefix,
		Seed:        req.Params.Seed,
	})
	if err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("synthesizer process: %w", err)
	}

	var resp execSynthResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("decode synthesizer response: %w", err)
	}
	if resp.Error != "" {
		return Result{}, fmt.Errorf("synthesizer: %s", resp.Error)
	}
	if resp.SampleRate <= 0 {
		return Result{}, fmt.Errorf("synthesizer reported sample rate %d", resp.SampleRate)
	}
	pcm, err := base64.StdEncoding.DecodeString(resp.PCMBase64)
	if err != nil {
		return Result{}, fmt.Errorf("decode synthesizer pcm: %w", err)
	}

	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / math.MaxInt16
	}
	return Result{SampleRate: resp.SampleRate, Samples: samples}, nil
}
