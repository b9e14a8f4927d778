package dsp

import (
	"time"
)

// Buffer holds mono PCM samples in the range [-1, 1] at a fixed sample rate.
// A buffer has a single owner at any pipeline stage; stages hand it forward
// and must not retain references after returning.
type Buffer struct {
	SampleRate int
	Samples    []float64
}

// Duration reports the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy of the buffer.
func (b Buffer) Clone() Buffer {
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return Buffer{SampleRate: b.SampleRate, Samples: samples}
}

// Silence returns a buffer of zero samples covering d at the given rate.
func Silence(sampleRate int, d time.Duration) Buffer {
	n := int(float64(sampleRate) * d.Seconds())
	if n < 0 {
		n = 0
	}
	return Buffer{SampleRate: sampleRate, Samples: make([]float64, n)}
}

// Concat joins buffers in order into a single buffer. All inputs must share
// one sample rate; the caller is responsible for checking that beforehand.
func Concat(buffers []Buffer) Buffer {
	if len(buffers) == 0 {
		return Buffer{}
	}
	total := 0
	for _, b := range buffers {
		total += len(b.Samples)
	}
	out := Buffer{SampleRate: buffers[0].SampleRate, Samples: make([]float64, 0, total)}
	for _, b := range buffers {
		out.Samples = append(out.Samples, b.Samples...)
	}
	return out
}
