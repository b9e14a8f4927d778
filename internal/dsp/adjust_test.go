package dsp

import (
	"math"
	"testing"
	"time"
)

func TestSilenceLength(t *testing.T) {
	buf := Silence(16000, 500*time.Millisecond)
	if len(buf.Samples) != 8000 {
		t.Fatalf("expected 8000 samples, got %d", len(buf.Samples))
	}
	if buf.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", buf.SampleRate)
	}
}

func TestConcatOrder(t *testing.T) {
	a := Buffer{SampleRate: 8000, Samples: []float64{1, 1}}
	b := Buffer{SampleRate: 8000, Samples: []float64{2}}
	c := Buffer{SampleRate: 8000, Samples: []float64{3, 3}}
	out := Concat([]Buffer{a, b, c})
	want := []float64{1, 1, 2, 3, 3}
	if len(out.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out.Samples))
	}
	for i, s := range want {
		if out.Samples[i] != s {
			t.Fatalf("sample %d: expected %v, got %v", i, s, out.Samples[i])
		}
	}
}

func TestGainDB(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: []float64{0.1, -0.1}}
	out := GainDB(buf, 20)
	if math.Abs(out.Samples[0]-1.0) > 1e-9 {
		t.Fatalf("expected +20dB to scale 0.1 to 1.0, got %v", out.Samples[0])
	}
	if math.Abs(out.Samples[1]+1.0) > 1e-9 {
		t.Fatalf("expected -0.1 to scale to -1.0, got %v", out.Samples[1])
	}
}

func TestGainDBClips(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: []float64{0.9}}
	out := GainDB(buf, 20)
	if out.Samples[0] != 1 {
		t.Fatalf("expected clip to 1, got %v", out.Samples[0])
	}
}

func TestNormalizePeakHeadroom(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: []float64{0.25, -0.5}}
	out := NormalizePeak(buf, 6)
	target := math.Pow(10, -6.0/20)
	if math.Abs(out.Samples[1]+target) > 1e-9 {
		t.Fatalf("expected peak at %v, got %v", -target, out.Samples[1])
	}
}

func TestNormalizeSilentBuffer(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: make([]float64, 16)}
	out := NormalizePeak(buf, 1)
	for i, s := range out.Samples {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %v", i, s)
		}
	}
}

func TestSpeedRateHalvesLength(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: make([]float64, 8000)}
	out := SpeedRate(buf, 2)
	if len(out.Samples) < 3900 || len(out.Samples) > 4100 {
		t.Fatalf("expected roughly 4000 samples, got %d", len(out.Samples))
	}
	if out.SampleRate != 8000 {
		t.Fatalf("sample rate must be preserved, got %d", out.SampleRate)
	}
}

func TestPitchShiftPreservesLength(t *testing.T) {
	samples := make([]float64, 4000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 220 * float64(i) / 8000)
	}
	buf := Buffer{SampleRate: 8000, Samples: samples}
	out := PitchShift(buf, 3)
	if len(out.Samples) != 4000 {
		t.Fatalf("pitch shift must preserve length, got %d", len(out.Samples))
	}
}

func TestAdjustStageOrder(t *testing.T) {
	// Gain runs before normalization: a clipped +40dB gain followed by
	// normalization with headroom lands exactly on the headroom target,
	// which would not hold if the stages were swapped.
	buf := Buffer{SampleRate: 8000, Samples: []float64{0.5, -0.25}}
	out := Adjust(buf, AdjustConfig{
		SpeedRate:    1,
		VolumeGainDB: 40,
		Normalize:    true,
		HeadroomDB:   2,
	})
	target := math.Pow(10, -2.0/20)
	if math.Abs(out.Samples[0]-target) > 1e-9 {
		t.Fatalf("expected normalized peak %v, got %v", target, out.Samples[0])
	}
}

func TestAdjustZeroConfigIsIdentityExceptSpeed(t *testing.T) {
	buf := Buffer{SampleRate: 8000, Samples: []float64{0.1, 0.2, 0.3}}
	out := Adjust(buf.Clone(), AdjustConfig{SpeedRate: 1})
	for i := range buf.Samples {
		if out.Samples[i] != buf.Samples[i] {
			t.Fatalf("sample %d changed: %v != %v", i, out.Samples[i], buf.Samples[i])
		}
	}
}
