package dsp

import "math"

// AdjustConfig describes the post-processing applied to synthesized audio.
// The stage order is fixed: pitch, speed, gain, then normalization.
type AdjustConfig struct {
	Pitch        float64
	SpeedRate    float64
	VolumeGainDB float64
	Normalize    bool
	HeadroomDB   float64
}

const semitonesPerOctave = 12

// Adjust runs the post-processing chain over the buffer. Stages are applied
// in a fixed, non-reorderable sequence regardless of which fields are set.
func Adjust(buf Buffer, cfg AdjustConfig) Buffer {
	buf = PitchShift(buf, cfg.Pitch)
	buf = SpeedRate(buf, cfg.SpeedRate)
	buf = GainDB(buf, cfg.VolumeGainDB)
	if cfg.Normalize {
		buf = NormalizePeak(buf, cfg.HeadroomDB)
	}
	return buf
}

// PitchShift transposes the signal by the given number of semitones without
// changing its duration. The samples are resampled by the pitch factor and
// then stretched back to the original length; both passes use linear
// interpolation, so the sample rate is preserved.
func PitchShift(buf Buffer, semitones float64) Buffer {
	if semitones == 0 || len(buf.Samples) == 0 {
		return buf
	}
	factor := math.Pow(2, semitones/semitonesPerOctave)
	shifted := resampleLinear(buf.Samples, factor)
	buf.Samples = stretchTo(shifted, len(buf.Samples))
	return buf
}

// SpeedRate changes playback duration by the given rate (2 means twice as
// fast). Pitch is preserved only approximately: the signal is resampled at
// the original rate, which is the documented trade-off of this stage.
func SpeedRate(buf Buffer, rate float64) Buffer {
	if rate == 0 || rate == 1 || len(buf.Samples) == 0 {
		return buf
	}
	buf.Samples = resampleLinear(buf.Samples, rate)
	return buf
}

// GainDB applies a volume gain in decibels, clipping to [-1, 1].
func GainDB(buf Buffer, db float64) Buffer {
	if db == 0 {
		return buf
	}
	gain := math.Pow(10, db/20)
	for i, s := range buf.Samples {
		s *= gain
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Samples[i] = s
	}
	return buf
}

// NormalizePeak scales the signal so its peak sits headroom dB below full
// scale. A silent buffer is returned unchanged.
func NormalizePeak(buf Buffer, headroomDB float64) Buffer {
	peak := 0.0
	for _, s := range buf.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return buf
	}
	target := math.Pow(10, -headroomDB/20)
	scale := target / peak
	for i := range buf.Samples {
		buf.Samples[i] *= scale
	}
	return buf
}
