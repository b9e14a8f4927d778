package params

import (
	"github.com/aurislabs/auris-core/internal/dsp"
	"github.com/aurislabs/auris-core/internal/encoder"
	"github.com/aurislabs/auris-core/internal/enhance"
	"github.com/aurislabs/auris-core/internal/synth"
)

// defaultHeadroomDB is the peak margin reserved during normalization when
// the caller enables it without naming one.
const defaultHeadroomDB = 1

// RequestConfig bundles the four immutable per-request records the pipeline
// stages consume. Construction is pure; nothing here touches external state.
type RequestConfig struct {
	Infer   synth.InferConfig
	Adjust  dsp.AdjustConfig
	Enhance enhance.Config
	Encoder encoder.Config
}

// BuildRequest assembles the request records from the caller's overrides
// and the resolved parameters.
func BuildRequest(ov Overrides, eff Effective) (RequestConfig, error) {
	format := ov.Format
	if format == "" {
		format = string(encoder.FormatWAV)
	}
	parsed, err := encoder.ParseFormat(format)
	if err != nil {
		return RequestConfig{}, err
	}

	headroom := ov.HeadroomDB
	if ov.Normalize && headroom == 0 {
		headroom = defaultHeadroomDB
	}

	return RequestConfig{
		Infer: synth.InferConfig{
			BatchSize:      ov.BatchSize,
			SplitThreshold: ov.SplitThreshold,
			EOS:            ov.EOS,
			Seed:           eff.TTS.Seed,
			Sync:           ov.Sync,
		},
		Adjust: dsp.AdjustConfig{
			Pitch:        ov.Pitch,
			SpeedRate:    ov.SpeedRate,
			VolumeGainDB: ov.VolumeGainDB,
			Normalize:    ov.Normalize,
			HeadroomDB:   headroom,
		},
		Enhance: enhance.ConfigFor(ov.Denoise, ov.Enhance),
		Encoder: encoder.NewConfig(parsed, ov.Codec, ov.Bitrate),
	}, nil
}
