package speaker

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Profile file extensions. JSON is the primary format and also covers the
// legacy .spkv1.json variant; the PNG variant is accepted for read only.
const (
	ExtJSON      = ".json"
	ExtLegacyPNG = ".spkv1.png"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const pngSpeakerKeyword = "spkv1"

// ReadProfile loads and validates a speaker profile file. The format is
// chosen by extension; unknown extensions are tried as JSON.
func ReadProfile(path string) (Speaker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Speaker{}, fmt.Errorf("read speaker profile: %w", err)
	}

	var spk Speaker
	if strings.HasSuffix(path, ExtLegacyPNG) {
		spk, err = decodePNGProfile(data)
	} else {
		spk, err = decodeJSONProfile(data)
	}
	if err != nil {
		return Speaker{}, err
	}

	if err := spk.Validate(); err != nil {
		return Speaker{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return spk, nil
}

// WriteProfile stores a speaker as a JSON profile file.
func WriteProfile(path string, spk Speaker) error {
	if err := spk.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(spk, "", "  ")
	if err != nil {
		return fmt.Errorf("encode speaker profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write speaker profile: %w", err)
	}
	return nil
}

func decodeJSONProfile(data []byte) (Speaker, error) {
	var spk Speaker
	if err := json.Unmarshal(data, &spk); err != nil {
		return Speaker{}, fmt.Errorf("%w: malformed profile: %v", ErrValidation, err)
	}
	return spk, nil
}

// decodePNGProfile extracts the JSON payload a legacy PNG profile carries in
// a tEXt chunk keyed "spkv1".
func decodePNGProfile(data []byte) (Speaker, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return Speaker{}, fmt.Errorf("%w: not a PNG profile", ErrValidation)
	}
	rest := data[len(pngSignature):]

	for len(rest) >= 8 {
		length := binary.BigEndian.Uint32(rest[:4])
		chunkType := string(rest[4:8])
		if len(rest) < int(8+length+4) {
			break
		}
		payload := rest[8 : 8+length]

		if chunkType == "tEXt" {
			if i := bytes.IndexByte(payload, 0); i > 0 && string(payload[:i]) == pngSpeakerKeyword {
				return decodeJSONProfile(payload[i+1:])
			}
		}
		if chunkType == "IEND" {
			break
		}
		rest = rest[8+length+4:]
	}
	return Speaker{}, fmt.Errorf("%w: PNG profile has no %s payload", ErrValidation, pngSpeakerKeyword)
}
