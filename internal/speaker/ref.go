package speaker

// Ref identifies a speaker before resolution. Exactly one variant applies
// per request; dispatch is by type, one resolver per variant.
type Ref interface {
	ref()
}

// ByIndex selects the deterministic synthetic speaker for a numeric index.
type ByIndex struct {
	Index int64
}

// BySeed selects the synthetic speaker derived from an explicit seed.
type BySeed struct {
	Seed int64
}

// ByProfileFile loads a speaker profile from disk.
type ByProfileFile struct {
	Path string
}

// ByReferenceAudio clones a voice from reference audio plus its transcript.
type ByReferenceAudio struct {
	WAV        []byte
	Transcript string
}

func (ByIndex) ref()          {}
func (BySeed) ref()           {}
func (ByProfileFile) ref()    {}
func (ByReferenceAudio) ref() {}

// Resolve maps a reference to a concrete speaker. Profile files are read
// through the store so repeated loads hit its cache.
func Resolve(ref Ref, store *Store) (Speaker, error) {
	switch r := ref.(type) {
	case ByIndex:
		return FromSeed(r.Index), nil
	case BySeed:
		return FromSeed(r.Seed), nil
	case ByProfileFile:
		return store.LoadFile(r.Path)
	case ByReferenceAudio:
		return FromReferenceAudio(r.WAV, r.Transcript)
	default:
		return Speaker{}, ErrValidation
	}
}
