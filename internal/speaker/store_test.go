package speaker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSpeaker(name string) Speaker {
	return Speaker{
		Name:        name,
		Gender:      "female",
		Description: "test voice",
		Embedding:   []byte{1, 2, 3, 4},
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir(), newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Save(testSpeaker("ada")); err != nil {
		t.Fatalf("save: %v", err)
	}
	spk, ok := store.Get("ada")
	if !ok {
		t.Fatal("expected speaker ada")
	}
	if spk.Gender != "female" {
		t.Fatalf("unexpected gender %q", spk.Gender)
	}
}

func TestStoreRefreshIndexesDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := WriteProfile(filepath.Join(dir, "bob.json"), testSpeaker("bob")); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	if err := store.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := store.Get("bob"); !ok {
		t.Fatal("expected bob after refresh")
	}
}

func TestStoreListSorted(t *testing.T) {
	store, err := NewStore(t.TempDir(), newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	for _, name := range []string{"zoe", "ada", "mia"} {
		if err := store.Save(testSpeaker(name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	names := make([]string, 0, 3)
	for _, spk := range store.List() {
		names = append(names, spk.Name)
	}
	if strings.Join(names, ",") != "ada,mia,zoe" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestDescribePlaceholders(t *testing.T) {
	store, err := NewStore(t.TempDir(), newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if got := store.Describe(""); got != "empty" {
		t.Fatalf("expected placeholder empty, got %q", got)
	}
	if got := store.Describe("/nonexistent/file.json"); got != "load failed" {
		t.Fatalf("expected placeholder load failed, got %q", got)
	}
}

func TestDescribeRendersProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ada.json")
	if err := WriteProfile(path, testSpeaker("ada")); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	store, err := NewStore(dir, newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	info := store.Describe(path)
	if !strings.Contains(info, "name: ada") || !strings.Contains(info, "gender: female") {
		t.Fatalf("unexpected description: %q", info)
	}
}

func TestReadProfileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "x"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadProfile(path); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for incomplete profile, got %v", err)
	}

	path = filepath.Join(dir, "junk.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadProfile(path); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for junk profile, got %v", err)
	}
}

func TestReadLegacyPNGProfile(t *testing.T) {
	spk := testSpeaker("legacy")
	payload, err := encodeTestPNGProfile(spk)
	if err != nil {
		t.Fatalf("build png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "legacy.spkv1.png")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadProfile(path)
	if err != nil {
		t.Fatalf("read png profile: %v", err)
	}
	if got.Name != "legacy" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

// encodeTestPNGProfile builds a minimal PNG carrying the profile JSON in a
// tEXt chunk, the way legacy spkv1 files do.
func encodeTestPNGProfile(spk Speaker) ([]byte, error) {
	jsonData := []byte(`{"name":"` + spk.Name + `","gender":"` + spk.Gender +
		`","description":"` + spk.Description + `","embedding":"AQIDBA=="}`)

	var buf bytes.Buffer
	buf.Write(pngSignature)

	writeChunk := func(chunkType string, payload []byte) {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
		buf.Write(length[:])
		body := append([]byte(chunkType), payload...)
		buf.Write(body)
		var crc [4]byte
		binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(body))
		buf.Write(crc[:])
	}

	text := append([]byte(pngSpeakerKeyword), 0)
	text = append(text, jsonData...)
	writeChunk("tEXt", text)
	writeChunk("IEND", nil)
	return buf.Bytes(), nil
}
