package textseg

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitRespectsThreshold(t *testing.T) {
	text := strings.Repeat("This is a sentence. ", 20)
	sentences := Splitter{Threshold: 50}.Split(text)
	if len(sentences) == 0 {
		t.Fatal("expected sentences")
	}
	for _, s := range sentences {
		if s.Length > 50 {
			t.Fatalf("sentence %d exceeds threshold: %d runes", s.Index, s.Length)
		}
		if s.Length != utf8.RuneCountInString(s.Text) {
			t.Fatalf("sentence %d reports wrong length", s.Index)
		}
	}
}

func TestSplitPrefersSentenceBoundaries(t *testing.T) {
	sentences := Splitter{Threshold: 30}.Split("First sentence here. Second one follows. Third arrives.")
	for _, s := range sentences {
		if !strings.HasSuffix(s.Text, ".") {
			t.Fatalf("expected sentence boundary cut, got %q", s.Text)
		}
	}
}

func TestSplitFallsBackToClauses(t *testing.T) {
	text := "one long clause without end, another clause follows here, and a third one too"
	sentences := Splitter{Threshold: 35}.Split(text)
	if len(sentences) < 2 {
		t.Fatalf("expected clause-level split, got %d chunks", len(sentences))
	}
	if !strings.HasSuffix(sentences[0].Text, ",") {
		t.Fatalf("expected clause boundary, got %q", sentences[0].Text)
	}
}

func TestSplitHardCutsUnbrokenText(t *testing.T) {
	text := strings.Repeat("x", 95)
	sentences := Splitter{Threshold: 40}.Split(text)
	if len(sentences) != 3 {
		t.Fatalf("expected 3 hard-cut chunks, got %d", len(sentences))
	}
	if sentences[0].Length != 40 || sentences[2].Length != 15 {
		t.Fatalf("unexpected chunk lengths: %d, %d", sentences[0].Length, sentences[2].Length)
	}
}

func TestSplitAppendsEOS(t *testing.T) {
	sentences := Splitter{Threshold: 50, EOS: "[uv_break]"}.Split("Hello world.")
	if len(sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sentences))
	}
	if !strings.HasSuffix(sentences[0].Text, "[uv_break]") {
		t.Fatalf("expected EOS suffix, got %q", sentences[0].Text)
	}
	if sentences[0].Length != utf8.RuneCountInString("Hello world.[uv_break]") {
		t.Fatalf("EOS must count toward length, got %d", sentences[0].Length)
	}
}

func TestSplitIndicesAreSequential(t *testing.T) {
	sentences := Splitter{Threshold: 10}.Split("One. Two. Three. Four. Five.")
	for i, s := range sentences {
		if s.Index != i {
			t.Fatalf("expected index %d, got %d", i, s.Index)
		}
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if got := (Splitter{Threshold: 10}).Split("   "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %d", len(got))
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  “Smart”  quotes…\tand — dashes \n here ")
	want := `"Smart" quotes... and - dashes here`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
