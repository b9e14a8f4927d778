package history

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/aurislabs/auris-core/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenDisabled(t *testing.T) {
	s, err := Open(context.Background(), config.HistoryConfig{Enabled: false}, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Append(context.Background(), Record{Entry: "text", Status: "ok"}); err != nil {
		t.Fatalf("disabled store must accept appends: %v", err)
	}
	records, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("disabled store must journal nothing, got %d records", len(records))
	}
}

func TestAppendAndList(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.HistoryConfig{Enabled: true, Path: filepath.Join(tmp, "history.db")}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	rec := Record{
		RequestID:  "req-1",
		Entry:      "text",
		Speaker:    "seed-5",
		Format:     "wav",
		SampleRate: 24000,
		TextLength: 42,
		Status:     "ok",
	}
	if err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	records, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].RequestID != "req-1" || records[0].SampleRate != 24000 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestPruneByDaysAndCount(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.HistoryConfig{Enabled: true, Path: filepath.Join(tmp, "history.db"), RetentionDays: 1, MaxRequests: 1}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	s.clock = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := s.Append(context.Background(), Record{RequestID: "old", Entry: "text", Status: "ok"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	s.clock = func() time.Time { return time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC) }
	if err := s.Append(context.Background(), Record{RequestID: "new", Entry: "text", Status: "ok"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	records, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].RequestID != "new" {
		t.Fatalf("expected only the fresh record to survive, got %+v", records)
	}
}
