package speaker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const loadCacheSize = 128

// Store serves speaker profiles from a directory. Reads are concurrent;
// mutation takes the write lock so readers never observe a partially
// written entry. Profile file loads go through an LRU cache keyed by path.
type Store struct {
	dir    string
	log    *slog.Logger
	mu     sync.RWMutex
	byName map[string]Speaker
	cache  *lru.Cache[string, Speaker]
}

// NewStore opens a directory-backed speaker store and indexes the profiles
// already present.
func NewStore(dir string, log *slog.Logger) (*Store, error) {
	cache, err := lru.New[string, Speaker](loadCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create speaker cache: %w", err)
	}
	s := &Store{
		dir:    dir,
		log:    log.With(slog.String("component", "speaker-store")),
		byName: make(map[string]Speaker),
		cache:  cache,
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-indexes the profile directory. Files that fail to load are
// skipped with a warning; indexing is not the synthesis path.
func (s *Store) Refresh() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read speaker dir: %w", err)
	}

	loaded := make(map[string]Speaker)
	for _, entry := range entries {
		if entry.IsDir() || !hasProfileExt(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		spk, err := s.LoadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable speaker profile",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		loaded[spk.Name] = spk
	}

	s.mu.Lock()
	s.byName = loaded
	s.mu.Unlock()
	return nil
}

// LoadFile reads a profile file through the cache.
func (s *Store) LoadFile(path string) (Speaker, error) {
	if spk, ok := s.cache.Get(path); ok {
		return spk, nil
	}
	spk, err := ReadProfile(path)
	if err != nil {
		return Speaker{}, err
	}
	s.cache.Add(path, spk)
	return spk, nil
}

// Get returns the named speaker.
func (s *Store) Get(name string) (Speaker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spk, ok := s.byName[name]
	return spk, ok
}

// Save writes the speaker to disk and replaces its index entry.
func (s *Store) Save(spk Speaker) error {
	if err := spk.Validate(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, spk.Name+ExtJSON)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create speaker dir: %w", err)
	}
	if err := WriteProfile(path, spk); err != nil {
		return err
	}

	s.mu.Lock()
	s.byName[spk.Name] = spk
	s.mu.Unlock()
	s.cache.Add(path, spk)
	return nil
}

// List returns a snapshot of all speakers ordered by display name.
func (s *Store) List() []Speaker {
	s.mu.RLock()
	speakers := make([]Speaker, 0, len(s.byName))
	for _, spk := range s.byName {
		speakers = append(speakers, spk)
	}
	s.mu.RUnlock()

	sort.Slice(speakers, func(i, j int) bool {
		return speakers[i].DisplayName() < speakers[j].DisplayName()
	})
	return speakers
}

// Describe renders speaker info for display. This is a read-only inspection
// path: a load failure degrades to a logged warning and a placeholder, it
// never fails the caller.
func (s *Store) Describe(path string) string {
	if path == "" {
		return "empty"
	}
	spk, err := s.LoadFile(path)
	if err != nil {
		s.log.Warn("load speaker info failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return "load failed"
	}
	return fmt.Sprintf("- name: %s\n- gender: %s\n- describe: %s", spk.Name, spk.Gender, spk.Description)
}

func hasProfileExt(name string) bool {
	return strings.HasSuffix(name, ExtJSON) || strings.HasSuffix(name, ExtLegacyPNG)
}
