package speaker

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Style is a named preset of synthesis parameters. Numeric fields use -1 as
// the "directive omitted" sentinel; zero-valued fields are treated as unset
// during coalescing.
type Style struct {
	Name        string  `yaml:"name"`
	Prompt      string  `yaml:"prompt,omitempty"`
	Prompt1     string  `yaml:"prompt1,omitempty"`
	Prompt2     string  `yaml:"prompt2,omitempty"`
	Prefix      string  `yaml:"prefix,omitempty"`
	Speaker     string  `yaml:"speaker,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	Seed        int64   `yaml:"seed,omitempty"`
	Oral        int     `yaml:"oral,omitempty"`
	SpeechSpeed int     `yaml:"speed,omitempty"`
	BreakLevel  int     `yaml:"break,omitempty"`
	Laugh       int     `yaml:"laugh,omitempty"`
}

// EmptyStyle is what the auto style and unknown names resolve to: every
// directive omitted, nothing to coalesce against.
func EmptyStyle() Style {
	return Style{Seed: -1, Oral: -1, SpeechSpeed: -1, BreakLevel: -1, Laugh: -1}
}

// The auto style name asks the resolver to pick nothing explicitly.
const AutoStyle = "*auto"

// UnmarshalYAML decodes a style starting from the empty style, so omitted
// numeric directives keep their -1 sentinel instead of collapsing to zero.
func (s *Style) UnmarshalYAML(value *yaml.Node) error {
	type rawStyle Style
	raw := rawStyle(EmptyStyle())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = Style(raw)
	return nil
}

type styleFile struct {
	Styles []Style `yaml:"styles"`
}

// StyleStore serves named styles from a YAML library file. Mutation
// replaces the whole map under the write lock, so concurrent readers only
// ever see complete entries.
type StyleStore struct {
	mu     sync.RWMutex
	byName map[string]Style
}

// NewStyleStore returns an empty style store.
func NewStyleStore() *StyleStore {
	return &StyleStore{byName: make(map[string]Style)}
}

// LoadStyleFile reads a style library from disk.
func LoadStyleFile(path string) (*StyleStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style library: %w", err)
	}
	var file styleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse style library: %w", err)
	}

	store := NewStyleStore()
	for _, style := range file.Styles {
		store.Put(style)
	}
	return store, nil
}

// Get resolves a style name. The empty name and the auto style yield the
// empty style, as does an unknown name.
func (s *StyleStore) Get(name string) Style {
	if name == "" || name == AutoStyle {
		return EmptyStyle()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if style, ok := s.byName[name]; ok {
		return style
	}
	return EmptyStyle()
}

// Has reports whether the named style exists.
func (s *StyleStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return ok
}

// Put inserts or replaces a style.
func (s *StyleStore) Put(style Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[style.Name] = style
}

// List returns a snapshot of all style names.
func (s *StyleStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	return names
}
