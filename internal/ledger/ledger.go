// Package ledger tracks which message identifiers have already produced a
// lead record. The set is loaded once at startup, mutated in memory during a
// run, and persisted once at the end; the CSV log, not this file, is the
// durable record of what was emitted.
package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Set is the in-memory collection of processed message identifiers.
type Set struct {
	ids map[string]struct{}
}

// NewSet builds an empty set.
func NewSet() *Set {
	return &Set{ids: map[string]struct{}{}}
}

// Contains reports whether id was already processed.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add marks id as processed.
func (s *Set) Add(id string) {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	s.ids[id] = struct{}{}
}

// Len returns the number of tracked identifiers.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the identifiers sorted for a stable on-disk layout.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Store reads and writes the ledger file as a flat YAML list of identifiers
// with whole-file overwrite semantics.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore binds a ledger file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the ledger. A missing or unparsable file yields an empty set;
// corruption is logged and swallowed, never fatal.
func (st *Store) Load() *Set {
	set := NewSet()

	raw, err := os.ReadFile(st.path)
	if err != nil {
		if !os.IsNotExist(err) && st.logger != nil {
			st.logger.Warn("ledger unreadable, starting empty", "path", st.path, "error", err)
		}
		return set
	}

	var ids []string
	if err := yaml.Unmarshal(raw, &ids); err != nil {
		if st.logger != nil {
			st.logger.Warn("ledger corrupt, starting empty", "path", st.path, "error", err)
		}
		return set
	}

	for _, id := range ids {
		if id != "" {
			set.Add(id)
		}
	}
	return set
}

// Save overwrites the ledger with the full set, via a temp file and rename so
// a crash never leaves a half-written ledger behind.
func (st *Store) Save(set *Set) error {
	raw, err := yaml.Marshal(set.IDs())
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), st.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
