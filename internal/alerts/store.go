package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists the full rule set as one JSON array on disk. Every
// mutation reloads the document, modifies it in memory, and rewrites the
// whole file. There is no file lock or version check, so two concurrent
// writers can lose an update.
type Store struct {
	path string
	log  *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, log: logger}
}

// Load reads the rule document. A missing file is bootstrapped as an
// empty one; an unparsable file yields an empty set for this load and is
// left on disk untouched.
func (s *Store) Load() ([]Rule, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.save(nil); err != nil {
			return nil, fmt.Errorf("create alert document: %w", err)
		}
		return []Rule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read alert document: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(b, &rules); err != nil {
		s.log.Warn("alert document unparsable, treating as empty", "path", s.path, "err", err)
		return []Rule{}, nil
	}
	return rules, nil
}

// Add assigns a fresh id, appends the rule and persists. The stored rule
// is returned so callers see the generated id.
func (s *Store) Add(rule Rule) (Rule, error) {
	rules, err := s.Load()
	if err != nil {
		return Rule{}, err
	}
	rule.ID = uuid.New()
	return rule, s.save(append(rules, rule))
}

// Update replaces any rule with the same id and persists; a rule with an
// unknown id is simply appended, so Update acts as an upsert.
func (s *Store) Update(rule Rule) error {
	rules, err := s.Load()
	if err != nil {
		return err
	}
	kept := make([]Rule, 0, len(rules)+1)
	for _, r := range rules {
		if r.ID != rule.ID {
			kept = append(kept, r)
		}
	}
	return s.save(append(kept, rule))
}

// Remove drops the rule with the given id. An unknown id is logged and the
// document is rewritten anyway.
func (s *Store) Remove(id uuid.UUID) error {
	rules, err := s.Load()
	if err != nil {
		return err
	}
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rules) {
		s.log.Warn("alert rule not found", "id", id.String())
	}
	return s.save(kept)
}

func (s *Store) save(rules []Rule) error {
	if rules == nil {
		rules = []Rule{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
