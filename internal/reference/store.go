package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// Store is an immutable, title-indexed view of the reference dataset.
type Store struct {
	byTitle map[string][]models.ReferenceEntry
	entries []models.ReferenceEntry
}

// NewStore indexes entries. The slice is copied.
func NewStore(entries []models.ReferenceEntry) *Store {
	s := &Store{
		byTitle: make(map[string][]models.ReferenceEntry),
		entries: slices.Clone(entries),
	}
	for _, e := range s.entries {
		title := shared.Normalize(e.Name)
		s.byTitle[title] = append(s.byTitle[title], e)
	}
	return s
}

// Load reads a JSON array of entries from path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(nil), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read reference dataset: %w", err)
	}

	var entries []models.ReferenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: reference dataset %s: %v", shared.ErrInvalidConfig, path, err)
	}
	return NewStore(entries), nil
}

// Save writes entries to path as an indented JSON array.
func Save(path string, entries []models.ReferenceEntry) error {
	if entries == nil {
		entries = []models.ReferenceEntry{}
	}
	data, err := shared.MarshalJSON(entries, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write reference dataset: %w", err)
	}
	return nil
}

// Lookup returns the entries whose normalized title equals the normalized title given.
func (s *Store) Lookup(title string) []models.ReferenceEntry {
	return slices.Clone(s.byTitle[shared.Normalize(title)])
}

// Entries returns every entry in dataset order.
func (s *Store) Entries() []models.ReferenceEntry {
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Titles returns the number of distinct normalized titles.
func (s *Store) Titles() int {
	return len(s.byTitle)
}
