// Package registry persists the installed-item registry of a game directory.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
)

// FileName is the registry document name at the game directory root.
const FileName = "installed_mods.json"

// record is the on-disk shape of one entry.
type record struct {
	ModName  string `json:"mod_name"`
	FileName string `json:"file_name"`
	FileID   *int   `json:"file_id"`
	FileDate string `json:"file_date"`
	ClassID  int    `json:"class_id"`
}

// Store is the registry of one game directory. Every mutation is saved immediately.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[int]domain.RegistryEntry
}

// Path returns the registry document path for a game directory.
func Path(gameDir string) string {
	return filepath.Join(gameDir, FileName)
}

// Load reads the registry for gameDir. A missing or unreadable document yields an empty registry.
func Load(gameDir string) *Store {
	s := &Store{
		path:    Path(gameDir),
		entries: make(map[int]domain.RegistryEntry),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("registry unreadable, starting empty")
		}
		return s
	}

	var doc map[string]record
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("registry corrupt, starting empty")
		return s
	}

	for key, r := range doc {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("key", key).Msg("dropping registry entry with non-numeric id")
			continue
		}
		s.entries[id] = domain.RegistryEntry{
			ContentID: id,
			Name:      r.ModName,
			FileName:  r.FileName,
			FileID:    r.FileID,
			FileDate:  r.FileDate,
			ClassID:   r.ClassID,
		}
	}
	return s
}

// Path returns the document path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Save writes the registry document, creating parent directories.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	doc := make(map[string]record, len(s.entries))
	for id, e := range s.entries {
		doc[strconv.Itoa(id)] = record{
			ModName:  e.Name,
			FileName: e.FileName,
			FileID:   e.FileID,
			FileDate: e.FileDate,
			ClassID:  e.ClassID,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// Add inserts or replaces the entry for e.ContentID and saves.
func (s *Store) Add(e domain.RegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.ContentID] = e
	return s.saveLocked()
}

// Remove deletes the entry for id and saves. Removing an absent id is a no-op.
func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return nil
	}
	delete(s.entries, id)
	return s.saveLocked()
}

// Get returns the entry for id.
func (s *Store) Get(id int) (domain.RegistryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	return e, ok
}

// All returns a copy of every entry keyed by content ID.
func (s *Store) All() map[int]domain.RegistryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]domain.RegistryEntry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Entries returns every entry ordered by content ID.
func (s *Store) Entries() []domain.RegistryEntry {
	all := s.All()
	out := make([]domain.RegistryEntry, 0, len(all))
	for _, e := range all {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FindByFileName returns the entry whose FileName equals name exactly.
// If several entries claim the name, the lowest content ID wins.
func (s *Store) FindByFileName(name string) (domain.RegistryEntry, bool) {
	for _, e := range s.Entries() {
		if e.FileName == name {
			return e, true
		}
	}
	return domain.RegistryEntry{}, false
}

// FindByRelativePath returns the entry whose artifact lives at relPath, a
// slash-separated path relative to the game directory.
func (s *Store) FindByRelativePath(relPath string) (domain.RegistryEntry, bool) {
	want := path.Clean(filepath.ToSlash(relPath))
	for _, e := range s.Entries() {
		if e.RelativePath() == want {
			return e, true
		}
	}
	return domain.RegistryEntry{}, false
}
