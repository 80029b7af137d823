// Package storage implements the JSON snapshot persistence gateway.
//
// Each logical dataset (tags, relations) is one JSON file under the
// project's data directory. Loads happen once at manager startup; every
// successful mutation writes a full replacement snapshot. Before an
// existing file is overwritten, a .bak copy is kept — best-effort, a
// backup failure is logged but never fails the save.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

const (
	tagsFile      = "tags.json"
	relationsFile = "relations.json"
)

// Relation is a directed, described edge stored under its source file.
type Relation struct {
	Target      string `json:"target"`
	Description string `json:"description"`
}

// TagsSnapshot is the serialized form of the tag dataset.
type TagsSnapshot struct {
	FileTags map[string][]string `json:"file_tags"`
}

// RelationsSnapshot is the serialized form of the relation dataset.
type RelationsSnapshot struct {
	FileRelations map[string][]Relation `json:"file_relations"`
}

// Store reads and writes dataset snapshots in a single data directory.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir. Call Initialize before use.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the directory the store writes into.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Initialize creates the data directory and default dataset files.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "creating data directory %s", s.dataDir)
	}
	if err := s.ensureFile(tagsFile, TagsSnapshot{FileTags: map[string][]string{}}); err != nil {
		return err
	}
	return s.ensureFile(relationsFile, RelationsSnapshot{FileRelations: map[string][]Relation{}})
}

func (s *Store) ensureFile(name string, defaultData any) error {
	path := filepath.Join(s.dataDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(defaultData, "", "  ")
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeSerializationError, err, "marshaling default %s", name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "creating %s", name)
	}
	return nil
}

// LoadTags reads the tag snapshot. A missing or blank file yields the
// zero snapshot; a parse failure is a SerializationError.
func (s *Store) LoadTags() (TagsSnapshot, error) {
	snap := TagsSnapshot{FileTags: map[string][]string{}}
	err := s.loadJSON(tagsFile, &snap)
	if snap.FileTags == nil {
		snap.FileTags = map[string][]string{}
	}
	return snap, err
}

// SaveTags writes a full replacement of the tag dataset.
func (s *Store) SaveTags(snap TagsSnapshot) error {
	return s.saveJSON(tagsFile, snap)
}

// LoadRelations reads the relation snapshot with the same defaulting
// rules as LoadTags.
func (s *Store) LoadRelations() (RelationsSnapshot, error) {
	snap := RelationsSnapshot{FileRelations: map[string][]Relation{}}
	err := s.loadJSON(relationsFile, &snap)
	if snap.FileRelations == nil {
		snap.FileRelations = map[string][]Relation{}
	}
	return snap, err
}

// SaveRelations writes a full replacement of the relation dataset.
func (s *Store) SaveRelations(snap RelationsSnapshot) error {
	return s.saveJSON(relationsFile, snap)
}

func (s *Store) loadJSON(name string, out any) error {
	path := filepath.Join(s.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "reading %s", name)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nexuserr.Wrap(nexuserr.CodeSerializationError, err, "parsing %s", name)
	}
	return nil
}

func (s *Store) saveJSON(name string, data any) error {
	path := filepath.Join(s.dataDir, name)

	// Backup the previous snapshot before overwriting.
	if _, err := os.Stat(path); err == nil {
		backup := path + ".bak"
		if err := copyFile(path, backup); err != nil {
			slog.Warn("snapshot backup failed", "file", name, "error", err)
		}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeSerializationError, err, "marshaling %s", name)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "writing %s", name)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
