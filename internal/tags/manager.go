// Package tags implements the in-memory tag index.
//
// The forward map (file → tag set) is the source of truth; two reverse
// indices (tag type → values, full tag → files) are derived caches kept
// consistent inside the same critical section as every mutation. Each
// successful mutation persists a full snapshot before the lock is
// released; if the save fails the in-memory change is rolled back so
// memory and disk never diverge.
package tags

import (
	"sort"
	"strings"
	"sync"

	"github.com/reprintx/code-nexus/internal/nexuserr"
	"github.com/reprintx/code-nexus/internal/query"
	"github.com/reprintx/code-nexus/internal/storage"
)

// Manager owns the tag index for one project.
type Manager struct {
	mu    sync.Mutex
	store *storage.Store

	fileTags   map[string]map[string]struct{} // file -> tags
	tagTypes   map[string]map[string]struct{} // tag type -> values in use
	tagToFiles map[string]map[string]struct{} // full tag -> files
}

// Stats holds aggregate tag index counters.
type Stats struct {
	TaggedFiles int `json:"tagged_files"`
	TotalTags   int `json:"total_tags"`
	TagTypes    int `json:"tag_types"`
}

// New loads the tag snapshot from the store and builds the indices.
func New(store *storage.Store) (*Manager, error) {
	m := &Manager{
		store:      store,
		fileTags:   make(map[string]map[string]struct{}),
		tagTypes:   make(map[string]map[string]struct{}),
		tagToFiles: make(map[string]map[string]struct{}),
	}
	snap, err := store.LoadTags()
	if err != nil {
		return nil, err
	}
	for file, tagList := range snap.FileTags {
		for _, tag := range tagList {
			m.insert(file, tag)
		}
	}
	return m, nil
}

// ValidateTag checks the type:value format: exactly one colon with both
// sides non-empty.
func ValidateTag(tag string) error {
	parts := strings.Split(tag, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nexuserr.InvalidTagFormat(tag)
	}
	return nil
}

// insert adds tag to file in the forward map and both derived indices.
// Callers hold m.mu (or are still single-threaded during New).
func (m *Manager) insert(file, tag string) {
	if m.fileTags[file] == nil {
		m.fileTags[file] = make(map[string]struct{})
	}
	m.fileTags[file][tag] = struct{}{}

	if typ, val, ok := strings.Cut(tag, ":"); ok {
		if m.tagTypes[typ] == nil {
			m.tagTypes[typ] = make(map[string]struct{})
		}
		m.tagTypes[typ][val] = struct{}{}
	}

	if m.tagToFiles[tag] == nil {
		m.tagToFiles[tag] = make(map[string]struct{})
	}
	m.tagToFiles[tag][file] = struct{}{}
}

// remove deletes the file/tag pair and prunes derived-index entries the
// moment their last reference disappears. Callers hold m.mu.
func (m *Manager) remove(file, tag string) {
	if set, ok := m.fileTags[file]; ok {
		delete(set, tag)
		if len(set) == 0 {
			delete(m.fileTags, file)
		}
	}

	files, ok := m.tagToFiles[tag]
	if !ok {
		return
	}
	delete(files, file)
	if len(files) > 0 {
		return
	}
	delete(m.tagToFiles, tag)

	// Last file carrying this tag is gone; drop the value from the
	// type index too.
	if typ, val, ok := strings.Cut(tag, ":"); ok {
		if values, ok := m.tagTypes[typ]; ok {
			delete(values, val)
			if len(values) == 0 {
				delete(m.tagTypes, typ)
			}
		}
	}
}

// AddTags validates every tag, inserts the ones not already present, and
// persists. It returns only the newly added tags; already-present tags
// are skipped silently. Nothing is persisted when nothing changed.
func (m *Manager) AddTags(file string, tagList []string) ([]string, error) {
	for _, tag := range tagList {
		if err := ValidateTag(tag); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var added []string
	for _, tag := range tagList {
		if _, ok := m.fileTags[file][tag]; ok {
			continue
		}
		m.insert(file, tag)
		added = append(added, tag)
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := m.save(); err != nil {
		for _, tag := range added {
			m.remove(file, tag)
		}
		return nil, err
	}
	return added, nil
}

// RemoveTags removes the requested tags from file. The whole request is
// checked before any removal: an unknown file is FileNotFound, a tag the
// file does not carry is TagNotFound, and in both cases the index is left
// untouched.
func (m *Manager) RemoveTags(file string, tagList []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.fileTags[file]
	if !ok {
		return nil, nexuserr.FileNotFound(file)
	}
	for _, tag := range tagList {
		if _, ok := current[tag]; !ok {
			return nil, nexuserr.TagNotFound(tag, file)
		}
	}

	removed := make([]string, 0, len(tagList))
	seen := make(map[string]struct{}, len(tagList))
	for _, tag := range tagList {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		m.remove(file, tag)
		removed = append(removed, tag)
	}

	if err := m.save(); err != nil {
		for _, tag := range removed {
			m.insert(file, tag)
		}
		return nil, err
	}
	return removed, nil
}

// FileTags returns the sorted tags of file; empty for an unknown file.
func (m *Manager) FileTags(file string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.fileTags[file])
}

// AllTags returns every tag type mapped to its sorted value list.
func (m *Manager) AllTags() map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]string, len(m.tagTypes))
	for typ, values := range m.tagTypes {
		out[typ] = sortedKeys(values)
	}
	return out
}

// QueryFiles evaluates a boolean/wildcard expression against the index
// and returns the sorted matching files.
func (m *Manager) QueryFiles(expr string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches, err := query.Evaluate(expr, snapshotView{m})
	if err != nil {
		return nil, err
	}
	return sortedKeys(matches), nil
}

// Stats returns tagged file, distinct tag and tag type counts.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		TaggedFiles: len(m.fileTags),
		TotalTags:   len(m.tagToFiles),
		TagTypes:    len(m.tagTypes),
	}
}

// save persists the full snapshot. Callers hold m.mu.
func (m *Manager) save() error {
	snap := storage.TagsSnapshot{FileTags: make(map[string][]string, len(m.fileTags))}
	for file, set := range m.fileTags {
		snap.FileTags[file] = sortedKeys(set)
	}
	return m.store.SaveTags(snap)
}

// ─── Query evaluator view ────────────────────────────────────────────────────

// snapshotView exposes the index to the evaluator without re-locking;
// it is only valid while QueryFiles holds the manager lock.
type snapshotView struct {
	m *Manager
}

func (v snapshotView) FilesWithTag(tag string) map[string]struct{} {
	return v.m.tagToFiles[tag]
}

func (v snapshotView) TagStrings() []string {
	out := make([]string, 0, len(v.m.tagToFiles))
	for tag := range v.m.tagToFiles {
		out = append(out, tag)
	}
	return out
}

func (v snapshotView) Universe() map[string]struct{} {
	out := make(map[string]struct{}, len(v.m.fileTags))
	for file := range v.m.fileTags {
		out[file] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
