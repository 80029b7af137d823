// Package relations implements the directed relation graph.
//
// Forward edges (file → outgoing relations) are the source of truth; the
// reverse index (target → incoming) is a derived cache updated inside the
// same critical section. Identity of an edge is the ordered (source,
// target) pair — one edge per pair, re-adding with a different
// description is rejected rather than merged. Self-loops are permitted:
// the metadata is advisory and a file may legitimately reference itself.
package relations

import (
	"sort"
	"strings"
	"sync"

	"github.com/reprintx/code-nexus/internal/nexuserr"
	"github.com/reprintx/code-nexus/internal/storage"
)

// Relation is a directed edge to Target with a description. For incoming
// queries Target holds the peer (source) file instead.
type Relation struct {
	Target      string `json:"target"`
	Description string `json:"description"`
}

// DescriptionMatch pairs a source file with one of its relations for
// keyword search results.
type DescriptionMatch struct {
	Source   string   `json:"source"`
	Relation Relation `json:"relation"`
}

// Stats holds aggregate relation graph counters.
type Stats struct {
	SourceFiles    int `json:"source_files"`
	TotalRelations int `json:"total_relations"`
	TargetFiles    int `json:"target_files"`
}

// Manager owns the relation graph for one project.
type Manager struct {
	mu    sync.Mutex
	store *storage.Store

	forward map[string][]Relation // source -> outgoing edges
	reverse map[string][]Relation // target -> (source, description) pairs
}

// New loads the relation snapshot from the store and builds the reverse
// index.
func New(store *storage.Store) (*Manager, error) {
	m := &Manager{
		store:   store,
		forward: make(map[string][]Relation),
	}
	snap, err := store.LoadRelations()
	if err != nil {
		return nil, err
	}
	for source, rels := range snap.FileRelations {
		for _, r := range rels {
			m.forward[source] = append(m.forward[source], Relation{Target: r.Target, Description: r.Description})
		}
	}
	m.rebuildReverse()
	return m, nil
}

// rebuildReverse derives the reverse index from scratch. Callers hold
// m.mu (or are still single-threaded during New).
func (m *Manager) rebuildReverse() {
	m.reverse = make(map[string][]Relation)
	for source, rels := range m.forward {
		for _, r := range rels {
			m.reverse[r.Target] = append(m.reverse[r.Target], Relation{Target: source, Description: r.Description})
		}
	}
}

// Add appends a (source, target, description) edge. The description must
// be non-empty and the ordered pair must not already exist.
func (m *Manager) Add(source, target, description string) error {
	if strings.TrimSpace(description) == "" {
		return nexuserr.New(nexuserr.CodeConfigError, "relation description must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.forward[source] {
		if r.Target == target {
			return nexuserr.RelationAlreadyExists(source, target)
		}
	}

	m.forward[source] = append(m.forward[source], Relation{Target: target, Description: description})
	m.reverse[target] = append(m.reverse[target], Relation{Target: source, Description: description})

	if err := m.save(); err != nil {
		m.dropEdge(source, target)
		return err
	}
	return nil
}

// Remove deletes the edge with the exact (source, target) pair.
func (m *Manager) Remove(source, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rels, ok := m.forward[source]
	if !ok {
		return nexuserr.RelationNotFound(source, target)
	}
	idx := -1
	for i, r := range rels {
		if r.Target == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nexuserr.RelationNotFound(source, target)
	}

	removed := rels[idx]
	m.dropEdge(source, target)

	if err := m.save(); err != nil {
		m.forward[source] = append(m.forward[source], removed)
		m.reverse[target] = append(m.reverse[target], Relation{Target: source, Description: removed.Description})
		return err
	}
	return nil
}

// dropEdge removes (source, target) from both indices and prunes empty
// entries. Callers hold m.mu.
func (m *Manager) dropEdge(source, target string) {
	kept := m.forward[source][:0]
	for _, r := range m.forward[source] {
		if r.Target != target {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(m.forward, source)
	} else {
		m.forward[source] = kept
	}

	keptIn := m.reverse[target][:0]
	for _, r := range m.reverse[target] {
		if r.Target != source {
			keptIn = append(keptIn, r)
		}
	}
	if len(keptIn) == 0 {
		delete(m.reverse, target)
	} else {
		m.reverse[target] = keptIn
	}
}

// Outgoing returns the outgoing relations of file; empty for unknown
// files.
func (m *Manager) Outgoing(file string) []Relation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Relation(nil), m.forward[file]...)
}

// Incoming returns the (source, description) pairs pointing at file.
func (m *Manager) Incoming(file string) []Relation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Relation(nil), m.reverse[file]...)
}

// Has reports whether a (source, target) edge exists.
func (m *Manager) Has(source, target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.forward[source] {
		if r.Target == target {
			return true
		}
	}
	return false
}

// QueryByDescription returns every edge whose description contains
// keyword (case-insensitive), sorted by source path.
func (m *Manager) QueryByDescription(keyword string) []DescriptionMatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(keyword)
	var matches []DescriptionMatch
	for source, rels := range m.forward {
		for _, r := range rels {
			if strings.Contains(strings.ToLower(r.Description), needle) {
				matches = append(matches, DescriptionMatch{Source: source, Relation: r})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Source < matches[j].Source })
	return matches
}

// RelatedFiles returns the sorted list of files with outgoing relations.
func (m *Manager) RelatedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := make([]string, 0, len(m.forward))
	for f := range m.forward {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Graph returns the depth-limited forward traversal starting at file:
// each expanded node mapped to its relations toward not-yet-visited
// files. The visited set terminates cycles — an edge back to a visited
// node (including the start node) is neither recorded nor re-expanded.
// maxDepth bounds recursion depth (depth 0 is the start file), not edge
// count.
func (m *Manager) Graph(file string, maxDepth int) map[string][]Relation {
	m.mu.Lock()
	defer m.mu.Unlock()

	graph := make(map[string][]Relation)
	visited := make(map[string]struct{})
	m.walk(file, maxDepth, 0, graph, visited)
	return graph
}

func (m *Manager) walk(file string, maxDepth, depth int, graph map[string][]Relation, visited map[string]struct{}) {
	if depth >= maxDepth {
		return
	}
	if _, seen := visited[file]; seen {
		return
	}
	visited[file] = struct{}{}

	for _, r := range m.forward[file] {
		if _, seen := visited[r.Target]; seen {
			continue
		}
		graph[file] = append(graph[file], r)
		m.walk(r.Target, maxDepth, depth+1, graph, visited)
	}
}

// CleanupInvalid removes edges whose endpoints no longer exist according
// to exists: a missing source drops all its outgoing edges, a missing
// target is pruned individually. The reverse index is rebuilt afterward
// and the snapshot is persisted only when something changed. Returns the
// number of removed edges.
func (m *Manager) CleanupInvalid(exists func(relPath string) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.forward
	next := make(map[string][]Relation, len(before))
	removed := 0

	for source, rels := range before {
		if !exists(source) {
			removed += len(rels)
			continue
		}
		var valid []Relation
		for _, r := range rels {
			if exists(r.Target) {
				valid = append(valid, r)
			} else {
				removed++
			}
		}
		if len(valid) > 0 {
			next[source] = valid
		}
	}

	if removed == 0 {
		return 0, nil
	}

	m.forward = next
	m.rebuildReverse()

	if err := m.save(); err != nil {
		m.forward = before
		m.rebuildReverse()
		return 0, err
	}
	return removed, nil
}

// Stats returns source file, total edge and target file counts.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, rels := range m.forward {
		total += len(rels)
	}
	return Stats{
		SourceFiles:    len(m.forward),
		TotalRelations: total,
		TargetFiles:    len(m.reverse),
	}
}

// save persists the full snapshot. Callers hold m.mu.
func (m *Manager) save() error {
	snap := storage.RelationsSnapshot{FileRelations: make(map[string][]storage.Relation, len(m.forward))}
	for source, rels := range m.forward {
		out := make([]storage.Relation, len(rels))
		for i, r := range rels {
			out[i] = storage.Relation{Target: r.Target, Description: r.Description}
		}
		snap.FileRelations[source] = out
	}
	return m.store.SaveRelations(snap)
}
