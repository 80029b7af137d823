package relations

import (
	"errors"
	"testing"

	"github.com/reprintx/code-nexus/internal/nexuserr"
	"github.com/reprintx/code-nexus/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store := storage.New(t.TempDir())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initializing store: %v", err)
	}
	m, err := New(store)
	if err != nil {
		t.Fatalf("creating manager: %v", err)
	}
	return m
}

func wantCode(t *testing.T, err error, code nexuserr.Code) {
	t.Helper()
	var e *nexuserr.Error
	if !errors.As(err, &e) || e.Code != code {
		t.Fatalf("got %v, want code %s", err, code)
	}
}

func mustAdd(t *testing.T, m *Manager, source, target, description string) {
	t.Helper()
	if err := m.Add(source, target, description); err != nil {
		t.Fatalf("Add(%s -> %s): %v", source, target, err)
	}
}

// ─── Add / Remove ────────────────────────────────────────────────────────────

func TestAddAndOutgoing(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "calls the parser")

	out := m.Outgoing("a.go")
	if len(out) != 1 || out[0].Target != "b.go" || out[0].Description != "calls the parser" {
		t.Errorf("Outgoing = %v", out)
	}
	if !m.Has("a.go", "b.go") {
		t.Error("Has should report the edge")
	}
}

func TestAddDuplicatePair(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "calls")

	err := m.Add("a.go", "b.go", "a different description")
	wantCode(t, err, nexuserr.CodeRelationAlreadyExists)

	// The original description must be untouched.
	if out := m.Outgoing("a.go"); out[0].Description != "calls" {
		t.Errorf("description = %q, want original", out[0].Description)
	}
}

func TestAddEmptyDescription(t *testing.T) {
	m := newTestManager(t)
	wantCode(t, m.Add("a.go", "b.go", "   "), nexuserr.CodeConfigError)
}

func TestAddSelfLoop(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "a.go", "recursive include")
	if !m.Has("a.go", "a.go") {
		t.Error("self-loop should be permitted")
	}
}

func TestOppositeDirectionIsDistinct(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "calls")
	mustAdd(t, m, "b.go", "a.go", "notifies")

	if len(m.Outgoing("a.go")) != 1 || len(m.Outgoing("b.go")) != 1 {
		t.Error("each direction should hold its own edge")
	}
}

func TestRemove(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "calls")

	if err := m.Remove("a.go", "b.go"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Has("a.go", "b.go") {
		t.Error("edge should be gone")
	}
	if got := m.Incoming("b.go"); len(got) != 0 {
		t.Errorf("Incoming after remove = %v", got)
	}

	// Removing again reports not found.
	wantCode(t, m.Remove("a.go", "b.go"), nexuserr.CodeRelationNotFound)
}

func TestRemoveThenReAdd(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "old")
	if err := m.Remove("a.go", "b.go"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	mustAdd(t, m, "a.go", "b.go", "new")

	if out := m.Outgoing("a.go"); len(out) != 1 || out[0].Description != "new" {
		t.Errorf("Outgoing = %v", out)
	}
}

// ─── Incoming (reverse index) ────────────────────────────────────────────────

func TestIncoming(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "shared.go", "imports helpers")
	mustAdd(t, m, "b.go", "shared.go", "imports types")

	in := m.Incoming("shared.go")
	if len(in) != 2 {
		t.Fatalf("Incoming = %v, want 2 entries", in)
	}
	sources := map[string]string{}
	for _, r := range in {
		sources[r.Target] = r.Description
	}
	if sources["a.go"] != "imports helpers" || sources["b.go"] != "imports types" {
		t.Errorf("incoming sources = %v", sources)
	}
}

// ─── QueryByDescription ──────────────────────────────────────────────────────

func TestQueryByDescription(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "b.go", "c.go", "Calls the user SERVICE")
	mustAdd(t, m, "a.go", "b.go", "calls the parser")
	mustAdd(t, m, "c.go", "d.go", "imports types")

	matches := m.QueryByDescription("calls")
	if len(matches) != 2 {
		t.Fatalf("matches = %v, want 2", matches)
	}
	// Sorted by source.
	if matches[0].Source != "a.go" || matches[1].Source != "b.go" {
		t.Errorf("order = %s, %s", matches[0].Source, matches[1].Source)
	}

	if got := m.QueryByDescription("SERVICE"); len(got) != 1 || got[0].Source != "b.go" {
		t.Errorf("case-insensitive match = %v", got)
	}
	if got := m.QueryByDescription("nothing"); len(got) != 0 {
		t.Errorf("no-match = %v", got)
	}
}

// ─── Graph traversal ─────────────────────────────────────────────────────────

func TestGraphDepthLimit(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "1")
	mustAdd(t, m, "b.go", "c.go", "2")
	mustAdd(t, m, "c.go", "d.go", "3")

	graph := m.Graph("a.go", 2)
	if len(graph["a.go"]) != 1 || len(graph["b.go"]) != 1 {
		t.Errorf("graph = %v", graph)
	}
	if _, ok := graph["c.go"]; ok {
		t.Error("c.go is beyond max depth and must not be expanded")
	}
}

func TestGraphCycle(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "1")
	mustAdd(t, m, "b.go", "c.go", "2")
	mustAdd(t, m, "c.go", "a.go", "3")

	graph := m.Graph("a.go", 5)
	if len(graph) != 2 {
		t.Fatalf("graph = %v, want exactly a.go and b.go entries", graph)
	}
	if len(graph["a.go"]) != 1 || graph["a.go"][0].Target != "b.go" {
		t.Errorf("a.go edges = %v", graph["a.go"])
	}
	if len(graph["b.go"]) != 1 || graph["b.go"][0].Target != "c.go" {
		t.Errorf("b.go edges = %v", graph["b.go"])
	}
}

func TestGraphUnknownRoot(t *testing.T) {
	m := newTestManager(t)
	if graph := m.Graph("nope.go", 3); len(graph) != 0 {
		t.Errorf("graph = %v, want empty", graph)
	}
}

func TestGraphBranching(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "left")
	mustAdd(t, m, "a.go", "c.go", "right")
	mustAdd(t, m, "b.go", "d.go", "down")

	graph := m.Graph("a.go", 3)
	if len(graph["a.go"]) != 2 {
		t.Errorf("a.go edges = %v", graph["a.go"])
	}
	if len(graph["b.go"]) != 1 {
		t.Errorf("b.go edges = %v", graph["b.go"])
	}
}

// ─── CleanupInvalid ──────────────────────────────────────────────────────────

func TestCleanupInvalid(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "gone.go", "dangling target")
	mustAdd(t, m, "gone2.go", "a.go", "dangling source")
	mustAdd(t, m, "a.go", "b.go", "valid")

	alive := map[string]bool{"a.go": true, "b.go": true}
	removed, err := m.CleanupInvalid(func(p string) bool { return alive[p] })
	if err != nil {
		t.Fatalf("CleanupInvalid: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if !m.Has("a.go", "b.go") {
		t.Error("valid edge must survive")
	}
	if m.Has("a.go", "gone.go") || m.Has("gone2.go", "a.go") {
		t.Error("stale edges must be gone")
	}
	if got := m.Incoming("a.go"); len(got) != 0 {
		t.Errorf("reverse index not rebuilt: %v", got)
	}
}

func TestCleanupInvalidNoChanges(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "valid")

	removed, err := m.CleanupInvalid(func(string) bool { return true })
	if err != nil {
		t.Fatalf("CleanupInvalid: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

// ─── Stats / persistence ─────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "a.go", "b.go", "1")
	mustAdd(t, m, "a.go", "c.go", "2")
	mustAdd(t, m, "b.go", "c.go", "3")

	stats := m.Stats()
	if stats.SourceFiles != 2 || stats.TotalRelations != 3 || stats.TargetFiles != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRelationsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	store := storage.New(dir)
	if err := store.Initialize(); err != nil {
		t.Fatalf("initializing store: %v", err)
	}
	m1, err := New(store)
	if err != nil {
		t.Fatalf("creating manager: %v", err)
	}
	mustAdd(t, m1, "a.go", "b.go", "calls")

	m2, err := New(storage.New(dir))
	if err != nil {
		t.Fatalf("reloading manager: %v", err)
	}
	if !m2.Has("a.go", "b.go") {
		t.Error("edge should survive reload")
	}
	if in := m2.Incoming("b.go"); len(in) != 1 || in[0].Target != "a.go" {
		t.Errorf("reverse index after reload = %v", in)
	}
}
