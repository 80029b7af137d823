package comments

import (
	"errors"
	"testing"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func wantCode(t *testing.T, err error, code nexuserr.Code) {
	t.Helper()
	var e *nexuserr.Error
	if !errors.As(err, &e) || e.Code != code {
		t.Fatalf("got %v, want code %s", err, code)
	}
}

func mustGet(t *testing.T, s *Store, path string) string {
	t.Helper()
	comment, ok, err := s.Get(path)
	if err != nil {
		t.Fatalf("Get(%s): %v", path, err)
	}
	if !ok {
		t.Fatalf("Get(%s): no comment", path)
	}
	return comment
}

// ─── Add / Update / Get / Delete ─────────────────────────────────────────────

func TestAddAndGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("src/api.go", "handles HTTP routing"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := mustGet(t, s, "src/api.go"); got != "handles HTTP routing" {
		t.Errorf("comment = %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get("nope.go")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("missing comment reported as present")
	}
}

func TestAddRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	wantCode(t, s.Add("a.go", "   "), nexuserr.CodeConfigError)
}

func TestAddRejectsOverwrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("a.go", "first"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	wantCode(t, s.Add("a.go", "second"), nexuserr.CodeConfigError)
	if got := mustGet(t, s, "a.go"); got != "first" {
		t.Errorf("comment = %q, want original preserved", got)
	}
}

func TestUpdateUpserts(t *testing.T) {
	s := newTestStore(t)

	// Update creates when absent.
	if err := s.Update("a.go", "created"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := mustGet(t, s, "a.go"); got != "created" {
		t.Errorf("comment = %q", got)
	}

	// And replaces when present.
	if err := s.Update("a.go", "replaced"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := mustGet(t, s, "a.go"); got != "replaced" {
		t.Errorf("comment = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("a.go", "note"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Delete("a.go"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("a.go"); ok {
		t.Error("comment still present after delete")
	}
	wantCode(t, s.Delete("a.go"), nexuserr.CodeFileNotFound)
}

// ─── Search ──────────────────────────────────────────────────────────────────

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("b.go", "Parses the CONFIG file"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("a.go", "loads config values"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("c.go", "unrelated"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := s.Search("config")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Path != "a.go" || got[1].Path != "b.go" {
		t.Errorf("Search = %v, want a.go then b.go", got)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("a.go", "covers 100% of cases"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("b.go", "covers 100 of cases"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := s.Search("100%")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Path != "a.go" {
		t.Errorf("Search(%%) = %v, want only the literal match", got)
	}
}

// ─── Stats / CleanupInvalid ──────────────────────────────────────────────────

func TestStats(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("a.go", "12345"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("b.go", "123"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.CommentedFiles != 2 || st.TotalChars != 8 {
		t.Errorf("stats = %+v", st)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.CommentedFiles != 0 || st.TotalChars != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCleanupInvalid(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add("alive.go", "keep"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("gone.go", "drop"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	removed, err := s.CleanupInvalid(func(p string) bool { return p == "alive.go" })
	if err != nil {
		t.Fatalf("CleanupInvalid: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok, _ := s.Get("gone.go"); ok {
		t.Error("stale comment survived cleanup")
	}
	if _, ok, _ := s.Get("alive.go"); !ok {
		t.Error("valid comment removed by cleanup")
	}
}

func TestCommentedFilesSorted(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"c.go", "a.go", "b.go"} {
		if err := s.Add(p, "note"); err != nil {
			t.Fatalf("Add(%s): %v", p, err)
		}
	}
	files, err := s.CommentedFiles()
	if err != nil {
		t.Fatalf("CommentedFiles: %v", err)
	}
	if len(files) != 3 || files[0] != "a.go" || files[2] != "c.go" {
		t.Errorf("files = %v", files)
	}
}
