// Package comments implements the per-file comment store.
//
// Comments are free-text notes keyed by normalized relative path, held in
// a SQLite database inside the project data directory. Unlike the tag and
// relation datasets they are not part of the JSON snapshot gateway: the
// database is the durable form and every operation goes straight through.
package comments

import (
	"database/sql"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Comment pairs a file path with its note for search results.
type Comment struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Stats holds aggregate comment store counters.
type Stats struct {
	CommentedFiles int `json:"commented_files"`
	TotalChars     int `json:"total_chars"`
}

// Store is the SQLite-backed comment store for one project.
type Store struct {
	db *sql.DB
}

// Open creates or opens the comment database under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "comments.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "opening comment database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "pragma %q", p)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "comment store migration")
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS file_comments (
			path       TEXT PRIMARY KEY,
			comment    TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

// Add stores a comment for a file that has none yet; updating an
// existing comment must go through Update.
func (s *Store) Add(path, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return nexuserr.New(nexuserr.CodeConfigError, "comment must not be empty")
	}
	if _, ok, err := s.lookup(path); err != nil {
		return err
	} else if ok {
		return nexuserr.New(nexuserr.CodeConfigError, "file %s already has a comment, use update_file_comment", path)
	}

	_, err := s.db.Exec(`INSERT INTO file_comments (path, comment) VALUES (?, ?)`, path, comment)
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "adding comment for %s", path)
	}
	return nil
}

// Update replaces the comment for path, creating it when absent.
func (s *Store) Update(path, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return nexuserr.New(nexuserr.CodeConfigError, "comment must not be empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO file_comments (path, comment) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET comment = excluded.comment, updated_at = datetime('now')
	`, path, comment)
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "updating comment for %s", path)
	}
	return nil
}

// Get returns the comment for path and whether one exists.
func (s *Store) Get(path string) (string, bool, error) {
	return s.lookup(path)
}

func (s *Store) lookup(path string) (string, bool, error) {
	var comment string
	err := s.db.QueryRow(`SELECT comment FROM file_comments WHERE path = ?`, path).Scan(&comment)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, nexuserr.Wrap(nexuserr.CodeStorageError, err, "reading comment for %s", path)
	}
	return comment, true, nil
}

// Delete removes the comment for path; missing comments are an error so
// the caller learns the delete was a no-op.
func (s *Store) Delete(path string) error {
	res, err := s.db.Exec(`DELETE FROM file_comments WHERE path = ?`, path)
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "deleting comment for %s", path)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nexuserr.Wrap(nexuserr.CodeStorageError, err, "deleting comment for %s", path)
	}
	if n == 0 {
		return nexuserr.New(nexuserr.CodeFileNotFound, "file %s has no comment", path)
	}
	return nil
}

// Search returns comments containing keyword (case-insensitive
// substring), sorted by path.
func (s *Store) Search(keyword string) ([]Comment, error) {
	escaped := escapeLike(keyword)
	rows, err := s.db.Query(`
		SELECT path, comment FROM file_comments
		WHERE LOWER(comment) LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY path
	`, strings.ToLower(escaped))
	if err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "searching comments for %q", keyword)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.Path, &c.Text); err != nil {
			return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "scanning comment row")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "searching comments for %q", keyword)
	}
	return out, nil
}

// escapeLike escapes the LIKE wildcards so a keyword matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// CommentedFiles returns the sorted list of files carrying a comment.
func (s *Store) CommentedFiles() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM file_comments`)
	if err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "listing commented files")
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "scanning path row")
		}
		files = append(files, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nexuserr.Wrap(nexuserr.CodeStorageError, err, "listing commented files")
	}
	sort.Strings(files)
	return files, nil
}

// Stats returns comment count and total comment length.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(comment)), 0) FROM file_comments`,
	).Scan(&st.CommentedFiles, &st.TotalChars)
	if err != nil {
		return Stats{}, nexuserr.Wrap(nexuserr.CodeStorageError, err, "reading comment stats")
	}
	return st, nil
}

// CleanupInvalid deletes comments whose file no longer exists according
// to exists. Returns the number of removed comments.
func (s *Store) CleanupInvalid(exists func(relPath string) bool) (int, error) {
	files, err := s.CommentedFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if exists(f) {
			continue
		}
		if _, err := s.db.Exec(`DELETE FROM file_comments WHERE path = ?`, f); err != nil {
			return removed, nexuserr.Wrap(nexuserr.CodeStorageError, err, "removing stale comment for %s", f)
		}
		removed++
	}
	return removed, nil
}
