package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/reprintx/code-nexus/internal/comments"
	"github.com/reprintx/code-nexus/internal/relations"
	"github.com/reprintx/code-nexus/internal/storage"
	"github.com/reprintx/code-nexus/internal/tags"
)

// Project bundles the managers for one project root.
type Project struct {
	Root      string
	Tags      *tags.Manager
	Relations *relations.Manager
	Comments  *comments.Store
}

// FileInfo is the composite metadata view of one file.
type FileInfo struct {
	Path              string               `json:"path"`
	Tags              []string             `json:"tags"`
	Comment           *string              `json:"comment,omitempty"`
	Relations         []relations.Relation `json:"relations"`
	IncomingRelations []relations.Relation `json:"incoming_relations"`
}

// TagStats is the tag portion of the system status.
type TagStats struct {
	TagTypes   map[string][]string `json:"tag_types"`
	TotalFiles int                 `json:"total_files"`
	TotalTags  int                 `json:"total_tags"`
}

// Status is the aggregate view over all three metadata stores.
type Status struct {
	TotalFiles     int      `json:"total_files"`
	TaggedFiles    int      `json:"tagged_files"`
	CommentedFiles int      `json:"commented_files"`
	TotalRelations int      `json:"total_relations"`
	TagStats       TagStats `json:"tag_stats"`
}

// CleanupResult reports how many stale entries a cleanup pass removed.
type CleanupResult struct {
	RemovedRelations int `json:"removed_relations"`
	RemovedComments  int `json:"removed_comments"`
}

// Open initializes the data directory under root and loads all managers.
func Open(root, dataDirName string) (*Project, error) {
	store := storage.New(filepath.Join(root, dataDirName))
	if err := store.Initialize(); err != nil {
		return nil, err
	}

	tagMgr, err := tags.New(store)
	if err != nil {
		return nil, err
	}
	relMgr, err := relations.New(store)
	if err != nil {
		return nil, err
	}
	commentStore, err := comments.Open(store.DataDir())
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:      root,
		Tags:      tagMgr,
		Relations: relMgr,
		Comments:  commentStore,
	}, nil
}

// Close releases the comment database handle.
func (p *Project) Close() error {
	return p.Comments.Close()
}

// FileExists reports whether the normalized relative path still names a
// regular file under the project root. It is the filesystem collaborator
// behind cleanup passes.
func (p *Project) FileExists(relPath string) bool {
	info, err := os.Stat(filepath.Join(p.Root, filepath.FromSlash(relPath)))
	return err == nil && !info.IsDir()
}

// FileInfo assembles tags, comment and both relation directions for one
// normalized relative path.
func (p *Project) FileInfo(relPath string) (FileInfo, error) {
	info := FileInfo{
		Path:              relPath,
		Tags:              p.Tags.FileTags(relPath),
		Relations:         p.Relations.Outgoing(relPath),
		IncomingRelations: p.Relations.Incoming(relPath),
	}
	if comment, ok, err := p.Comments.Get(relPath); err != nil {
		return FileInfo{}, err
	} else if ok {
		info.Comment = &comment
	}
	return info, nil
}

// Status aggregates the three stores' statistics. Cross-manager reads
// are not atomic with respect to concurrent writers; the counts are
// advisory.
func (p *Project) Status() (Status, error) {
	tagStats := p.Tags.Stats()
	relStats := p.Relations.Stats()
	commentStats, err := p.Comments.Stats()
	if err != nil {
		return Status{}, err
	}

	total := tagStats.TaggedFiles
	if commentStats.CommentedFiles > total {
		total = commentStats.CommentedFiles
	}
	if relStats.SourceFiles > total {
		total = relStats.SourceFiles
	}

	return Status{
		TotalFiles:     total,
		TaggedFiles:    tagStats.TaggedFiles,
		CommentedFiles: commentStats.CommentedFiles,
		TotalRelations: relStats.TotalRelations,
		TagStats: TagStats{
			TagTypes:   p.Tags.AllTags(),
			TotalFiles: tagStats.TaggedFiles,
			TotalTags:  tagStats.TotalTags,
		},
	}, nil
}

// Search unions comment and relation-description keyword hits and
// returns the full info of every matching file, sorted by path.
func (p *Project) Search(keyword string) ([]FileInfo, error) {
	hits := make(map[string]struct{})

	commentHits, err := p.Comments.Search(keyword)
	if err != nil {
		return nil, err
	}
	for _, c := range commentHits {
		hits[c.Path] = struct{}{}
	}
	for _, m := range p.Relations.QueryByDescription(keyword) {
		hits[m.Source] = struct{}{}
	}

	paths := make([]string, 0, len(hits))
	for path := range hits {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	results := make([]FileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := p.FileInfo(path)
		if err != nil {
			return nil, err
		}
		results = append(results, info)
	}
	return results, nil
}

// Cleanup removes relations and comments referencing files that no
// longer exist on disk.
func (p *Project) Cleanup() (CleanupResult, error) {
	removedRels, err := p.Relations.CleanupInvalid(p.FileExists)
	if err != nil {
		return CleanupResult{}, err
	}
	removedComments, err := p.Comments.CleanupInvalid(p.FileExists)
	if err != nil {
		return CleanupResult{RemovedRelations: removedRels}, err
	}
	return CleanupResult{RemovedRelations: removedRels, RemovedComments: removedComments}, nil
}
