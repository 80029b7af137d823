package project

import (
	"log/slog"
	"sync"
)

// Registry lazily constructs and caches one Project per normalized
// project root. The check-then-insert sequence runs under one continuous
// hold of the registry lock, so concurrent first access to the same new
// path constructs exactly one Project.
type Registry struct {
	mu          sync.Mutex
	dataDirName string
	projects    map[string]*Project
}

// NewRegistry creates an empty registry. dataDirName is the per-project
// metadata directory (normally ".codenexus").
func NewRegistry(dataDirName string) *Registry {
	return &Registry{
		dataDirName: dataDirName,
		projects:    make(map[string]*Project),
	}
}

// Get validates projectPath and returns the cached Project for it,
// constructing and caching it on first access.
func (r *Registry) Get(projectPath string) (*Project, error) {
	root, err := ValidateProjectPath(projectPath)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.projects[root]; ok {
		return p, nil
	}

	p, err := Open(root, r.dataDirName)
	if err != nil {
		return nil, err
	}
	r.projects[root] = p
	slog.Info("project managers initialized", "root", root)
	return p, nil
}

// Close closes every cached project. Used on server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for root, p := range r.projects {
		if err := p.Close(); err != nil {
			slog.Warn("closing project", "root", root, "error", err)
		}
	}
	r.projects = make(map[string]*Project)
}
