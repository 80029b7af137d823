// Package project ties the per-project managers together: it validates
// and normalizes paths at the tool boundary, owns the lazy registry of
// project instances, and answers the composite file-info / status /
// search requests.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

// ValidateProjectPath checks that projectPath is an existing directory
// and returns its cleaned absolute form.
func ValidateProjectPath(projectPath string) (string, error) {
	if strings.TrimSpace(projectPath) == "" {
		return "", nexuserr.New(nexuserr.CodeConfigError, "project path must not be empty")
	}

	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", nexuserr.Wrap(nexuserr.CodeFileSystemError, err, "resolving project path %s", projectPath)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nexuserr.FileNotFound(projectPath)
		}
		return "", nexuserr.Wrap(nexuserr.CodeFileSystemError, err, "checking project path %s", projectPath)
	}
	if !info.IsDir() {
		return "", nexuserr.New(nexuserr.CodeConfigError, "project path must be a directory: %s", projectPath)
	}

	return filepath.Clean(abs), nil
}

// ValidateFilePath checks that filePath names an existing regular file
// inside projectRoot (the sandbox boundary) and returns its normalized
// project-relative, forward-slash form.
func ValidateFilePath(projectRoot, filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", nexuserr.New(nexuserr.CodeConfigError, "file path must not be empty")
	}

	full := filePath
	if !filepath.IsAbs(full) {
		full = filepath.Join(projectRoot, filePath)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(projectRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", nexuserr.New(nexuserr.CodeConfigError, "file path must be inside the project directory: %s", filePath)
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nexuserr.FileNotFound(filePath)
		}
		return "", nexuserr.Wrap(nexuserr.CodeFileSystemError, err, "checking file path %s", filePath)
	}
	if info.IsDir() {
		return "", nexuserr.New(nexuserr.CodeConfigError, "path must name a file, not a directory: %s", filePath)
	}

	return filepath.ToSlash(rel), nil
}
