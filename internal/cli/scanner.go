package cli

import (
	"path/filepath"
	"strings"

	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

// DirectoryScanner resolves directory arguments to package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(fileProcessor *utils.FileProcessor) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: fileProcessor,
	}
}

// ScanDirectories returns the directories holding Go files. A "/..."
// suffix scans the tree below the base directory, anything else names a
// single package directory.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	var packageDirs []string
	seen := make(map[string]bool)

	add := func(dirs ...string) {
		for _, dir := range dirs {
			if !seen[dir] {
				seen[dir] = true
				packageDirs = append(packageDirs, dir)
			}
		}
	}

	for _, rootDir := range rootDirs {
		baseDir, recursive := splitPattern(rootDir)

		cleanPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, synerrors.WrapFileSystemError("resolve", baseDir, err)
		}

		if recursive {
			dirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles([]string{cleanPath})
			if err != nil {
				return nil, err
			}
			add(dirs...)
			continue
		}

		hasGoFiles, err := s.fileProcessor.HasGoFiles(cleanPath)
		if err != nil {
			return nil, err
		}
		if hasGoFiles {
			add(cleanPath)
		}
	}

	return packageDirs, nil
}

// splitPattern separates a Go-style "dir/..." pattern into its base directory
func splitPattern(dir string) (string, bool) {
	if dir == "..." {
		return ".", true
	}
	if strings.HasSuffix(dir, "/...") {
		baseDir := strings.TrimSuffix(dir, "/...")
		if baseDir == "" {
			baseDir = "/"
		}
		return baseDir, true
	}
	return dir, false
}
