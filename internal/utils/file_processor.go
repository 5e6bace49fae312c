package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	synerrors "github.com/toyz/synapse/internal/errors"
)

const DefaultOutputFile = "autogen_middlewares.go"

// FileProcessor knows which files the generator reads and which one it owns.
type FileProcessor struct {
	outputFile string
}

// NewFileProcessor returns a processor owning outputFile, or
// DefaultOutputFile when the name is empty.
func NewFileProcessor(outputFile string) *FileProcessor {
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}
	return &FileProcessor{outputFile: outputFile}
}

func (fp *FileProcessor) OutputFile() string {
	return fp.outputFile
}

type FileFilter func(path string, info os.DirEntry) bool

type DirectoryFilter func(path string, info os.DirEntry) bool

// GoFileFilter accepts Go sources other than tests and the generated file.
func (fp *FileProcessor) GoFileFilter() FileFilter {
	return func(_ string, info os.DirEntry) bool {
		name := info.Name()
		switch {
		case info.IsDir(), name == fp.outputFile:
			return false
		case strings.HasSuffix(name, "_test.go"):
			return false
		}
		return filepath.Ext(name) == ".go"
	}
}

// DefaultDirectoryFilter rejects the directories the go tool ignores
// (hidden, underscore-prefixed, testdata) along with vendor trees.
func DefaultDirectoryFilter() DirectoryFilter {
	return func(_ string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		switch name := info.Name(); {
		case name == "vendor", name == "node_modules", name == "testdata":
			return false
		case name == "." || name == "..":
			return true
		case name[0] == '.', name[0] == '_':
			return false
		}
		return true
	}
}

// walkPackages calls visit for root and every directory below it that
// passes DefaultDirectoryFilter, parents before children. A non-nil err
// means the directory could not be read; visit decides whether that is
// fatal. Returning filepath.SkipDir prunes the subtree.
func (fp *FileProcessor) walkPackages(root string, visit func(dir string, err error) error) error {
	keep := DefaultDirectoryFilter()
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return visit(path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && !keep(path, entry) {
			return filepath.SkipDir
		}
		return visit(path, nil)
	})
}

// ScanDirectoriesWithGoFiles returns every package directory under the
// roots in walk order. Directories reachable from more than one root are
// listed once.
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	seen := make(map[string]bool)

	for _, root := range rootDirs {
		err := fp.walkPackages(root, func(dir string, err error) error {
			if err != nil {
				return synerrors.WrapFileSystemError("read directory", dir, err)
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return synerrors.WrapFileSystemError("resolve", dir, err)
			}
			if seen[abs] {
				return filepath.SkipDir
			}
			seen[abs] = true

			ok, err := fp.HasGoFiles(dir)
			if ok {
				packageDirs = append(packageDirs, dir)
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return packageDirs, nil
}

func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, synerrors.WrapFileSystemError("read directory", dir, err)
	}

	isSource := fp.GoFileFilter()
	for _, entry := range entries {
		if isSource(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// CleanDirectories deletes the generated file wherever it appears under
// the roots and returns the deleted paths. Unreadable directories are
// passed over.
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removed []string

	for _, root := range baseDirs {
		if root == "" {
			root = "."
		}

		err := fp.walkPackages(root, func(dir string, err error) error {
			if err != nil {
				return nil
			}
			target := filepath.Join(dir, fp.outputFile)
			switch err := os.Remove(target); {
			case err == nil:
				removed = append(removed, target)
			case !os.IsNotExist(err):
				return synerrors.WrapFileSystemError("remove", target, err)
			}
			return nil
		})
		if err != nil {
			return removed, fmt.Errorf("failed to clean %s: %w", root, err)
		}
	}

	return removed, nil
}
