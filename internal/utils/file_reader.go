package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	synerrors "github.com/toyz/synapse/internal/errors"
)

// FileReader reads files and keeps their contents until the file's size or
// modification time changes. go.mod is looked up once per scanned package,
// so the same few files are read repeatedly.
type FileReader struct {
	mu      sync.RWMutex
	entries map[string]cachedFile
}

type cachedFile struct {
	content string
	modTime time.Time
	size    int64
}

func (c cachedFile) current(info os.FileInfo) bool {
	return c.size == info.Size() && c.modTime.Equal(info.ModTime())
}

// NewFileReader creates a reader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{entries: make(map[string]cachedFile)}
}

// ReadFile returns the contents of filePath
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	cleanPath := filepath.Clean(filePath)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", synerrors.WrapFileSystemError("stat", cleanPath, err)
	}

	fr.mu.RLock()
	entry, ok := fr.entries[cleanPath]
	fr.mu.RUnlock()
	if ok && entry.current(info) {
		return entry.content, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", synerrors.WrapFileSystemError("read", cleanPath, err)
	}

	fr.mu.Lock()
	fr.entries[cleanPath] = cachedFile{
		content: string(content),
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	fr.mu.Unlock()

	return string(content), nil
}
