package cli

import (
	"os"
	"path/filepath"

	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner(fileProcessor *utils.FileProcessor) *Cleaner {
	return &Cleaner{
		fileProcessor: fileProcessor,
	}
}

// CleanGeneratedFiles removes the generated file from the given directories
// and returns the removed paths. "dir/..." cleans the whole tree.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	var removedFiles []string

	for _, dir := range directories {
		baseDir, recursive := splitPattern(dir)

		if recursive {
			removed, err := c.fileProcessor.CleanDirectories([]string{baseDir})
			removedFiles = append(removedFiles, removed...)
			if err != nil {
				return removedFiles, err
			}
			continue
		}

		removed, err := c.cleanSingleDirectory(baseDir)
		if err != nil {
			return removedFiles, err
		}
		if removed != "" {
			removedFiles = append(removedFiles, removed)
		}
	}

	return removedFiles, nil
}

func (c *Cleaner) cleanSingleDirectory(dir string) (string, error) {
	autogenFile := filepath.Join(dir, c.fileProcessor.OutputFile())

	if _, err := os.Stat(autogenFile); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", synerrors.WrapFileSystemError("check", autogenFile, err)
	}

	if err := os.Remove(autogenFile); err != nil {
		return "", synerrors.WrapFileSystemError("remove", autogenFile, err)
	}
	return autogenFile, nil
}
