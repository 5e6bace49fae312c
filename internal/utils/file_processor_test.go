package utils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileProcessor_GoFileFilter(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"main.go":                "package main",
		"main_test.go":           "package main",
		"autogen_middlewares.go": "package main",
		"autogen_module.go":      "package main",
		"README.md":              "# README",
	}
	for name, content := range files {
		writeTestFile(t, filepath.Join(tmpDir, name), content)
	}

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)

	filter := NewFileProcessor("").GoFileFilter()
	var goFiles []string
	for _, entry := range entries {
		if filter(filepath.Join(tmpDir, entry.Name()), entry) {
			goFiles = append(goFiles, entry.Name())
		}
	}
	sort.Strings(goFiles)

	assert.Equal(t, []string{"autogen_module.go", "main.go"}, goFiles)
}

func TestFileProcessor_ScanDirectoriesWithGoFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "main.go"), "package main")
	writeTestFile(t, filepath.Join(root, "controllers", "users.go"), "package controllers")
	writeTestFile(t, filepath.Join(root, "controllers", "admin", "admin.go"), "package admin")
	writeTestFile(t, filepath.Join(root, "docs", "README.md"), "docs")
	writeTestFile(t, filepath.Join(root, "only_tests", "x_test.go"), "package x")
	writeTestFile(t, filepath.Join(root, "generated", DefaultOutputFile), "package generated")
	writeTestFile(t, filepath.Join(root, "vendor", "lib", "lib.go"), "package lib")
	writeTestFile(t, filepath.Join(root, ".hidden", "h.go"), "package h")
	writeTestFile(t, filepath.Join(root, "testdata", "t.go"), "package t")

	fp := NewFileProcessor("")
	dirs, err := fp.ScanDirectoriesWithGoFiles([]string{root, root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		root,
		filepath.Join(root, "controllers"),
		filepath.Join(root, "controllers", "admin"),
	}, dirs)

	_, err = fp.ScanDirectoriesWithGoFiles([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	generated := []string{
		filepath.Join(root, DefaultOutputFile),
		filepath.Join(root, "controllers", DefaultOutputFile),
	}
	for _, path := range generated {
		writeTestFile(t, path, "package x")
	}
	keep := filepath.Join(root, "controllers", "users.go")
	writeTestFile(t, keep, "package controllers")
	vendored := filepath.Join(root, "vendor", "lib", DefaultOutputFile)
	writeTestFile(t, vendored, "package lib")

	removed, err := NewFileProcessor("").CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t, generated, removed)

	for _, path := range generated {
		assert.NoFileExists(t, path)
	}
	assert.FileExists(t, keep)
	assert.FileExists(t, vendored)

	removed, err = NewFileProcessor("").CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestFileProcessor_CustomOutputFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "zz_synapse.go"), "package x")
	writeTestFile(t, filepath.Join(root, DefaultOutputFile), "package x")

	fp := NewFileProcessor("zz_synapse.go")
	assert.Equal(t, "zz_synapse.go", fp.OutputFile())

	has, err := fp.HasGoFiles(root)
	require.NoError(t, err)
	assert.True(t, has, "the default name is an ordinary source for a custom output file")

	removed, err := fp.CleanDirectories([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "zz_synapse.go")}, removed)
}
