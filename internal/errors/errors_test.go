package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocationString(t *testing.T) {
	tests := []struct {
		loc      SourceLocation
		expected string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "a.go"}, "a.go"},
		{SourceLocation{File: "a.go", Line: 4}, "a.go:4"},
		{SourceLocation{File: "a.go", Line: 4, Column: 2}, "a.go:4:2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.loc.String())
	}
}

func TestError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := WrapFileSystemError("write", "out.go", cause).
		At(SourceLocation{File: "out.go", Line: 1}).
		Hint("Check permissions on %s", "out.go")

	assert.Equal(t, "out.go:1: failed to write file 'out.go': permission denied", err.Error())
	assert.Equal(t, KindFileSystem, err.Kind)
	assert.Equal(t, "out.go", err.Fields["path"])
	assert.Equal(t, []string{"Check permissions on out.go"}, err.Hints)
	assert.True(t, errors.Is(err, cause))

	plain := newError(KindTemplate, nil, "nothing to do")
	assert.Equal(t, "nothing to do", plain.Error())
	assert.Nil(t, plain.Fields)
}

func TestList(t *testing.T) {
	var list List
	assert.NoError(t, list.Err())

	first := newError(KindClass, nil, "first")
	list = append(list, first)
	assert.Equal(t, "first", list.Error())

	list = append(list, newError(KindConfiguration, nil, "second"))
	err := list.Err()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "2 errors:\n  1. first"))
	assert.True(t, list.Has(KindConfiguration))
	assert.False(t, list.Has(KindTemplate))

	var target *Error
	require.True(t, errors.As(err, &target))
	assert.Same(t, first, target)

	var asList List
	require.True(t, errors.As(fmt.Errorf("scan: %w", err), &asList))
	assert.Len(t, asList, 2)
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name     string
		err      *Error
		kind     Kind
		contains string
	}{
		{"file system", WrapFileSystemError("read", "a.go", cause), KindFileSystem, "failed to read file 'a.go': boom"},
		{"template", WrapTemplateError("init", "execute", cause), KindTemplate, "failed to execute template 'init'"},
		{"configuration", WrapConfigurationError("yaml", "load", cause), KindConfiguration, "failed to load yaml configuration"},
		{"unknown class", UnknownClassError("mw.Cache", SourceLocation{File: "u.go", Line: 2}, []string{"mw.Auth"}), KindClass, "u.go:2: unknown middleware class 'mw.Cache'"},
		{"duplicate class", DuplicateClassError("mw.Auth", SourceLocation{File: "b.go", Line: 9}, SourceLocation{File: "a.go", Line: 3}), KindClass, "already registered at a.go:3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}

	unknown := UnknownClassError("mw.Cache", SourceLocation{}, []string{"mw.Log", "mw.Auth"})
	require.Len(t, unknown.Hints, 2)
	assert.Equal(t, "Known middleware classes: mw.Auth, mw.Log", unknown.Hints[0])
	assert.Equal(t, "mw.Cache", unknown.Fields["class"])
}
