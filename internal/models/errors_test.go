package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestGeneratorError(t *testing.T) {
	cause := fmt.Errorf("permission denied")

	tests := []struct {
		name     string
		err      *GeneratorError
		expected string
	}{
		{"message only", &GeneratorError{Message: "no packages"}, "no packages"},
		{"with cause", &GeneratorError{Message: "write failed", Cause: cause}, "write failed: permission denied"},
		{"with file", &GeneratorError{File: "a.go", Message: "bad"}, "a.go: bad"},
		{"with line", &GeneratorError{File: "a.go", Line: 3, Message: "bad", Cause: cause}, "a.go:3: bad: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}

	wrapped := fmt.Errorf("run: %w", &GeneratorError{Message: "x", Cause: cause})
	var genErr *GeneratorError
	if !errors.As(wrapped, &genErr) {
		t.Fatal("errors.As should find the GeneratorError")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestErrorTypeString(t *testing.T) {
	if ErrorTypeAnnotationSyntax.String() != "annotation syntax" || ErrorType(42).String() != "unknown" {
		t.Error("unexpected ErrorType strings")
	}
}

func TestDeclarationAndPackage(t *testing.T) {
	group := Declaration{ClassName: "app.Users"}
	action := Declaration{ClassName: "app.Users", MethodName: "List"}

	if !group.IsGroup() || action.IsGroup() {
		t.Error("IsGroup should depend on the method name")
	}
	if group.Target() != "app.Users" || action.Target() != "app.Users.List" {
		t.Errorf("unexpected targets %q %q", group.Target(), action.Target())
	}

	pkg := &PackageMetadata{}
	if pkg.HasDeclarations() {
		t.Error("empty package has no declarations")
	}

	pkg.Declarations = []Declaration{
		{Middlewares: []string{"mw.B", "mw.A"}},
		{Middlewares: []string{"mw.A", "mw.C"}},
	}
	got := pkg.MiddlewareClasses()
	want := []string{"mw.B", "mw.A", "mw.C"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("MiddlewareClasses() = %v, want %v", got, want)
	}
}
