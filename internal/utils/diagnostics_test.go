package utils

import (
	"bytes"
	"strings"
	"testing"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystemWithWriters(level, &out, &errOut)
	d.SetColors(false)
	d.showTime = false
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    DiagnosticLevel
		expected []string
		hidden   []string
	}{
		{
			name:   "silent",
			level:  DiagnosticSilent,
			hidden: []string{"[ERROR]", "[WARN]", "[INFO]"},
		},
		{
			name:     "error only",
			level:    DiagnosticError,
			expected: []string{"[ERROR] broken"},
			hidden:   []string{"[WARN]", "[INFO]"},
		},
		{
			name:     "info",
			level:    DiagnosticInfo,
			expected: []string{"[ERROR] broken", "[WARN] careful", "[INFO] scanning 3", "[SUCCESS] done"},
			hidden:   []string{"[VERBOSE]", "[DEBUG]"},
		},
		{
			name:     "debug",
			level:    DiagnosticDebug,
			expected: []string{"[VERBOSE] detail", "[DEBUG] internals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, errOut := newTestDiagnostics(tt.level)

			d.Error("broken")
			d.Warn("careful")
			d.Info("scanning %d", 3)
			d.Success("done")
			d.Verbose("detail")
			d.Debug("internals")

			all := out.String() + errOut.String()
			for _, want := range tt.expected {
				if !strings.Contains(all, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, all)
				}
			}
			for _, unwanted := range tt.hidden {
				if strings.Contains(all, unwanted) {
					t.Errorf("Expected output not to contain %q, got:\n%s", unwanted, all)
				}
			}
		})
	}
}

func TestDiagnosticSystem_ErrorsGoToErrorWriter(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticInfo)

	d.Error("failed")
	if out.Len() != 0 {
		t.Errorf("Expected nothing on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "failed") {
		t.Errorf("Expected error on stderr, got %q", errOut.String())
	}
}

func TestDiagnosticSystem_Indent(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Indent()
	d.Info("nested")
	d.List("item")
	d.Unindent()
	d.Unindent()
	d.Info("top")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), out.String())
	}
	if lines[0] != "  [INFO] nested" || lines[1] != "  - item" || lines[2] != "[INFO] top" {
		t.Errorf("Unexpected indentation: %q", lines)
	}
}

func TestDiagnosticSystem_PhaseOutput(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("Generating middleware registrations")
	d.PhaseHeader("Scanning")
	d.PhaseItem("controllers")
	d.PhaseProgress("Writing controllers/autogen_middlewares.go")
	d.PhaseProgress("Skipping models")
	d.Summary("Summary", map[string]interface{}{"packages": 2, "declarations": 5})
	d.GenerationComplete()

	got := out.String()
	for _, want := range []string{
		"Synapse: Generating middleware registrations",
		"Scanning:",
		"✓ controllers",
		"✏ Writing controllers/autogen_middlewares.go",
		"- Skipping models",
		"Synapse: Generation complete!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}

	if strings.Index(got, "declarations: 5") > strings.Index(got, "packages: 2") {
		t.Error("Summary keys should be sorted")
	}
}

func TestDiagnosticSystem_QuietSuppressesPhases(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticError)

	d.Header("x")
	d.PhaseHeader("y")
	d.PhaseItem("z")
	d.Summary("s", map[string]interface{}{"a": 1})
	d.GenerationComplete()

	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}
