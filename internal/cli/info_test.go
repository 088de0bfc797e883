package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/depinfo/pkg/errors"
	"github.com/matzehuels/depinfo/pkg/observability"
)

const wantReport = `local: /app/main.ts
type: TypeScript
dependencies: 3 unique
size: 140B

file:///app/main.ts (120B)
├─┬ file:///app/a.ts (20B)
│ └─┬ npm:chalk@5.0.0 (unknown)
│   └── npm:ansi@1.0.0 (unknown)
└── npm:chalk@5.0.0 *
`

// runCLI executes the root command with a config that disables caching and
// color, returning what was written to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(observability.Reset)

	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n\n[output]\ncolor = \"never\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestInfoCommand(t *testing.T) {
	out, err := runCLI(t, "info", "testdata/graph.json", "--snapshot", "testdata/snapshot.json")
	if err != nil {
		t.Fatalf("info error: %v", err)
	}
	if out != wantReport {
		t.Errorf("info output:\n%s\nwant:\n%s", out, wantReport)
	}
}

func TestInfoCommandWithoutSnapshot(t *testing.T) {
	out, err := runCLI(t, "info", "testdata/graph.json")
	if err != nil {
		t.Fatalf("info error: %v", err)
	}
	if !strings.Contains(out, "│ └── npm:chalk@5.0.0 (unknown)\n") {
		t.Errorf("unresolved package should be a leaf:\n%s", out)
	}
	if !strings.Contains(out, "dependencies: 2 unique\n") {
		t.Errorf("unexpected dependency count:\n%s", out)
	}
}

func TestInfoCommandJSON(t *testing.T) {
	out, err := runCLI(t, "info", "testdata/graph.json", "--snapshot", "testdata/snapshot.json", "--json")
	if err != nil {
		t.Fatalf("info --json error: %v", err)
	}

	var doc struct {
		Modules []struct {
			Specifier    string `json:"specifier"`
			Dependencies []struct {
				Specifier  string `json:"specifier"`
				NpmPackage string `json:"npmPackage"`
			} `json:"dependencies"`
		} `json:"modules"`
		NpmPackages map[string]struct {
			Name         string   `json:"name"`
			Dependencies []string `json:"dependencies"`
		} `json:"npmPackages"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(doc.Modules) != 2 {
		t.Fatalf("npm modules should be dropped, got %d modules", len(doc.Modules))
	}
	dep := doc.Modules[0].Dependencies[0]
	if dep.Specifier != "npm:chalk@5" || dep.NpmPackage != "chalk@5.0.0" {
		t.Errorf("dependency = %+v, want npmPackage chalk@5.0.0", dep)
	}
	if got := doc.NpmPackages["chalk@5.0.0"].Dependencies; len(got) != 1 || got[0] != "ansi@1.0.0" {
		t.Errorf("registry chalk deps = %v", got)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("JSON output should end with a newline")
	}
}

func TestInfoCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing graph", []string{"info", "testdata/absent.json"}, errs.ErrCodeFileNotFound},
		{"bad npm specifier", []string{"info", "testdata/bad_graph.json"}, errs.ErrCodeInvalidSpecifier},
		{"bad snapshot", []string{"info", "testdata/graph.json", "--snapshot", "testdata/bad_snapshot.json"}, errs.ErrCodeInvalidSnapshot},
		{"missing snapshot", []string{"info", "testdata/graph.json", "--snapshot", "testdata/absent.json"}, errs.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDotCommand(t *testing.T) {
	out, err := runCLI(t, "dot", "testdata/graph.json", "--snapshot", "testdata/snapshot.json")
	if err != nil {
		t.Fatalf("dot error: %v", err)
	}
	for _, want := range []string{
		"digraph G {",
		`"file:///app/main.ts" -> "file:///app/a.ts";`,
		`"file:///app/a.ts" -> "npm:chalk@5.0.0";`,
		`"npm:chalk@5.0.0" -> "npm:ansi@1.0.0";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestDotCommandOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")
	out, err := runCLI(t, "dot", "testdata/graph.json", "-o", path)
	if err != nil {
		t.Fatalf("dot error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing a file, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("file content = %q", data)
	}
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if want := filepath.Join(xdg, appName) + "\n"; out != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := runCLI(t, "completion", shell, "--no-descriptions")
			if err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion %s output does not mention %s", shell, appName)
			}
		})
	}

	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}
