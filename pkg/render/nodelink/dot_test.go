package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/depinfo/pkg/info"
	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/sizes"
)

func sampleGraph(t *testing.T) (*modgraph.Graph, *npm.Snapshot) {
	t.Helper()
	g := modgraph.New("file:///main.ts")
	mustAdd := func(m modgraph.Module) {
		if err := g.AddModule(m); err != nil {
			t.Fatalf("AddModule(%s): %v", m.Specifier(), err)
		}
	}
	mustAdd(&modgraph.EsmModule{
		ModuleSpecifier: "file:///main.ts",
		MediaType:       "TypeScript",
		Size:            2048,
		Dependencies: []modgraph.Dependency{
			{Specifier: "./a.ts", Code: modgraph.Resolved("file:///a.ts"), Type: modgraph.Resolved("file:///a.d.ts")},
			{Specifier: "./gone.ts", Code: modgraph.Resolved("file:///gone.ts")},
			{Specifier: "npm:chalk@5", Code: modgraph.Resolved("npm:chalk@5.0.0")},
		},
	})
	mustAdd(&modgraph.EsmModule{ModuleSpecifier: "file:///a.ts", MediaType: "TypeScript", Size: 10})
	mustAdd(&modgraph.EsmModule{ModuleSpecifier: "file:///a.d.ts", MediaType: "Dts", Size: 5})

	ref, err := npm.ParsePackageNvReference("npm:chalk@5.0.0")
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(&modgraph.NpmModule{ModuleSpecifier: "npm:chalk@5.0.0", NvReference: ref})
	if err := g.AddError(&modgraph.ModuleError{Specifier: "file:///gone.ts", Kind: modgraph.ErrorMissing}); err != nil {
		t.Fatal(err)
	}

	chalk, _ := npm.ParsePackageID("chalk@5.0.0")
	ansi, _ := npm.ParsePackageID("ansi@1.0.0")
	snap := npm.NewSnapshot()
	snap.AddPackage(&npm.Package{ID: chalk, Dependencies: map[string]npm.PackageID{"ansi": ansi}})
	snap.AddPackage(&npm.Package{ID: ansi})
	snap.AddRootPackage(chalk.Nv, chalk)
	return g, snap
}

func TestToDOT_Basic(t *testing.T) {
	g, _ := sampleGraph(t)

	dot := ToDOT(g, nil, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, want := range []string{
		`"file:///main.ts" [label="file:///main.ts"];`,
		`"file:///main.ts" -> "file:///a.ts";`,
		`"file:///main.ts" -> "file:///a.d.ts" [style=dashed];`,
		`"file:///main.ts" -> "npm:chalk@5.0.0";`,
		`"npm:chalk@5.0.0" [label="npm:chalk@5.0.0"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Packages(t *testing.T) {
	g, snap := sampleGraph(t)
	idx := info.BuildPackageIndex(context.Background(), g, snap, nil)

	dot := ToDOT(g, idx, Options{})

	for _, want := range []string{
		`"file:///main.ts" -> "npm:chalk@5.0.0";`,
		`"npm:chalk@5.0.0" -> "npm:ansi@1.0.0";`,
		`"npm:ansi@1.0.0" [label="npm:ansi@1.0.0"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"npm:chalk@5.0.0" [`) != 1 {
		t.Errorf("package node should be declared once\n%s", dot)
	}
}

func TestToDOT_Errors(t *testing.T) {
	g, _ := sampleGraph(t)

	dot := ToDOT(g, nil, Options{})

	if !strings.Contains(dot, `"file:///gone.ts" [label="file:///gone.ts", color=red, fontcolor=red];`) {
		t.Errorf("ToDOT() missing errored module node\n%s", dot)
	}
	if !strings.Contains(dot, `"file:///main.ts" -> "file:///gone.ts";`) {
		t.Error("ToDOT() missing edge to errored module")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g, snap := sampleGraph(t)
	idx := info.BuildPackageIndex(context.Background(), g, snap, sizes.Map{"chalk@5.0.0": 1536})

	dot := ToDOT(g, idx, Options{Detailed: true})

	if !strings.Contains(dot, `label="file:///main.ts\n2KB"`) {
		t.Errorf("ToDOT() detailed output missing module size\n%s", dot)
	}
	if !strings.Contains(dot, `label="npm:chalk@5.0.0\n1.5KB"`) {
		t.Errorf("ToDOT() detailed output missing package size\n%s", dot)
	}
	if !strings.Contains(dot, `label="npm:ansi@1.0.0"`) {
		t.Error("packages without a size should keep a plain label")
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	g, snap := sampleGraph(t)
	idx := info.BuildPackageIndex(context.Background(), g, snap, nil)

	first := ToDOT(g, idx, Options{})
	for range 5 {
		if got := ToDOT(g, idx, Options{}); got != first {
			t.Fatal("ToDOT() output differs between runs")
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "rewrites root",
			svg:  `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			svg:  `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	g, snap := sampleGraph(t)
	idx := info.BuildPackageIndex(context.Background(), g, snap, nil)

	svg, err := RenderSVG(context.Background(), ToDOT(g, idx, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
