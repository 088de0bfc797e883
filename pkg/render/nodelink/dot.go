package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depinfo/pkg/info"
	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the size of each module and package to its label.
	Detailed bool
}

type edge struct {
	from, to string
	typeOnly bool
}

// ToDOT converts a module graph to Graphviz DOT. Package modules that
// resolved are drawn as their package id, followed by the package
// dependency closure from idx. Type-only edges are dashed and modules that
// failed to load are drawn in red. Output is deterministic.
//
// idx may be nil, in which case package modules are drawn by specifier.
func ToDOT(g *modgraph.Graph, idx *info.PackageIndex, opts Options) string {
	d := dotBuilder{graph: g, index: idx, opts: opts, edgeSeen: make(map[edge]bool)}
	return d.build()
}

type dotBuilder struct {
	graph    *modgraph.Graph
	index    *info.PackageIndex
	opts     Options
	edges    []edge
	edgeSeen map[edge]bool
}

func (d *dotBuilder) build() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, m := range d.graph.Modules() {
		if d.packageOf(m) != nil {
			continue // drawn with the packages below
		}
		id := d.nodeID(m.Specifier())
		size, ok := modgraph.Size(m)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(d.attrs(id, size, ok), ", "))

		if esm, ok := m.(*modgraph.EsmModule); ok {
			if td := esm.TypesDependency; td != nil {
				d.addResolution(id, td.Dependency, true)
			}
			for _, dep := range esm.Dependencies {
				d.addResolution(id, dep.Code, false)
				d.addResolution(id, dep.Type, true)
			}
		}
	}
	for _, e := range d.graph.Errors() {
		fmt.Fprintf(&buf, "  %q [label=%q, color=red, fontcolor=red];\n", e.Specifier, e.Specifier)
	}
	if d.index != nil {
		for _, p := range d.index.Packages() {
			id := packageNodeID(p.ID)
			size, ok := d.index.PackageSize(p.ID)
			attrs := append(d.attrs(id, size, ok), "fillcolor=\"#f5f0e6\"")
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
			for _, dep := range p.SortedDependencies() {
				if _, ok := d.index.Package(dep); ok {
					d.addEdge(edge{from: id, to: packageNodeID(dep)})
				}
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range d.edges {
		if e.typeOnly {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.from, e.to)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func (d *dotBuilder) attrs(id string, size uint64, sizeOK bool) []string {
	label := id
	if d.opts.Detailed && sizeOK {
		label += "\n" + info.HumanSize(float64(size))
	}
	return []string{fmt.Sprintf("label=%q", label)}
}

func (d *dotBuilder) addResolution(from string, r modgraph.Resolution, typeOnly bool) {
	if r.State != modgraph.ResolutionOk {
		return
	}
	d.addEdge(edge{from: from, to: d.nodeID(r.Specifier), typeOnly: typeOnly})
}

func (d *dotBuilder) addEdge(e edge) {
	if d.edgeSeen[e] {
		return
	}
	d.edgeSeen[e] = true
	d.edges = append(d.edges, e)
}

// nodeID maps a specifier to its node: the redirect target, or the package
// id for a resolved package module.
func (d *dotBuilder) nodeID(specifier string) string {
	resolved := d.graph.Resolve(specifier)
	if d.index == nil {
		return resolved
	}
	m, err := d.graph.TryGet(resolved)
	if err != nil || m == nil {
		return resolved
	}
	if p := d.packageOf(m); p != nil {
		return packageNodeID(p.ID)
	}
	return resolved
}

func (d *dotBuilder) packageOf(m modgraph.Module) *npm.Package {
	nm, ok := m.(*modgraph.NpmModule)
	if !ok || d.index == nil {
		return nil
	}
	p, _ := d.index.ResolvePackage(nm.NvReference.Nv)
	return p
}

func packageNodeID(id npm.PackageID) string {
	return "npm:" + id.Serialized()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
