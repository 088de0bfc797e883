package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/observability"
	"github.com/matzehuels/depinfo/pkg/tree"
)

// Options configures a report.
type Options struct {
	// Sizer looks up package sizes. Nil means every package size is unknown.
	Sizer PackageSizer
	// Styles decorates the output. The zero value prints plain text.
	Styles Styles
}

// Write prints the text report for g:
//
//	local: /app/main.ts
//	type: TypeScript
//	dependencies: 3 unique
//	size: 1.5KB
//
//	file:///app/main.ts (120B)
//	├─┬ file:///app/a.ts (20B)
//	│ └── npm:chalk@5.0.0 (1KB)
//	└── file:///app/a.ts *
//
// A graph without exactly one root, or whose root did not load, prints a
// single "error:" line instead. Write only returns errors from w.
func Write(ctx context.Context, w io.Writer, g *modgraph.Graph, snap *npm.Snapshot, opts Options) error {
	start := time.Now()
	cw := &countingWriter{w: w}
	d := &displayContext{
		graph:  g,
		index:  BuildPackageIndex(ctx, g, snap, opts.Sizer),
		styles: opts.Styles.withDefaults(),
		seen:   make(map[string]struct{}),
	}
	err := d.write(cw)
	observability.Report().OnReportWritten(ctx, "text", cw.n, time.Since(start))
	return err
}

// displayContext carries the state of one report. seen must never outlive
// the report it was created for.
type displayContext struct {
	graph  *modgraph.Graph
	index  *PackageIndex
	styles Styles
	seen   map[string]struct{}
}

func (d *displayContext) write(w io.Writer) error {
	st := d.styles
	roots := d.graph.Roots()
	if len(roots) != 1 {
		_, err := fmt.Fprintf(w, "%s displaying graphs that have multiple roots is not supported.\n", st.Red("error:"))
		return err
	}

	root, err := d.graph.TryGet(d.graph.Resolve(roots[0]))
	if err != nil {
		var me *modgraph.ModuleError
		if errors.As(err, &me) && me.Kind == modgraph.ErrorMissing {
			_, err = fmt.Fprintf(w, "%s module could not be found\n", st.Red("error:"))
		} else {
			_, err = fmt.Fprintf(w, "%s %v\n", st.Red("error:"), err)
		}
		return err
	}
	if root == nil {
		_, err := fmt.Fprintf(w, "%s an internal error occurred\n", st.Red("error:"))
		return err
	}

	if ci := modgraph.CacheInfoOf(root); ci != nil {
		for _, line := range []struct{ label, value string }{
			{"local:", ci.Local},
			{"emit:", ci.Emit},
			{"map:", ci.Map},
		} {
			if line.value == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s %s\n", st.Bold(line.label), line.value); err != nil {
				return err
			}
		}
	}
	if esm, ok := root.(*modgraph.EsmModule); ok {
		if _, err := fmt.Fprintf(w, "%s %s\n", st.Bold("type:"), esm.MediaType); err != nil {
			return err
		}
	}

	var totalSize float64
	for _, m := range d.graph.Modules() {
		if size, ok := modgraph.Size(m); ok {
			totalSize += float64(size)
		}
	}
	totalSize += float64(d.index.TotalSize())

	// Packages reached through several npm modules count once. Unresolved
	// npm modules are still counted as modules.
	depCount := d.graph.ModuleCount() - 1 + d.index.Len() - d.index.ResolvedLen()

	if _, err := fmt.Fprintf(w, "%s %d unique\n%s %s\n\n",
		st.Bold("dependencies:"), depCount,
		st.Bold("size:"), HumanSize(totalSize)); err != nil {
		return err
	}

	return tree.Renderer{Connector: st.Gray}.Write(w, d.buildModuleNode(root, false))
}

// markSeen records key and reports whether it had been recorded before.
func (d *displayContext) markSeen(key string) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *displayContext) buildModuleNode(m modgraph.Module, typeDep bool) *tree.Node {
	st := d.styles
	spec := m.Specifier()

	var pkg *npm.Package
	if nm, ok := m.(*modgraph.NpmModule); ok {
		pkg, _ = d.index.ResolvePackage(nm.NvReference.Nv)
	}
	key := spec
	if pkg != nil {
		key = pkg.ID.Serialized()
	}

	if d.markSeen(key) {
		label := st.Gray(spec)
		if typeDep {
			label = st.ItalicGray(spec)
		}
		return tree.New(label + " " + st.Gray("*"))
	}

	label := spec
	if typeDep {
		label = st.Italic(spec)
	}
	var (
		size   uint64
		sizeOK bool
	)
	if pkg != nil {
		size, sizeOK = d.index.PackageSize(pkg.ID)
	} else {
		size, sizeOK = modgraph.Size(m)
	}
	node := tree.New(label + " " + st.Gray(sizeLabel(size, sizeOK)))

	if pkg != nil {
		return node.Add(d.buildPackageDeps(pkg)...)
	}
	if esm, ok := m.(*modgraph.EsmModule); ok {
		if td := esm.TypesDependency; td != nil {
			if child := d.buildResolvedNode(td.Dependency, true); child != nil {
				node.Add(child)
			}
		}
		for _, dep := range esm.Dependencies {
			node.Add(d.buildDependencyNodes(dep)...)
		}
	}
	return node
}

// buildPackageDeps lists pkg's dependencies in id order. Only packages that
// have dependencies of their own are tracked as seen; leaf packages are
// printed in full every time.
func (d *displayContext) buildPackageDeps(pkg *npm.Package) []*tree.Node {
	st := d.styles
	ids := pkg.SortedDependencies()
	children := make([]*tree.Node, 0, len(ids))
	for _, id := range ids {
		size, ok := d.index.PackageSize(id)
		child := tree.New("npm:" + id.Serialized() + " " + st.Gray(sizeLabel(size, ok)))
		if dep, ok := d.index.Package(id); ok && len(dep.Dependencies) > 0 {
			if d.markSeen(dep.ID.Serialized()) {
				child.Text += " " + st.Gray("*")
			} else {
				child.Add(d.buildPackageDeps(dep)...)
			}
		}
		children = append(children, child)
	}
	return children
}

func (d *displayContext) buildDependencyNodes(dep modgraph.Dependency) []*tree.Node {
	children := make([]*tree.Node, 0, 2)
	if child := d.buildResolvedNode(dep.Code, false); child != nil {
		children = append(children, child)
	}
	if child := d.buildResolvedNode(dep.Type, true); child != nil {
		children = append(children, child)
	}
	return children
}

func (d *displayContext) buildResolvedNode(r modgraph.Resolution, typeDep bool) *tree.Node {
	st := d.styles
	switch r.State {
	case modgraph.ResolutionOk:
		resolved := d.graph.Resolve(r.Specifier)
		m, err := d.graph.TryGet(resolved)
		switch {
		case err != nil:
			return d.buildErrorNode(err, resolved)
		case m == nil:
			return tree.New(st.Red(r.Specifier) + " " + st.RedBold("(missing)"))
		}
		return d.buildModuleNode(m, typeDep)
	case modgraph.ResolutionErr:
		return tree.New(st.Italic(r.Err) + " " + st.RedBold("(resolve error)"))
	case modgraph.ResolutionNone:
	}
	return nil
}

func (d *displayContext) buildErrorNode(err error, specifier string) *tree.Node {
	d.markSeen(specifier)
	kind := modgraph.ErrorLoading
	var me *modgraph.ModuleError
	if errors.As(err, &me) {
		kind = me.Kind
	}
	st := d.styles
	return tree.New(st.Red(specifier) + " " + st.RedBold(errorTag(kind)))
}

func errorTag(kind modgraph.ErrorKind) string {
	switch kind {
	case modgraph.ErrorInvalidTypeAssertion:
		return "(invalid import assertion)"
	case modgraph.ErrorParse:
		return "(parsing error)"
	case modgraph.ErrorUnsupportedImportAssertionType:
		return "(unsupported import assertion)"
	case modgraph.ErrorUnsupportedMediaType:
		return "(unsupported)"
	case modgraph.ErrorMissing, modgraph.ErrorMissingDynamic:
		return "(missing)"
	case modgraph.ErrorResolution:
		return "(resolution error)"
	case modgraph.ErrorLoading:
	}
	return "(loading error)"
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
