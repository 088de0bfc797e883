package info

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/observability"
)

// RegistryEntry is one value of the "npmPackages" registry.
type RegistryEntry struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies"`
}

// GraphDocument serializes g into a generic JSON document suitable for
// [AddPackagesToJSON]. Numbers are kept as [json.Number].
func GraphDocument(g *modgraph.Graph) (map[string]any, error) {
	data, err := modgraph.MarshalGraph(g)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph document: %w", err)
	}
	return doc, nil
}

// WriteJSON writes the augmented JSON document for g as indented JSON.
func WriteJSON(ctx context.Context, w io.Writer, g *modgraph.Graph, snap *npm.Snapshot) error {
	start := time.Now()
	doc, err := GraphDocument(g)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = npm.NewSnapshot()
	}
	AddPackagesToJSON(doc, snap)

	cw := &countingWriter{w: w}
	enc := json.NewEncoder(cw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	observability.Report().OnReportWritten(ctx, "json", cw.n, time.Since(start))
	return nil
}

// AddPackagesToJSON rewrites a serialized graph document in place.
//
// When the document holds a single npm module (an npm specifier was the
// root), that module gains an "npmPackage" field with the id it resolved
// to. Otherwise npm and external modules are dropped: they are placeholders,
// and several of them may stand for one package.
//
// Every remaining dependency whose specifier is an npm requirement that the
// snapshot resolves gains an "npmPackage" field. Finally "npmPackages" is set
// to a registry of every package in the snapshot, for all platforms, keyed by
// id in id order.
//
// Entries that cannot be resolved are left as they are.
func AddPackagesToJSON(doc map[string]any, snap *npm.Snapshot) {
	if modules, ok := doc["modules"].([]any); ok {
		if len(modules) == 1 && moduleKind(modules[0]) == modgraph.KindNpm {
			annotateNpmModule(modules[0], snap)
		} else {
			modules = slices.DeleteFunc(modules, func(m any) bool {
				k := moduleKind(m)
				return k == modgraph.KindNpm || k == modgraph.KindExternal
			})
			doc["modules"] = modules
		}

		for _, m := range modules {
			mod, ok := m.(map[string]any)
			if !ok {
				continue
			}
			deps, _ := mod["dependencies"].([]any)
			for _, d := range deps {
				if dep, ok := d.(map[string]any); ok {
					annotateDependency(dep, snap)
				}
			}
		}
	}

	registry := orderedmap.New[string, RegistryEntry]()
	for _, pkg := range snap.AllPackages() {
		ids := pkg.SortedDependencies()
		deps := make([]string, len(ids))
		for i, id := range ids {
			deps[i] = id.Serialized()
		}
		registry.Set(pkg.ID.Serialized(), RegistryEntry{
			Name:         pkg.ID.Nv.Name,
			Version:      pkg.ID.Nv.Version,
			Dependencies: deps,
		})
	}
	doc["npmPackages"] = registry
}

func moduleKind(m any) modgraph.Kind {
	mod, ok := m.(map[string]any)
	if !ok {
		return ""
	}
	k, _ := mod["kind"].(string)
	return modgraph.Kind(k)
}

func annotateNpmModule(m any, snap *npm.Snapshot) {
	mod, ok := m.(map[string]any)
	if !ok {
		return
	}
	spec, _ := mod["specifier"].(string)
	ref, err := npm.ParsePackageNvReference(spec)
	if err != nil {
		return
	}
	if pkg, err := snap.ResolvePackageFromModule(ref.Nv); err == nil {
		mod["npmPackage"] = pkg.ID.Serialized()
	}
}

func annotateDependency(dep map[string]any, snap *npm.Snapshot) {
	spec, ok := dep["specifier"].(string)
	if !ok {
		return
	}
	ref, err := npm.ParsePackageReqReference(spec)
	if err != nil {
		return
	}
	if pkg, err := snap.ResolveFromRequirement(ref.Req); err == nil {
		dep["npmPackage"] = pkg.ID.Serialized()
	}
}
