package info

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/observability"
)

// PackageSizer reports the on-disk size of a resolved package. Errors mean
// the size is unavailable; they are never fatal to a report.
type PackageSizer interface {
	PackageSize(ctx context.Context, id npm.PackageID) (uint64, error)
}

// PackageIndex is the closure of packages reachable from a graph's npm
// modules. It is read-only once built.
type PackageIndex struct {
	sizes       map[string]uint64
	resolvedIDs map[npm.PackageNv]string
	packages    map[string]*npm.Package
}

// BuildPackageIndex resolves every npm module in g against snap and indexes
// the resolved packages and everything they depend on. Modules that do not
// resolve are skipped. sizer may be nil, in which case no sizes are known.
func BuildPackageIndex(ctx context.Context, g *modgraph.Graph, snap *npm.Snapshot, sizer PackageSizer) *PackageIndex {
	start := time.Now()
	idx := &PackageIndex{
		sizes:       make(map[string]uint64),
		resolvedIDs: make(map[npm.PackageNv]string),
		packages:    make(map[string]*npm.Package),
	}
	if snap == nil || len(g.NpmPackages()) == 0 {
		return idx
	}

	for _, m := range g.Modules() {
		nm, ok := m.(*modgraph.NpmModule)
		if !ok {
			continue
		}
		nv := nm.NvReference.Nv
		pkg, err := snap.ResolvePackageFromModule(nv)
		if err != nil {
			continue
		}
		key := pkg.ID.Serialized()
		idx.resolvedIDs[nv] = key
		if _, ok := idx.packages[key]; !ok {
			idx.fill(ctx, pkg, snap, sizer)
		}
	}

	observability.Report().OnIndexBuilt(ctx, len(idx.packages), len(idx.resolvedIDs), time.Since(start))
	return idx
}

// fill indexes pkg and its dependency closure. A package is recorded when it
// is pushed, so each id is visited once even in cyclic snapshots.
func (idx *PackageIndex) fill(ctx context.Context, pkg *npm.Package, snap *npm.Snapshot, sizer PackageSizer) {
	idx.packages[pkg.ID.Serialized()] = pkg
	stack := []*npm.Package{pkg}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if sizer != nil {
			if size, err := sizer.PackageSize(ctx, p.ID); err == nil {
				idx.sizes[p.ID.Serialized()] = size
			}
		}
		for _, id := range p.SortedDependencies() {
			key := id.Serialized()
			if _, ok := idx.packages[key]; ok {
				continue
			}
			// A dangling id means the snapshot is incomplete; skip it.
			dep, ok := snap.PackageFromID(id)
			if !ok {
				continue
			}
			idx.packages[key] = dep
			stack = append(stack, dep)
		}
	}
}

// ResolvePackage returns the package nv resolved to, if nv was referenced by
// an npm module of the graph.
func (idx *PackageIndex) ResolvePackage(nv npm.PackageNv) (*npm.Package, bool) {
	key, ok := idx.resolvedIDs[nv]
	if !ok {
		return nil, false
	}
	p, ok := idx.packages[key]
	return p, ok
}

// Package returns an indexed package by id.
func (idx *PackageIndex) Package(id npm.PackageID) (*npm.Package, bool) {
	p, ok := idx.packages[id.Serialized()]
	return p, ok
}

// PackageSize returns the size recorded for id.
func (idx *PackageIndex) PackageSize(id npm.PackageID) (uint64, bool) {
	size, ok := idx.sizes[id.Serialized()]
	return size, ok
}

// Len returns the number of indexed packages.
func (idx *PackageIndex) Len() int { return len(idx.packages) }

// ResolvedLen returns the number of distinct package versions referenced by
// the graph that resolved.
func (idx *PackageIndex) ResolvedLen() int { return len(idx.resolvedIDs) }

// TotalSize sums the known sizes of all indexed packages.
func (idx *PackageIndex) TotalSize() uint64 {
	var total uint64
	for _, s := range idx.sizes {
		total += s
	}
	return total
}

// Packages returns the indexed packages sorted by id.
func (idx *PackageIndex) Packages() []*npm.Package {
	pkgs := slices.Collect(maps.Values(idx.packages))
	slices.SortFunc(pkgs, func(a, b *npm.Package) int { return a.ID.Compare(b.ID) })
	return pkgs
}
