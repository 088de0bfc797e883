package npm

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Package is one resolved package in a snapshot. Dependencies maps the
// dependency name as declared by the package to the resolved id.
//
// OS and CPU restrict the platforms the package installs on, using npm's
// package.json semantics: an empty list allows everything and "!x" excludes x.
type Package struct {
	ID           PackageID
	Dependencies map[string]PackageID
	OS           []string
	CPU          []string
}

// SortedDependencies returns the dependency ids ordered by [PackageID.Compare].
func (p *Package) SortedDependencies() []PackageID {
	ids := slices.Collect(maps.Values(p.Dependencies))
	slices.SortFunc(ids, PackageID.Compare)
	return ids
}

// MatchesSystem reports whether the package installs on the given os/cpu.
func (p *Package) MatchesSystem(os, cpu string) bool {
	return matchesPlatform(p.OS, os) && matchesPlatform(p.CPU, cpu)
}

func matchesPlatform(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	hasPositive := false
	for _, a := range allowed {
		if neg, ok := strings.CutPrefix(a, "!"); ok {
			if neg == value {
				return false
			}
			continue
		}
		hasPositive = true
		if a == value {
			return true
		}
	}
	return !hasPositive
}

// Snapshot is a fully resolved set of packages. The zero value is not usable;
// create one with [NewSnapshot] or [ReadSnapshot]. A Snapshot is safe for
// concurrent reads once populated.
type Snapshot struct {
	packageReqs  map[string]PackageNv // PackageReq.String() -> nv
	rootPackages map[PackageNv]string // nv -> serialized id
	packages     map[string]*Package  // serialized id -> package
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		packageReqs:  make(map[string]PackageNv),
		rootPackages: make(map[PackageNv]string),
		packages:     make(map[string]*Package),
	}
}

// AddPackage registers a package, replacing any package with the same id.
func (s *Snapshot) AddPackage(p *Package) {
	if p.Dependencies == nil {
		p.Dependencies = map[string]PackageID{}
	}
	s.packages[p.ID.Serialized()] = p
}

// AddRootPackage records that nv, when depended on directly, resolved to id.
func (s *Snapshot) AddRootPackage(nv PackageNv, id PackageID) {
	s.rootPackages[nv] = id.Serialized()
}

// AddPackageReq records that req resolved to nv.
func (s *Snapshot) AddPackageReq(req PackageReq, nv PackageNv) {
	s.packageReqs[req.String()] = nv
}

// ResolvePackageFromModule returns the package a graph's package module
// (an exact nv) resolved to.
func (s *Snapshot) ResolvePackageFromModule(nv PackageNv) (*Package, error) {
	key, ok := s.rootPackages[nv]
	if !ok {
		return nil, fmt.Errorf("%w: could not find npm package directly depended on for %q", ErrPackageNotFound, nv)
	}
	p, ok := s.packages[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s (root package of %q)", ErrPackageNotFound, key, nv)
	}
	return p, nil
}

// ResolveFromRequirement returns the package a requirement resolved to.
func (s *Snapshot) ResolveFromRequirement(req PackageReq) (*Package, error) {
	nv, ok := s.packageReqs[req.String()]
	if !ok {
		return nil, fmt.Errorf("%w: could not find npm package for %q", ErrPackageNotFound, req)
	}
	return s.ResolvePackageFromModule(nv)
}

// PackageFromID returns the package with the given id.
func (s *Snapshot) PackageFromID(id PackageID) (*Package, bool) {
	p, ok := s.packages[id.Serialized()]
	return p, ok
}

// AllPackages returns every package for every platform, sorted by id.
func (s *Snapshot) AllPackages() []*Package {
	pkgs := slices.Collect(maps.Values(s.packages))
	slices.SortFunc(pkgs, func(a, b *Package) int { return a.ID.Compare(b.ID) })
	return pkgs
}

// PackagesForSystem returns the packages that install on os/cpu, sorted by id.
func (s *Snapshot) PackagesForSystem(os, cpu string) []*Package {
	return slices.DeleteFunc(s.AllPackages(), func(p *Package) bool {
		return !p.MatchesSystem(os, cpu)
	})
}

// Len returns the number of packages across all platforms.
func (s *Snapshot) Len() int { return len(s.packages) }
