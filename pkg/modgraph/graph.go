package modgraph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/depinfo/pkg/npm"
)

// Graph is a resolved module graph. Build one with [New] and the Add methods,
// or load one with [ReadGraph]. A Graph is not safe for concurrent mutation;
// once built it is safe for concurrent reads.
type Graph struct {
	roots     []string
	modules   map[string]Module
	errors    map[string]*ModuleError
	redirects map[string]string
}

// New returns an empty graph with the given root specifiers.
func New(roots ...string) *Graph {
	return &Graph{
		roots:     slices.Clone(roots),
		modules:   make(map[string]Module),
		errors:    make(map[string]*ModuleError),
		redirects: make(map[string]string),
	}
}

// AddModule adds a loaded module. It fails with [ErrInvalidModule] for an
// empty specifier and [ErrDuplicateModule] if the slot is taken.
func (g *Graph) AddModule(m Module) error {
	spec := m.Specifier()
	if spec == "" {
		return fmt.Errorf("%w: empty specifier", ErrInvalidModule)
	}
	if g.hasSlot(spec) {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, spec)
	}
	g.modules[spec] = m
	return nil
}

// AddError records a module slot that failed to load.
func (g *Graph) AddError(e *ModuleError) error {
	if e.Specifier == "" {
		return fmt.Errorf("%w: empty specifier", ErrInvalidModule)
	}
	if g.hasSlot(e.Specifier) {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, e.Specifier)
	}
	g.errors[e.Specifier] = e
	return nil
}

// AddRedirect records that from was redirected to to.
func (g *Graph) AddRedirect(from, to string) {
	g.redirects[from] = to
}

func (g *Graph) hasSlot(spec string) bool {
	_, ok := g.modules[spec]
	_, bad := g.errors[spec]
	return ok || bad
}

// Roots returns the root specifiers in the order they were given.
func (g *Graph) Roots() []string {
	return slices.Clone(g.roots)
}

// Redirects returns a copy of the redirect table.
func (g *Graph) Redirects() map[string]string {
	return maps.Clone(g.redirects)
}

// Resolve follows redirects from specifier and returns the final target.
// Redirect cycles stop at the first repeated specifier.
func (g *Graph) Resolve(specifier string) string {
	seen := map[string]bool{specifier: true}
	for {
		next, ok := g.redirects[specifier]
		if !ok || seen[next] {
			return specifier
		}
		seen[next] = true
		specifier = next
	}
}

// TryGet resolves specifier and returns its module. A slot that failed to
// load returns its [*ModuleError]; a specifier the graph knows nothing about
// returns (nil, nil).
func (g *Graph) TryGet(specifier string) (Module, error) {
	specifier = g.Resolve(specifier)
	if m, ok := g.modules[specifier]; ok {
		return m, nil
	}
	if e, ok := g.errors[specifier]; ok {
		return nil, e
	}
	return nil, nil
}

// Modules returns the loaded modules sorted by specifier. Errored slots are
// not included.
func (g *Graph) Modules() []Module {
	mods := slices.Collect(maps.Values(g.modules))
	slices.SortFunc(mods, func(a, b Module) int {
		return strings.Compare(a.Specifier(), b.Specifier())
	})
	return mods
}

// ModuleCount returns the number of loaded modules.
func (g *Graph) ModuleCount() int { return len(g.modules) }

// Errors returns the errored slots sorted by specifier.
func (g *Graph) Errors() []*ModuleError {
	errs := slices.Collect(maps.Values(g.errors))
	slices.SortFunc(errs, func(a, b *ModuleError) int {
		return strings.Compare(a.Specifier, b.Specifier)
	})
	return errs
}

// NpmPackages returns the distinct package versions referenced by package
// modules, sorted.
func (g *Graph) NpmPackages() []npm.PackageNv {
	set := make(map[npm.PackageNv]struct{})
	for _, m := range g.modules {
		if m, ok := m.(*NpmModule); ok {
			set[m.NvReference.Nv] = struct{}{}
		}
	}
	nvs := slices.Collect(maps.Keys(set))
	slices.SortFunc(nvs, npm.PackageNv.Compare)
	return nvs
}
