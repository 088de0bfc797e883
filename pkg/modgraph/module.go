package modgraph

import "github.com/matzehuels/depinfo/pkg/npm"

// Kind names a module variant. The values double as the "kind" field of the
// JSON document.
type Kind string

const (
	KindEsm      Kind = "esm"
	KindJSON     Kind = "json"
	KindNpm      Kind = "npm"
	KindNode     Kind = "node"
	KindExternal Kind = "external"
)

// Module is one node of the graph. The implementations are [*EsmModule],
// [*JSONModule], [*NpmModule], [*NodeModule] and [*ExternalModule].
type Module interface {
	Specifier() string
	Kind() Kind
	isModule()
}

// CacheInfo holds the on-disk locations of a cached source module. Empty
// fields are unknown.
type CacheInfo struct {
	Local string
	Emit  string
	Map   string
}

// EsmModule is a parsed JavaScript or TypeScript module.
type EsmModule struct {
	ModuleSpecifier string
	MediaType       string
	Size            uint64
	CacheInfo       *CacheInfo
	// Dependencies are kept in import order.
	Dependencies    []Dependency
	TypesDependency *TypesDependency
}

func (m *EsmModule) Specifier() string { return m.ModuleSpecifier }
func (m *EsmModule) Kind() Kind        { return KindEsm }
func (*EsmModule) isModule()           {}

// JSONModule is a JSON document imported as a module.
type JSONModule struct {
	ModuleSpecifier string
	MediaType       string
	Size            uint64
	CacheInfo       *CacheInfo
}

func (m *JSONModule) Specifier() string { return m.ModuleSpecifier }
func (m *JSONModule) Kind() Kind        { return KindJSON }
func (*JSONModule) isModule()           {}

// NpmModule is the synthetic module for an "npm:" specifier. It carries no
// edges; its dependencies live in the resolution snapshot.
type NpmModule struct {
	ModuleSpecifier string
	NvReference     npm.PackageNvReference
}

func (m *NpmModule) Specifier() string { return m.ModuleSpecifier }
func (m *NpmModule) Kind() Kind        { return KindNpm }
func (*NpmModule) isModule()           {}

// NodeModule is a "node:" built-in.
type NodeModule struct {
	ModuleSpecifier string
	ModuleName      string
}

func (m *NodeModule) Specifier() string { return m.ModuleSpecifier }
func (m *NodeModule) Kind() Kind        { return KindNode }
func (*NodeModule) isModule()           {}

// ExternalModule is a module the graph references but did not load.
type ExternalModule struct {
	ModuleSpecifier string
}

func (m *ExternalModule) Specifier() string { return m.ModuleSpecifier }
func (m *ExternalModule) Kind() Kind        { return KindExternal }
func (*ExternalModule) isModule()           {}

// Size returns the byte size of a source module. Package, node and external
// modules have no size of their own.
func Size(m Module) (uint64, bool) {
	switch m := m.(type) {
	case *EsmModule:
		return m.Size, true
	case *JSONModule:
		return m.Size, true
	case *NpmModule, *NodeModule, *ExternalModule:
		return 0, false
	}
	return 0, false
}

// CacheInfoOf returns the cache paths of a source module, or nil.
func CacheInfoOf(m Module) *CacheInfo {
	switch m := m.(type) {
	case *EsmModule:
		return m.CacheInfo
	case *JSONModule:
		return m.CacheInfo
	case *NpmModule, *NodeModule, *ExternalModule:
		return nil
	}
	return nil
}

// ResolutionState tells which of the three shapes a [Resolution] has.
type ResolutionState int

const (
	// ResolutionNone means the channel is not used by the edge.
	ResolutionNone ResolutionState = iota
	// ResolutionOk means the edge resolved to Specifier.
	ResolutionOk
	// ResolutionErr means resolving the edge failed with Err.
	ResolutionErr
)

// Resolution is the outcome of resolving one channel of an import edge. The
// zero value is [ResolutionNone].
type Resolution struct {
	State     ResolutionState
	Specifier string
	Err       string
}

// Resolved returns an Ok resolution pointing at specifier.
func Resolved(specifier string) Resolution {
	return Resolution{State: ResolutionOk, Specifier: specifier}
}

// Unresolvable returns an Err resolution carrying msg.
func Unresolvable(msg string) Resolution {
	return Resolution{State: ResolutionErr, Err: msg}
}

func (r Resolution) IsNone() bool { return r.State == ResolutionNone }

// Dependency is an import edge. Specifier is the text written in the import
// statement; Code and Type hold where the runtime and the type checker
// resolved it.
type Dependency struct {
	Specifier string
	Code      Resolution
	Type      Resolution
	IsDynamic bool
}

// TypesDependency is a module's own type declaration edge, such as an
// X-TypeScript-Types header or a @ts-types directive.
type TypesDependency struct {
	Specifier  string
	Dependency Resolution
}
