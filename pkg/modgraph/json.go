package modgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depinfo/pkg/npm"
)

type graphJSON struct {
	Roots     []string          `json:"roots"`
	Modules   []moduleJSON      `json:"modules"`
	Redirects map[string]string `json:"redirects,omitempty"`
}

type moduleJSON struct {
	Kind            string               `json:"kind,omitempty"`
	Specifier       string               `json:"specifier"`
	Size            *uint64              `json:"size,omitempty"`
	MediaType       string               `json:"mediaType,omitempty"`
	Local           string               `json:"local,omitempty"`
	Emit            string               `json:"emit,omitempty"`
	Map             string               `json:"map,omitempty"`
	ModuleName      string               `json:"moduleName,omitempty"`
	Dependencies    []dependencyJSON     `json:"dependencies,omitempty"`
	TypesDependency *typesDependencyJSON `json:"typesDependency,omitempty"`
	Error           string               `json:"error,omitempty"`
	ErrorKind       string               `json:"errorKind,omitempty"`
}

type dependencyJSON struct {
	Specifier string          `json:"specifier"`
	Code      *resolutionJSON `json:"code,omitempty"`
	Type      *resolutionJSON `json:"type,omitempty"`
	IsDynamic bool            `json:"isDynamic,omitempty"`
}

type typesDependencyJSON struct {
	Specifier  string          `json:"specifier"`
	Dependency *resolutionJSON `json:"dependency,omitempty"`
}

type resolutionJSON struct {
	Specifier string `json:"specifier,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes g as indented JSON. Modules (and errored slots) are
// written sorted by specifier.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraphFile reads a JSON graph document from path.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a graph document:
//
//	{
//	  "roots": ["file:///app/main.ts"],
//	  "modules": [
//	    {"kind": "esm", "specifier": "file:///app/main.ts", "size": 120,
//	     "mediaType": "TypeScript",
//	     "dependencies": [{"specifier": "npm:chalk@5", "code": {"specifier": "npm:chalk@5.0.0"}}]},
//	    {"kind": "npm", "specifier": "npm:chalk@5.0.0"},
//	    {"specifier": "file:///app/gone.ts", "error": "Module not found", "errorKind": "missing"}
//	  ],
//	  "redirects": {"npm:chalk@5": "npm:chalk@5.0.0"}
//	}
//
// A record with an "error" field is an errored slot whatever its kind.
func ReadGraph(r io.Reader) (*Graph, error) {
	g := New()
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, err
	}
	return g, nil
}

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphJSON{
		Roots:   g.Roots(),
		Modules: make([]moduleJSON, 0, len(g.modules)+len(g.errors)),
	}
	if doc.Roots == nil {
		doc.Roots = []string{}
	}
	if len(g.redirects) > 0 {
		doc.Redirects = g.Redirects()
	}

	mods, errs := g.Modules(), g.Errors()
	for len(mods) > 0 || len(errs) > 0 {
		if len(errs) == 0 || (len(mods) > 0 && mods[0].Specifier() < errs[0].Specifier) {
			doc.Modules = append(doc.Modules, encodeModule(mods[0]))
			mods = mods[1:]
			continue
		}
		e := errs[0]
		doc.Modules = append(doc.Modules, moduleJSON{
			Specifier: e.Specifier,
			Error:     e.Error(),
			ErrorKind: string(e.Kind),
		})
		errs = errs[1:]
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	*g = *New(doc.Roots...)
	for from, to := range doc.Redirects {
		g.AddRedirect(from, to)
	}
	for i, mj := range doc.Modules {
		if mj.Error != "" || mj.ErrorKind != "" {
			err := g.AddError(&ModuleError{
				Specifier: mj.Specifier,
				Kind:      ParseErrorKind(mj.ErrorKind),
				Message:   mj.Error,
			})
			if err != nil {
				return fmt.Errorf("module %d: %w", i, err)
			}
			continue
		}
		m, err := decodeModule(mj)
		if err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
		if err := g.AddModule(m); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
	}
	return nil
}

func encodeModule(m Module) moduleJSON {
	mj := moduleJSON{Kind: string(m.Kind()), Specifier: m.Specifier()}
	if size, ok := Size(m); ok {
		mj.Size = &size
	}
	if ci := CacheInfoOf(m); ci != nil {
		mj.Local, mj.Emit, mj.Map = ci.Local, ci.Emit, ci.Map
	}
	switch m := m.(type) {
	case *EsmModule:
		mj.MediaType = m.MediaType
		for _, d := range m.Dependencies {
			mj.Dependencies = append(mj.Dependencies, dependencyJSON{
				Specifier: d.Specifier,
				Code:      encodeResolution(d.Code),
				Type:      encodeResolution(d.Type),
				IsDynamic: d.IsDynamic,
			})
		}
		if td := m.TypesDependency; td != nil {
			mj.TypesDependency = &typesDependencyJSON{
				Specifier:  td.Specifier,
				Dependency: encodeResolution(td.Dependency),
			}
		}
	case *JSONModule:
		mj.MediaType = m.MediaType
	case *NodeModule:
		mj.ModuleName = m.ModuleName
	case *NpmModule, *ExternalModule:
	}
	return mj
}

func decodeModule(mj moduleJSON) (Module, error) {
	var cache *CacheInfo
	if mj.Local != "" || mj.Emit != "" || mj.Map != "" {
		cache = &CacheInfo{Local: mj.Local, Emit: mj.Emit, Map: mj.Map}
	}
	var size uint64
	if mj.Size != nil {
		size = *mj.Size
	}

	switch Kind(mj.Kind) {
	case KindEsm:
		m := &EsmModule{
			ModuleSpecifier: mj.Specifier,
			MediaType:       mj.MediaType,
			Size:            size,
			CacheInfo:       cache,
		}
		for _, d := range mj.Dependencies {
			m.Dependencies = append(m.Dependencies, Dependency{
				Specifier: d.Specifier,
				Code:      decodeResolution(d.Code),
				Type:      decodeResolution(d.Type),
				IsDynamic: d.IsDynamic,
			})
		}
		if td := mj.TypesDependency; td != nil {
			m.TypesDependency = &TypesDependency{
				Specifier:  td.Specifier,
				Dependency: decodeResolution(td.Dependency),
			}
		}
		return m, nil
	case KindJSON:
		return &JSONModule{ModuleSpecifier: mj.Specifier, MediaType: mj.MediaType, Size: size, CacheInfo: cache}, nil
	case KindNpm:
		ref, err := npm.ParsePackageNvReference(mj.Specifier)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModule, err)
		}
		return &NpmModule{ModuleSpecifier: mj.Specifier, NvReference: ref}, nil
	case KindNode:
		return &NodeModule{ModuleSpecifier: mj.Specifier, ModuleName: mj.ModuleName}, nil
	case KindExternal:
		return &ExternalModule{ModuleSpecifier: mj.Specifier}, nil
	}
	return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidModule, mj.Specifier, mj.Kind)
}

func encodeResolution(r Resolution) *resolutionJSON {
	switch r.State {
	case ResolutionOk:
		return &resolutionJSON{Specifier: r.Specifier}
	case ResolutionErr:
		return &resolutionJSON{Error: r.Err}
	}
	return nil
}

func decodeResolution(r *resolutionJSON) Resolution {
	switch {
	case r == nil:
		return Resolution{}
	case r.Error != "":
		return Unresolvable(r.Error)
	case r.Specifier != "":
		return Resolved(r.Specifier)
	}
	return Resolution{}
}
