package npm

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type snapshotJSON struct {
	PackageReqs  map[string]string `json:"packageReqs"`
	RootPackages map[string]string `json:"rootPackages"`
	Packages     []packageJSON     `json:"packages"`
}

type packageJSON struct {
	ID           string            `json:"id"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	OS           []string          `json:"os,omitempty"`
	CPU          []string          `json:"cpu,omitempty"`
}

// ReadSnapshot decodes a snapshot document from r:
//
//	{
//	  "packageReqs":  {"chalk@^5": "chalk@5.0.0"},
//	  "rootPackages": {"chalk@5.0.0": "chalk@5.0.0"},
//	  "packages": [{"id": "chalk@5.0.0", "dependencies": {"ansi": "ansi@1.0.0"}}]
//	}
//
// Keys are normalized by parsing, so "chalk" and "chalk@*" name the same
// requirement. ReadSnapshot does not close r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	s := NewSnapshot()
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSnapshotFile reads a snapshot document from path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var doc snapshotJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	*s = *NewSnapshot()

	for _, p := range doc.Packages {
		id, err := ParsePackageID(p.ID)
		if err != nil {
			return fmt.Errorf("package: %w", err)
		}
		pkg := &Package{ID: id, Dependencies: make(map[string]PackageID, len(p.Dependencies)), OS: p.OS, CPU: p.CPU}
		for name, raw := range p.Dependencies {
			depID, err := ParsePackageID(raw)
			if err != nil {
				return fmt.Errorf("package %s dependency %s: %w", p.ID, name, err)
			}
			pkg.Dependencies[name] = depID
		}
		s.AddPackage(pkg)
	}
	for rawNv, rawID := range doc.RootPackages {
		nv, err := ParsePackageNv(rawNv)
		if err != nil {
			return fmt.Errorf("root package: %w", err)
		}
		id, err := ParsePackageID(rawID)
		if err != nil {
			return fmt.Errorf("root package %s: %w", rawNv, err)
		}
		s.AddRootPackage(nv, id)
	}
	for rawReq, rawNv := range doc.PackageReqs {
		req, err := ParsePackageReq(rawReq)
		if err != nil {
			return fmt.Errorf("package req: %w", err)
		}
		nv, err := ParsePackageNv(rawNv)
		if err != nil {
			return fmt.Errorf("package req %s: %w", rawReq, err)
		}
		s.AddPackageReq(req, nv)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Packages are written in id order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	doc := snapshotJSON{
		PackageReqs:  make(map[string]string, len(s.packageReqs)),
		RootPackages: make(map[string]string, len(s.rootPackages)),
		Packages:     make([]packageJSON, 0, len(s.packages)),
	}
	for req, nv := range s.packageReqs {
		doc.PackageReqs[req] = nv.String()
	}
	for nv, id := range s.rootPackages {
		doc.RootPackages[nv.String()] = id
	}
	for _, p := range s.AllPackages() {
		pj := packageJSON{ID: p.ID.Serialized(), OS: p.OS, CPU: p.CPU}
		if len(p.Dependencies) > 0 {
			pj.Dependencies = make(map[string]string, len(p.Dependencies))
			for name, id := range p.Dependencies {
				pj.Dependencies[name] = id.Serialized()
			}
		}
		doc.Packages = append(doc.Packages, pj)
	}
	return json.Marshal(doc)
}
