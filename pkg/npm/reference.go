package npm

import (
	"fmt"
	"strings"
)

const specifierScheme = "npm:"

// PackageReqReference is an "npm:" specifier naming a requirement, as found in
// import statements: npm:chalk@^5/source/index.js.
type PackageReqReference struct {
	Req     PackageReq
	SubPath string
}

func (r PackageReqReference) String() string {
	return specifierScheme + r.Req.String() + subPathSuffix(r.SubPath)
}

// PackageNvReference is an "npm:" specifier naming an exact version, as used
// for package modules in a module graph: npm:chalk@5.0.0.
type PackageNvReference struct {
	Nv      PackageNv
	SubPath string
}

func (r PackageNvReference) String() string {
	return specifierScheme + r.Nv.String() + subPathSuffix(r.SubPath)
}

// ParsePackageReqReference parses an "npm:" requirement specifier.
func ParsePackageReqReference(specifier string) (PackageReqReference, error) {
	head, sub, err := splitSpecifier(specifier)
	if err != nil {
		return PackageReqReference{}, err
	}
	req, err := ParsePackageReq(head)
	if err != nil {
		return PackageReqReference{}, err
	}
	return PackageReqReference{Req: req, SubPath: sub}, nil
}

// ParsePackageNvReference parses an "npm:" specifier pinned to an exact version.
func ParsePackageNvReference(specifier string) (PackageNvReference, error) {
	head, sub, err := splitSpecifier(specifier)
	if err != nil {
		return PackageNvReference{}, err
	}
	nv, err := ParsePackageNv(head)
	if err != nil {
		return PackageNvReference{}, err
	}
	return PackageNvReference{Nv: nv, SubPath: sub}, nil
}

// splitSpecifier strips the scheme (and an optional leading slash) and splits
// the package part from the sub path.
func splitSpecifier(specifier string) (head, sub string, err error) {
	rest, ok := strings.CutPrefix(specifier, specifierScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q: missing %q scheme", ErrInvalidReference, specifier, specifierScheme)
	}
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "", "", fmt.Errorf("%w: %q: empty package", ErrInvalidReference, specifier)
	}

	from := 0
	if strings.HasPrefix(rest, "@") {
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return "", "", fmt.Errorf("%w: %q: scoped name needs a slash", ErrInvalidReference, specifier)
		}
		from = slash + 1
	}
	if i := strings.IndexByte(rest[from:], '/'); i >= 0 {
		head, sub = rest[:from+i], rest[from+i+1:]
		return head, strings.TrimSuffix(sub, "/"), nil
	}
	return rest, "", nil
}

func subPathSuffix(sub string) string {
	if sub == "" {
		return ""
	}
	return "/" + sub
}
