package npm

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidReference is returned when a package name, version, requirement
	// or "npm:" specifier cannot be parsed.
	ErrInvalidReference = errors.New("invalid npm reference")

	// ErrInvalidID is returned by [ParsePackageID] for malformed package ids.
	ErrInvalidID = errors.New("invalid npm package id")

	// ErrPackageNotFound is returned by snapshot lookups that miss.
	ErrPackageNotFound = errors.New("npm package not found")
)

// PackageNv is a package name with an exact version. It is comparable and
// used as a map key.
type PackageNv struct {
	Name    string
	Version string
}

func (nv PackageNv) String() string { return nv.Name + "@" + nv.Version }

// Compare orders by name, then by semantic version precedence. Versions that
// do not parse as semver fall back to string order.
func (nv PackageNv) Compare(other PackageNv) int {
	if c := cmp.Compare(nv.Name, other.Name); c != 0 {
		return c
	}
	return compareVersions(nv.Version, other.Version)
}

func compareVersions(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return cmp.Compare(a, b)
	}
	if c := va.Compare(vb); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// ParsePackageNv parses "name@version" where version is an exact semantic
// version. Scoped names ("@scope/name@1.0.0") are supported.
func ParsePackageNv(s string) (PackageNv, error) {
	name, version, err := splitNameVersion(s)
	if err != nil {
		return PackageNv{}, err
	}
	if version == "" {
		return PackageNv{}, fmt.Errorf("%w: %q has no version", ErrInvalidReference, s)
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return PackageNv{}, fmt.Errorf("%w: %q: %v", ErrInvalidReference, s, err)
	}
	return PackageNv{Name: name, Version: version}, nil
}

// PackageReq is a package name with a version requirement. An empty
// requirement is normalized to "*".
type PackageReq struct {
	Name       string
	VersionReq string
}

func (r PackageReq) String() string { return r.Name + "@" + r.VersionReq }

var distTagRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// ParsePackageReq parses "name", "name@range" or "name@tag". Ranges must be
// accepted by semver constraints; anything else must look like a dist-tag.
func ParsePackageReq(s string) (PackageReq, error) {
	name, req, err := splitNameVersion(s)
	if err != nil {
		return PackageReq{}, err
	}
	if req == "" {
		req = "*"
	}
	if _, err := semver.NewConstraint(req); err != nil && !distTagRe.MatchString(req) {
		return PackageReq{}, fmt.Errorf("%w: %q: bad version requirement", ErrInvalidReference, s)
	}
	return PackageReq{Name: name, VersionReq: req}, nil
}

// splitNameVersion splits "name@rest" honouring a leading scope. rest is
// empty when there is no version part.
func splitNameVersion(s string) (name, rest string, err error) {
	start := 0
	if strings.HasPrefix(s, "@") {
		slash := strings.IndexByte(s, '/')
		if slash < 2 {
			return "", "", fmt.Errorf("%w: %q: scoped name needs a slash", ErrInvalidReference, s)
		}
		start = slash + 1
	}
	at := strings.IndexByte(s[start:], '@')
	if at < 0 {
		name = s
	} else {
		name, rest = s[:start+at], s[start+at+1:]
		if rest == "" {
			return "", "", fmt.Errorf("%w: %q: empty version", ErrInvalidReference, s)
		}
	}
	if err := validateName(name); err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrInvalidReference, s, err)
	}
	return name, rest, nil
}

func validateName(name string) error {
	base := name
	if strings.HasPrefix(name, "@") {
		_, base, _ = strings.Cut(name, "/")
	}
	switch {
	case base == "":
		return errors.New("empty package name")
	case strings.ContainsAny(name, " \t\n"):
		return errors.New("package name contains whitespace")
	case strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_"):
		return errors.New("package name cannot start with a period or underscore")
	}
	return nil
}
