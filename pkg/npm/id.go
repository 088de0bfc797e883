package npm

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// PackageID identifies one concrete resolved package: a name and version plus
// the peer dependency ids it was resolved with. Use [PackageID.Serialized]
// as a map key; PackageID itself is not comparable.
type PackageID struct {
	Nv               PackageNv
	PeerDependencies []PackageID
}

// Serialized returns the canonical string form, e.g. "a@1.0.0_b@2.0.0".
func (id PackageID) Serialized() string {
	var b strings.Builder
	id.writeTo(&b, 0)
	return b.String()
}

func (id PackageID) String() string { return id.Serialized() }

func (id PackageID) writeTo(b *strings.Builder, level int) {
	b.WriteString(id.Nv.String())
	for _, peer := range id.PeerDependencies {
		b.WriteString(strings.Repeat("_", level+1))
		peer.writeTo(b, level+1)
	}
}

// Compare orders ids by nv, then element-wise by peers, then by peer count.
func (id PackageID) Compare(other PackageID) int {
	if c := id.Nv.Compare(other.Nv); c != 0 {
		return c
	}
	for i := range min(len(id.PeerDependencies), len(other.PeerDependencies)) {
		if c := id.PeerDependencies[i].Compare(other.PeerDependencies[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(id.PeerDependencies), len(other.PeerDependencies))
}

// ParsePackageID parses the serialized form produced by [PackageID.Serialized].
func ParsePackageID(s string) (PackageID, error) {
	id, rest, err := parseIDAtLevel(s, 0)
	if err != nil {
		return PackageID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	if rest != "" {
		return PackageID{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidID, s, rest)
	}
	return id, nil
}

func parseIDAtLevel(s string, level int) (PackageID, string, error) {
	nv, rest, err := parseNvPrefix(s)
	if err != nil {
		return PackageID{}, "", err
	}
	id := PackageID{Nv: nv}
	sep := strings.Repeat("_", level+1)
	for strings.HasPrefix(rest, sep) && !strings.HasPrefix(rest, sep+"_") {
		peer, r, err := parseIDAtLevel(rest[len(sep):], level+1)
		if err != nil {
			return PackageID{}, "", err
		}
		id.PeerDependencies = append(id.PeerDependencies, peer)
		rest = r
	}
	return id, rest, nil
}

// parseNvPrefix reads "name@version" from the front of s. The version ends at
// the first underscore, which versions never contain.
func parseNvPrefix(s string) (PackageNv, string, error) {
	start := 0
	if strings.HasPrefix(s, "@") {
		slash := strings.IndexByte(s, '/')
		if slash < 0 {
			return PackageNv{}, "", fmt.Errorf("scoped name needs a slash")
		}
		start = slash + 1
	}
	at := strings.IndexByte(s[start:], '@')
	if at <= 0 {
		return PackageNv{}, "", fmt.Errorf("missing version")
	}
	name := s[:start+at]
	rest := s[start+at+1:]
	end := strings.IndexByte(rest, '_')
	if end < 0 {
		end = len(rest)
	}
	version := rest[:end]
	if version == "" {
		return PackageNv{}, "", fmt.Errorf("empty version")
	}
	if strings.ContainsRune(version, '@') {
		return PackageNv{}, "", fmt.Errorf("version %q contains '@'", version)
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return PackageNv{}, "", fmt.Errorf("version %q: %v", version, err)
	}
	if err := validateName(name); err != nil {
		return PackageNv{}, "", err
	}
	return PackageNv{Name: name, Version: version}, rest[end:], nil
}
