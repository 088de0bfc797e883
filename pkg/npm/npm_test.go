package npm

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePackageNv(t *testing.T) {
	tests := []struct {
		in      string
		want    PackageNv
		wantErr bool
	}{
		{in: "chalk@5.0.0", want: PackageNv{Name: "chalk", Version: "5.0.0"}},
		{in: "@types/node@20.1.0", want: PackageNv{Name: "@types/node", Version: "20.1.0"}},
		{in: "pkg@1.0.0-beta.1", want: PackageNv{Name: "pkg", Version: "1.0.0-beta.1"}},
		{in: "chalk", wantErr: true},
		{in: "chalk@^5", wantErr: true},
		{in: "@types@1.0.0", wantErr: true},
		{in: "chalk@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePackageNv(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidReference) {
					t.Errorf("ParsePackageNv(%q) error = %v, want ErrInvalidReference", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePackageNv(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePackageNv(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestParsePackageReq(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "chalk", want: "chalk@*"},
		{in: "chalk@^5", want: "chalk@^5"},
		{in: "chalk@latest", want: "chalk@latest"},
		{in: "@std/path@~1.2", want: "@std/path@~1.2"},
		{in: "chalk@>=1 <2", want: "chalk@>=1 <2"},
		{in: "chalk@%%", wantErr: true},
		{in: "_private@1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePackageReq(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePackageReq(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePackageReq(%q) error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParsePackageReq(%q) = %q, want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestParseReferences(t *testing.T) {
	req, err := ParsePackageReqReference("npm:@scope/pkg@^1.2/lib/index.js")
	if err != nil {
		t.Fatalf("ParsePackageReqReference error: %v", err)
	}
	if want := (PackageReq{Name: "@scope/pkg", VersionReq: "^1.2"}); req.Req != want {
		t.Errorf("Req = %+v, want %+v", req.Req, want)
	}
	if req.SubPath != "lib/index.js" {
		t.Errorf("SubPath = %q, want lib/index.js", req.SubPath)
	}
	if got := req.String(); got != "npm:@scope/pkg@^1.2/lib/index.js" {
		t.Errorf("String() = %q", got)
	}

	req, err = ParsePackageReqReference("npm:/chalk")
	if err != nil {
		t.Fatalf("ParsePackageReqReference(npm:/chalk) error: %v", err)
	}
	if req.Req.String() != "chalk@*" || req.SubPath != "" {
		t.Errorf("npm:/chalk = %+v, want chalk@* without sub path", req)
	}

	nv, err := ParsePackageNvReference("npm:chalk@5.0.0/source")
	if err != nil {
		t.Fatalf("ParsePackageNvReference error: %v", err)
	}
	if want := (PackageNv{Name: "chalk", Version: "5.0.0"}); nv.Nv != want {
		t.Errorf("Nv = %+v, want %+v", nv.Nv, want)
	}
	if got := nv.String(); got != "npm:chalk@5.0.0/source" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"chalk@1.0.0", "npm:", "https://x/y.ts", "npm:@scope"} {
		if _, err := ParsePackageReqReference(bad); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("ParsePackageReqReference(%q) error = %v, want ErrInvalidReference", bad, err)
		}
	}
	if _, err := ParsePackageNvReference("npm:chalk@^5"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("ParsePackageNvReference(npm:chalk@^5) error = %v, want ErrInvalidReference", err)
	}
}

func TestPackageIDRoundTrip(t *testing.T) {
	for _, s := range []string{
		"a@1.0.0",
		"@scope/a@1.0.0",
		"a@1.0.0_b@2.0.0",
		"a@1.0.0_b@2.0.0__c@3.0.0_d@4.0.0",
		"a@1.0.0_@scope/b@2.0.0",
		"my_pkg@1.0.0-rc.1_b@2.0.0",
	} {
		t.Run(s, func(t *testing.T) {
			id, err := ParsePackageID(s)
			if err != nil {
				t.Fatalf("ParsePackageID(%q) error: %v", s, err)
			}
			if got := id.Serialized(); got != s {
				t.Errorf("Serialized() = %q, want %q", got, s)
			}
		})
	}
}

func TestPackageIDPeers(t *testing.T) {
	id := mustID(t, "a@1.0.0_b@2.0.0__c@3.0.0_d@4.0.0")
	if len(id.PeerDependencies) != 2 {
		t.Fatalf("PeerDependencies = %v, want 2 peers", id.PeerDependencies)
	}
	// A peer serialized on its own starts again at level 0.
	if got := id.PeerDependencies[0].Serialized(); got != "b@2.0.0_c@3.0.0" {
		t.Errorf("peer[0].Serialized() = %q, want b@2.0.0_c@3.0.0", got)
	}
	if got := id.PeerDependencies[1].Nv.Name; got != "d" {
		t.Errorf("peer[1] name = %q, want d", got)
	}
}

func TestParsePackageIDInvalid(t *testing.T) {
	for _, bad := range []string{
		"",
		"a",
		"a@",
		"a@1.0.0__b@1.0.0",
		"chalk@@",
		"chalk@not-a-version",
		"chalk@1.0.0@x",
		"chalk@^5",
		"chalk@1.0",
		"a@1.0.0_b@latest",
	} {
		t.Run(bad, func(t *testing.T) {
			if id, err := ParsePackageID(bad); !errors.Is(err, ErrInvalidID) {
				t.Errorf("ParsePackageID(%q) = %v, %v; want ErrInvalidID", bad, id, err)
			}
		})
	}
}

func TestPackageIDCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a@2.0.0", "a@10.0.0", -1},
		{"a@2.0.0-beta.1", "a@2.0.0", -1},
		{"a@2.0.0", "a@2.0.0_c@1.0.0", -1},
		{"a@10.0.0", "b@1.0.0", -1},
		{"b@1.0.0", "b@1.0.0", 0},
	}
	for _, tt := range tests {
		if got := mustID(t, tt.a).Compare(mustID(t, tt.b)); sign(got) != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestSnapshotLookups(t *testing.T) {
	s := testSnapshot(t)

	pkg, err := s.ResolvePackageFromModule(PackageNv{Name: "chalk", Version: "5.0.0"})
	if err != nil || pkg.ID.Serialized() != "chalk@5.0.0" {
		t.Errorf("ResolvePackageFromModule(chalk@5.0.0) = %v, %v", pkg, err)
	}

	req, err := ParsePackageReq("chalk@^5")
	if err != nil {
		t.Fatal(err)
	}
	pkg, err = s.ResolveFromRequirement(req)
	if err != nil || pkg.ID.Serialized() != "chalk@5.0.0" {
		t.Errorf("ResolveFromRequirement(chalk@^5) = %v, %v", pkg, err)
	}

	if _, err := s.ResolvePackageFromModule(PackageNv{Name: "chalk", Version: "4.0.0"}); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("ResolvePackageFromModule(chalk@4.0.0) error = %v, want ErrPackageNotFound", err)
	}

	other, _ := ParsePackageReq("chalk@^4")
	if _, err := s.ResolveFromRequirement(other); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("ResolveFromRequirement(chalk@^4) error = %v, want ErrPackageNotFound", err)
	}

	if _, ok := s.PackageFromID(mustID(t, "ansi@1.0.0")); !ok {
		t.Error("PackageFromID(ansi@1.0.0) should exist")
	}
	if _, ok := s.PackageFromID(mustID(t, "nope@1.0.0")); ok {
		t.Error("PackageFromID(nope@1.0.0) should not exist")
	}
}

func TestSnapshotPlatforms(t *testing.T) {
	s := testSnapshot(t)

	all := s.AllPackages()
	if len(all) != 3 {
		t.Fatalf("AllPackages() = %d packages, want 3", len(all))
	}
	if all[0].ID.Serialized() != "ansi@1.0.0" || all[2].ID.Serialized() != "fsevents@2.3.0" {
		t.Errorf("AllPackages() order = %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}

	if got := len(s.PackagesForSystem("linux", "x64")); got != 2 {
		t.Errorf("PackagesForSystem(linux) = %d packages, want 2", got)
	}
	if got := len(s.PackagesForSystem("darwin", "arm64")); got != 3 {
		t.Errorf("PackagesForSystem(darwin) = %d packages, want 3", got)
	}
}

func TestMatchesPlatform(t *testing.T) {
	tests := []struct {
		list   []string
		system string
		want   bool
	}{
		{nil, "linux", true},
		{[]string{"linux", "darwin"}, "linux", true},
		{[]string{"darwin"}, "linux", false},
		{[]string{"!win32"}, "win32", false},
		{[]string{"!win32"}, "linux", true},
	}
	for _, tt := range tests {
		if got := matchesPlatform(tt.list, tt.system); got != tt.want {
			t.Errorf("matchesPlatform(%v, %q) = %v, want %v", tt.list, tt.system, got, tt.want)
		}
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := testSnapshot(t)
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}

	var back Snapshot
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if back.Len() != s.Len() {
		t.Errorf("Len() = %d, want %d", back.Len(), s.Len())
	}

	pkg, err := back.ResolvePackageFromModule(PackageNv{Name: "chalk", Version: "5.0.0"})
	if err != nil {
		t.Fatalf("ResolvePackageFromModule error: %v", err)
	}
	want := []PackageID{mustID(t, "ansi@1.0.0"), mustID(t, "fsevents@2.3.0")}
	if got := pkg.SortedDependencies(); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedDependencies() = %v, want %v", got, want)
	}
}

func TestSnapshotJSONInvalidID(t *testing.T) {
	for _, doc := range []string{
		`{"packages":[{"id":"nope"}]}`,
		`{"packages":[{"id":"chalk@@"}]}`,
		`{"packages":[{"id":"chalk@not-a-version"}]}`,
	} {
		var bad Snapshot
		if err := bad.UnmarshalJSON([]byte(doc)); err == nil {
			t.Errorf("UnmarshalJSON(%s) should fail", doc)
		}
	}
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s := NewSnapshot()
	s.AddPackage(&Package{
		ID: mustID(t, "chalk@5.0.0"),
		Dependencies: map[string]PackageID{
			"fsevents": mustID(t, "fsevents@2.3.0"),
			"ansi":     mustID(t, "ansi@1.0.0"),
		},
	})
	s.AddPackage(&Package{ID: mustID(t, "ansi@1.0.0")})
	s.AddPackage(&Package{ID: mustID(t, "fsevents@2.3.0"), OS: []string{"darwin"}})
	nv := PackageNv{Name: "chalk", Version: "5.0.0"}
	s.AddRootPackage(nv, mustID(t, "chalk@5.0.0"))
	req, err := ParsePackageReq("chalk@^5")
	if err != nil {
		t.Fatal(err)
	}
	s.AddPackageReq(req, nv)
	return s
}

func mustID(t *testing.T, s string) PackageID {
	t.Helper()
	id, err := ParsePackageID(s)
	if err != nil {
		t.Fatalf("ParsePackageID(%q) error: %v", s, err)
	}
	return id
}
