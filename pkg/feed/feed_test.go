package feed

import (
	"testing"

	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/version"
)

func TestIdentityEqual(t *testing.T) {
	a := Identity{ID: "Serilog", Version: version.MustParse("2.12.0")}
	b := Identity{ID: "serilog", Version: version.MustParse("2.12.0.0")}
	c := Identity{ID: "serilog", Version: version.MustParse("2.12.1")}

	if !a.Equal(b) {
		t.Error("identities differing only in id case and trailing zero revision should be equal")
	}
	if a.Equal(c) {
		t.Error("different versions should not be equal")
	}
	if a.Key() != b.Key() {
		t.Errorf("equal identities should share a key: %q vs %q", a.Key(), b.Key())
	}
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("Newtonsoft.Json", "13.0.3")
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	if got := id.String(); got != "Newtonsoft.Json@13.0.3" {
		t.Errorf("String() = %q", got)
	}

	if _, err := NewIdentity("", "1.0.0"); err == nil {
		t.Error("empty id should fail")
	}
	if _, err := NewIdentity("pkg", "not-a-version"); err == nil {
		t.Error("bad version should fail")
	}
}

func TestSourceSupportsDependencyQuery(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindRemote, true},
		{KindLocal, true},
		{KindArchive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s := &Source{Name: "s", Kind: tt.kind}
			if got := s.SupportsDependencyQuery(); got != tt.want {
				t.Errorf("SupportsDependencyQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{"remote ok", Source{Name: "main", Kind: KindRemote, URL: "https://feeds.example.com"}, false},
		{"local ok", Source{Name: "lab", Kind: KindLocal, Path: "/srv/feed"}, false},
		{"remote missing url", Source{Name: "main", Kind: KindRemote}, true},
		{"local missing path", Source{Name: "lab", Kind: KindLocal}, true},
		{"no name", Source{Kind: KindRemote, URL: "https://x"}, true},
		{"unknown kind", Source{Name: "x", Kind: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNarrowGroups(t *testing.T) {
	dep := func(id string) Dependency {
		return Dependency{ID: id, Range: version.MustParseRange("1.0.0")}
	}

	groups := []DependencyGroup{
		{Framework: "netstandard2.0", Dependencies: []Dependency{dep("std-dep")}},
		{Framework: "net6.0", Dependencies: []Dependency{dep("net6-dep")}},
		{Framework: "net8.0", Dependencies: []Dependency{dep("net8-dep")}},
	}

	tests := []struct {
		target string
		want   string // dependency id, "" for none
	}{
		{"net8.0", "net8-dep"},
		{"net7.0", "net6-dep"},
		{"net6.0", "net6-dep"},
		{"netstandard2.1", "std-dep"},
		{"netstandard1.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			deps := NarrowGroups(groups, framework.MustParse(tt.target))
			if tt.want == "" {
				if len(deps) != 0 {
					t.Fatalf("expected no deps, got %v", deps)
				}
				return
			}
			if len(deps) != 1 || deps[0].ID != tt.want {
				t.Errorf("NarrowGroups = %v, want [%s]", deps, tt.want)
			}
		})
	}
}

func TestNarrowGroupsSkipsUnknownMonikers(t *testing.T) {
	groups := []DependencyGroup{
		{Framework: "quantum9.9", Dependencies: []Dependency{{ID: "bogus"}}},
		{Framework: "any", Dependencies: []Dependency{{ID: "portable"}}},
	}

	deps := NarrowGroups(groups, framework.MustParse("net8.0"))
	if len(deps) != 1 || deps[0].ID != "portable" {
		t.Errorf("NarrowGroups = %v, want [portable]", deps)
	}
}

func TestSourcedInfoKeyDistinguishesSources(t *testing.T) {
	info := PackageInfo{Identity: Identity{ID: "pkg", Version: version.MustParse("1.0.0")}, Listed: true}
	a := SourcedInfo{PackageInfo: info, Source: &Source{Name: "feed-a"}}
	b := SourcedInfo{PackageInfo: info, Source: &Source{Name: "feed-b"}}

	if a.Key() == b.Key() {
		t.Error("same identity from different feeds must remain distinct candidates")
	}
}
