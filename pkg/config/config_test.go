package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
target = "net8.0"
include_prerelease = true
max_parallelism = 4
cache = "none"

[[feeds]]
name = "main"
kind = "remote"
url = "https://feeds.example.com"
api_key_env = "MAIN_FEED_KEY"

[[feeds]]
name = "lab"
kind = "local"
path = "/srv/feeds/lab"
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Target != "net8.0" || !cfg.IncludePrerelease || cfg.MaxParallelism != 4 {
		t.Errorf("defaults = %+v", cfg)
	}

	sources := cfg.Sources()
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].Name != "main" || sources[0].Kind != feed.KindRemote || !sources[0].Enabled {
		t.Errorf("main = %+v", sources[0])
	}
	if sources[1].Enabled {
		t.Error("lab should be disabled")
	}
	if got := cfg.TargetFramework().String(); got != "net8.0" {
		t.Errorf("TargetFramework = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `target = `},
		{"unknown target", `target = "net999"`},
		{"unknown cache", `cache = "floppy"`},
		{"duplicate feed names", `
[[feeds]]
name = "main"
kind = "remote"
url = "https://a"

[[feeds]]
name = "main"
kind = "remote"
url = "https://b"
`},
		{"remote without url", `
[[feeds]]
name = "main"
kind = "remote"
`},
		{"unknown kind", `
[[feeds]]
name = "main"
kind = "carrier-pigeon"
url = "https://a"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Target = "net6.0"
	cfg.Feeds = []FeedConfig{{Name: "main", Kind: "remote", URL: "https://feeds.example.com"}}

	path := filepath.Join(t.TempDir(), "sub", "feeds.toml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Target != "net6.0" || len(loaded.Feeds) != 1 || loaded.Feeds[0].Name != "main" {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}
