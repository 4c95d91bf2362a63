package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pkgfed/pkgfed/pkg/cache"
	"github.com/pkgfed/pkgfed/pkg/config"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	if c.Logger == nil {
		t.Fatal("New() returned a CLI without a logger")
	}

	// Test that it can log
	c.Logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, log.InfoLevel)
			c.SetLogLevel(tt.level)
			tt.logFunc(c.Logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	prog := newProgress(c.Logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	// Small delay to ensure measurable duration
	time.Sleep(10 * time.Millisecond)

	prog.done("test completed")

	output := buf.String()
	if output == "" {
		t.Error("progress.done() should produce output")
	}

	// Should contain the message
	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Error("progress.done() output should contain message")
	}
}

func TestOpenCacheBackendSwitch(t *testing.T) {
	// Redirect the user cache dir so the file backend stays inside the
	// test sandbox. Redis and mongo need live servers and are covered
	// by their own backend tests.
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tests := []struct {
		name    string
		backend string
		want    any
	}{
		{"none", config.CacheNone, &cache.NullCache{}},
		{"file", config.CacheFile, &cache.FileCache{}},
		{"default is file", "", &cache.FileCache{}},
	}

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.backend

			backend, err := c.openCache(context.Background(), cfg)
			if err != nil {
				t.Fatalf("openCache(%q) failed: %v", tt.backend, err)
			}
			defer backend.Close()

			switch tt.want.(type) {
			case *cache.NullCache:
				if _, ok := backend.(*cache.NullCache); !ok {
					t.Errorf("openCache(%q) = %T, want *cache.NullCache", tt.backend, backend)
				}
			case *cache.FileCache:
				if _, ok := backend.(*cache.FileCache); !ok {
					t.Errorf("openCache(%q) = %T, want *cache.FileCache", tt.backend, backend)
				}
			}
		})
	}
}
