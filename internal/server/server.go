// Package server hosts a folder feed over the remote feed wire
// protocol, so a directory of metadata documents can serve other pkgfed
// clients (or act as a test fixture for the remote adapter).
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/pkgfed/pkgfed/pkg/feeds"
	"github.com/pkgfed/pkgfed/pkg/feeds/local"
	"github.com/pkgfed/pkgfed/pkg/version"
)

// Server serves the folder at Root as a v1 feed.
type Server struct {
	root   string
	name   string
	logger *charmlog.Logger
}

// New creates a server for the folder feed at root. The name is echoed
// in the service index document.
func New(root, name string, logger *charmlog.Logger) *Server {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Server{root: root, name: name, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/index.json", s.handleIndex)
	r.Get("/v1/package/{id}/index.json", s.handlePackageIndex)
	r.Get("/v1/package/{id}/{file}", s.handleVersion)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, feeds.IndexDoc{Name: s.name, Protocol: "v1"})
}

func (s *Server) handlePackageIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dir, ok := s.packageDir(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown package "+id)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Error("read package dir", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "package unreadable")
		return
	}

	doc := feeds.PackageIndexDoc{ID: filepath.Base(dir)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		vd, err := s.readDoc(filepath.Join(dir, entry.Name(), local.MetadataFile))
		if err != nil {
			continue // gaps in the folder layout are not served
		}
		doc.Versions = append(doc.Versions, vd)
	}
	if len(doc.Versions) == 0 {
		writeError(w, http.StatusNotFound, "unknown package "+id)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok {
		writeError(w, http.StatusNotFound, "unknown document")
		return
	}
	want, err := version.Parse(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}

	dir, ok := s.packageDir(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown package "+id)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Error("read package dir", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "package unreadable")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := version.Parse(entry.Name())
		if err != nil || !v.Equal(want) {
			continue
		}
		vd, err := s.readDoc(filepath.Join(dir, entry.Name(), local.MetadataFile))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "document unreadable")
			return
		}
		writeJSON(w, http.StatusOK, vd)
		return
	}
	writeError(w, http.StatusNotFound, "unknown version "+want.Normalize())
}

// packageDir locates the folder for id, matching case-insensitively.
func (s *Server) packageDir(id string) (string, bool) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), id) {
			return filepath.Join(s.root, entry.Name()), true
		}
	}
	return "", false
}

func (s *Server) readDoc(path string) (feeds.VersionDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return feeds.VersionDoc{}, err
	}
	var doc feeds.VersionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return feeds.VersionDoc{}, err
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
