package api

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"net/http"
	"os"
	"time"

	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/session"
	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/go-git/go-billy/v5"
)

const (
	downloadBaseName = "video_mindmap"
	maxTreeBodyBytes = 4 << 20
)

// export writes tree to a fresh file in format f and records the outcome.
func (s *Server) export(f export.Format, tree *topictree.Tree) (export.Document, error) {
	ex, ok := s.exporters[f]
	if !ok {
		return export.Document{}, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, f)
	}

	start := time.Now()
	doc, err := ex.Export(tree, "")
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveExport(string(f), exportOutcome(err), time.Since(start))
	}
	return doc, err
}

func exportOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, topictree.ErrInvalidTree):
		return "invalid_tree"
	case errors.Is(err, export.ErrStorageWrite):
		return "storage_error"
	default:
		return "error"
	}
}

// handleDownloadMindMap streams the session's mind map. XMind files are
// written at upload time and exported again when that file is gone; other
// formats are produced on request.
func (s *Server) handleDownloadMindMap(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, sid, err := s.currentResult(r)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.log.Error("load session failed", "session", sid, "error", err)
		}
		jsonError(w, "mind map file not available", http.StatusNotFound)
		return
	}

	if format == export.FormatXMind && res.ExportPath != "" {
		doc := export.Document{Path: res.ExportPath, Format: format}
		f, info, err := s.exporters[format].Open(doc)
		if err == nil {
			s.serveFile(w, r, doc, f, info)
			return
		}
		if !errors.Is(err, iofs.ErrNotExist) {
			s.log.Warn("open export failed", "path", doc.Path, "error", err)
			jsonError(w, "mind map file not available", http.StatusNotFound)
			return
		}
		s.log.Info("stored mind map missing, exporting again", "session", sid, "path", doc.Path)
	}

	doc, err := s.export(format, res.Tree)
	if err != nil {
		s.log.Warn("mind map export failed", "session", sid, "format", format, "error", err)
		jsonError(w, "mind map file not available", http.StatusNotFound)
		return
	}
	if format == export.FormatXMind {
		res.ExportPath = doc.Path
		if err := s.deps.Sessions.Put(r.Context(), sid, res); err != nil {
			s.log.Warn("update session export path failed", "session", sid, "error", err)
		}
	}

	s.serveDocument(w, r, doc)
}

// handleExport converts a posted topic tree and streams the document back.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTreeBodyBytes)
	tree, err := topictree.DecodeJSON(r.Body)
	if err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.export(format, tree)
	if err != nil {
		var ite *topictree.InvalidTreeError
		if errors.As(err, &ite) {
			jsonError(w, ite.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("export failed", "format", format, "error", err)
		jsonError(w, "failed to write mind map", http.StatusInternalServerError)
		return
	}

	s.serveDocument(w, r, doc)
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, doc export.Document) {
	ex, ok := s.exporters[doc.Format]
	if !ok {
		jsonError(w, "mind map file not available", http.StatusNotFound)
		return
	}
	f, info, err := ex.Open(doc)
	if err != nil {
		s.log.Warn("open export failed", "path", doc.Path, "error", err)
		jsonError(w, "mind map file not available", http.StatusNotFound)
		return
	}
	s.serveFile(w, r, doc, f, info)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, doc export.Document, f billy.File, info os.FileInfo) {
	defer f.Close()

	name := downloadBaseName + doc.Format.Extension()
	w.Header().Set("Content-Type", doc.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
