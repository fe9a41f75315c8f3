package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/media"
	"github.com/dgallion1/vidmind/internal/session"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.observeUpload("too_large", 0)
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		s.observeUpload("bad_request", 0)
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		s.observeUpload("bad_request", 0)
		jsonError(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.observeUpload("bad_request", 0)
		jsonError(w, "no file selected", http.StatusBadRequest)
		return
	}
	filename := media.SanitizeFilename(header.Filename)
	if !media.IsAllowed(filename) {
		s.observeUpload("unsupported", 0)
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	name, size, err := s.deps.Videos.Save(media.UniqueName(filename), file)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			s.observeUpload("too_large", 0)
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		s.log.Error("save upload failed", "filename", filename, "error", err)
		s.observeUpload("error", 0)
		jsonError(w, "failed to store video", http.StatusInternalServerError)
		return
	}

	sid := s.sessionID(w, r)
	log := s.log.With("session", sid, "video", name)

	res, err := s.deps.Analyzer.Analyze(r.Context(), analyze.Video{Filename: filename, Size: size})
	if err != nil {
		log.Error("analyze failed", "error", err)
		s.observeUpload("error", 0)
		jsonError(w, "failed to analyze video", http.StatusInternalServerError)
		return
	}

	// A failed export still yields a usable result page; only the download
	// becomes unavailable.
	exportPath := ""
	if doc, err := s.export(export.FormatXMind, res.Tree); err != nil {
		log.Warn("mind map export failed", "error", err)
	} else {
		exportPath = doc.Path
	}

	err = s.deps.Sessions.Put(r.Context(), sid, session.Result{
		Summary:       res.Summary,
		Tree:          res.Tree,
		ExportPath:    exportPath,
		VideoFilename: name,
	})
	if err != nil {
		log.Error("store session failed", "error", err)
		s.observeUpload("error", 0)
		jsonError(w, "failed to store analysis result", http.StatusInternalServerError)
		return
	}

	log.Info("video analyzed", "bytes", size, "export", exportPath)
	s.observeUpload("ok", size)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "success",
		"redirect_url": "/result",
	})
}

func (s *Server) observeUpload(outcome string, size int64) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveUpload(outcome, size)
	}
}
