package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/vidmind/internal/media"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	s.serveVideo(w, r, chi.URLParam(r, "filename"), "", "video not found")
}

// handleFixedVideo serves the configured demo video regardless of session.
func (s *Server) handleFixedVideo(w http.ResponseWriter, r *http.Request) {
	s.serveVideo(w, r, s.cfg.FixedVideo, "video/mp4", "fixed video not found")
}

func (s *Server) serveVideo(w http.ResponseWriter, r *http.Request, name, contentType, notFound string) {
	f, info, err := s.deps.Videos.Open(name)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			jsonError(w, notFound, http.StatusNotFound)
			return
		}
		s.log.Error("open video failed", "filename", name, "error", err)
		jsonError(w, "failed to open video", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if contentType == "" {
		contentType = media.ContentType(info.Name())
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
