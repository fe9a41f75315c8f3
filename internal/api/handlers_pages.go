package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/dgallion1/vidmind/internal/media"
	"github.com/dgallion1/vidmind/internal/render"
	"github.com/dgallion1/vidmind/internal/session"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.deps.Pages.Index(w); err != nil {
		s.log.Error("render index failed", "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultOrRedirect(w, r)
	if !ok {
		return
	}

	summary, err := s.deps.Pages.Summary(res.Summary)
	if err != nil {
		s.log.Error("render summary failed", "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	mindMap, err := render.MindMap(res.Tree)
	if err != nil {
		s.log.Error("render mind map failed", "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.deps.Pages.Result(w, render.ResultPage{
		Summary:   summary,
		MindMap:   mindMap,
		VideoURL:  videoURL(res.VideoFilename),
		VideoName: media.DisplayName(res.VideoFilename),
	})
	if err != nil {
		s.log.Error("render result failed", "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resultOrRedirect(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.deps.Pages.Highlights(w, videoURL(res.VideoFilename)); err != nil {
		s.log.Error("render highlights failed", "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
	}
}

// resultOrRedirect sends visitors without an analysis back to the upload
// page.
func (s *Server) resultOrRedirect(w http.ResponseWriter, r *http.Request) (session.Result, bool) {
	res, sid, err := s.currentResult(r)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.log.Error("load session failed", "session", sid, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return session.Result{}, false
	}
	return res, true
}

func (s *Server) handleMindMapData(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.currentResult(r)
	if err != nil {
		jsonError(w, "no analysis result for this session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res.Tree)
}

// handleTemplateData serves sample data so the front end can be previewed
// without uploading anything.
func (s *Server) handleTemplateData(w http.ResponseWriter, r *http.Request) {
	sample := analyze.SampleResult()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"summary": sample.Summary,
		"mindmap": sample.Tree,
	})
}

func videoURL(filename string) string {
	return "/video/" + url.PathEscape(filename)
}
