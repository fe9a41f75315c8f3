package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/dgallion1/vidmind/internal/chat"
	"github.com/dgallion1/vidmind/internal/config"
	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/media"
	"github.com/dgallion1/vidmind/internal/metrics"
	"github.com/dgallion1/vidmind/internal/render"
	"github.com/dgallion1/vidmind/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-git/go-billy/v5"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Videos   *media.Store
	Exports  billy.Filesystem
	Sessions session.Store
	Analyzer analyze.VideoAnalyzer
	Chat     *chat.Responder
	Pages    *render.Renderer
	Metrics  *metrics.Collector
	// Limiter throttles upload and chat per client. Nil disables it.
	Limiter *RateLimiter
}

// Server is the HTTP server for vidmind.
type Server struct {
	router    chi.Router
	deps      Deps
	exporters map[export.Format]*export.Exporter
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps:      deps,
		exporters: make(map[export.Format]*export.Exporter),
		log:       log,
		cfg:       cfg,
	}
	for _, f := range []export.Format{export.FormatXMind, export.FormatDOCX} {
		enc, _ := export.ForFormat(f)
		s.exporters[f] = export.New(deps.Exports, ".", enc, export.WithMaxDepth(cfg.MaxTreeDepth))
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.deps.Metrics))

	r.Get("/health", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	// Pages.
	r.Get("/", s.handleIndex)
	r.Get("/result", s.handleResult)
	r.Get("/highlights", s.handleHighlights)

	// Data.
	r.Get("/mindmap-data", s.handleMindMapData)
	r.Get("/template-data", s.handleTemplateData)
	r.Get("/download-mindmap", s.handleDownloadMindMap)
	r.Post("/api/export", s.handleExport)

	// Media.
	r.Get("/video/{filename}", s.handleVideo)
	r.Get("/fixed-video", s.handleFixedVideo)

	// Throttled endpoints.
	r.Group(func(r chi.Router) {
		if s.deps.Limiter != nil {
			r.Use(s.deps.Limiter.Middleware)
		}
		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
