package api

import (
	"net/http"

	"github.com/dgallion1/vidmind/internal/session"
)

// sessionID returns the caller's session ID, issuing a new one (and its
// cookie) when the request carries none or a malformed one.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	id := ""
	if c, err := r.Cookie(s.cfg.SessionCookie); err == nil && session.ValidID(c.Value) {
		id = c.Value
	} else {
		id = session.NewID()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// currentResult loads the result stored for the request's session.
func (s *Server) currentResult(r *http.Request) (session.Result, string, error) {
	c, err := r.Cookie(s.cfg.SessionCookie)
	if err != nil || !session.ValidID(c.Value) {
		return session.Result{}, "", session.ErrNotFound
	}
	res, err := s.deps.Sessions.Get(r.Context(), c.Value)
	if err != nil {
		return session.Result{}, c.Value, err
	}
	return res, c.Value, nil
}
