package api

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	answer, rule := s.deps.Chat.Respond(req.Question)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveChat(rule)
	}
	s.log.Debug("chat", "rule", rule)

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
