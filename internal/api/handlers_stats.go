package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	an := s.reviewer.Analyzer()
	if !an.Enabled() || an.Stats() == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider": an.Provider().Name(),
		"model":    an.Provider().Model(),
		"stats":    an.Stats().Snapshot(),
	})
}
