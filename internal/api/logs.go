package api

import (
	"net/http"
	"strconv"
	"strings"

	"yt-comment-crawler-go/internal/logger"
)

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	limit = max(0, min(limit, 2000))

	events := logger.Recent(limit)
	if lvl := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("level"))); lvl != "" {
		kept := events[:0:0]
		for _, e := range events {
			if strings.EqualFold(e.Level, lvl) {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": events})
}
