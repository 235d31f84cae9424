package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the crawl task manager and the output directory over HTTP.
type Server struct {
	manager *TaskManager
	mux     *http.ServeMux
	started time.Time
}

func NewServer(manager *TaskManager) *Server {
	if manager == nil {
		manager = NewTaskManager()
	}
	s := &Server{manager: manager, mux: http.NewServeMux(), started: time.Now()}
	for pattern, h := range map[string]http.HandlerFunc{
		"GET /healthz":                 s.handleHealthz,
		"GET /status":                  s.handleStatus,
		"POST /run":                    s.handleRun,
		"POST /stop":                   s.handleStop,
		"GET /logs":                    s.handleLogs,
		"GET /ws/logs":                 s.handleWSLogs,
		"GET /ws/status":               s.handleWSStatus,
		"GET /data/files":              s.handleDataFilesList,
		"GET /data/files/{path...}":    s.handleDataFile,
		"GET /data/download/{path...}": s.handleDataDownload,
		"GET /data/stats":              s.handleDataStats,
		"GET /videos/{id}":             s.handleVideo,
		"GET /metrics":                 promhttp.Handler().ServeHTTP,
	} {
		s.mux.HandleFunc(pattern, h)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		logger.Debug("api request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"state":  s.manager.Status().State,
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Status())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.manager.Run(req); err != nil {
		writeError(w, runErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.manager.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]any{"stopped": s.manager.Stop()})
}

func runErrorStatus(err error) int {
	var ve ValidationError
	switch {
	case errors.Is(err, ErrTaskRunning):
		return http.StatusConflict
	case errors.As(err, &ve):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	var ve ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}
