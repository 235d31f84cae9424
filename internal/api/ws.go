package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"yt-comment-crawler-go/internal/logger"

	"golang.org/x/net/websocket"
)

// serveWS upgrades the request and runs fn on a text-frame connection. The
// origin check is skipped; the API is meant for a local dashboard.
func serveWS(w http.ResponseWriter, r *http.Request, fn func(conn *websocket.Conn)) {
	websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			conn.PayloadType = websocket.TextFrame
			fn(conn)
		},
	}.ServeHTTP(w, r)
}

// handleWSLogs streams log events as JSON lines.
func (s *Server) handleWSLogs(w http.ResponseWriter, r *http.Request) {
	serveWS(w, r, func(conn *websocket.Conn) {
		lines, cancel := logger.Subscribe()
		defer cancel()
		done := conn.Request().Context().Done()
		for {
			select {
			case <-done:
				return
			case line, ok := <-lines:
				if !ok || websocket.Message.Send(conn, string(line)) != nil {
					return
				}
			}
		}
	})
}

// handleWSStatus pushes the task status right away and then every
// interval_ms, clamped to 100..5000.
func (s *Server) handleWSStatus(w http.ResponseWriter, r *http.Request) {
	interval := time.Second
	if n, err := strconv.Atoi(r.URL.Query().Get("interval_ms")); err == nil {
		interval = time.Duration(max(100, min(n, 5000))) * time.Millisecond
	}
	serveWS(w, r, func(conn *websocket.Conn) {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			b, err := json.Marshal(s.manager.Status())
			if err != nil || websocket.Message.Send(conn, string(b)+"\n") != nil {
				return
			}
			select {
			case <-conn.Request().Context().Done():
				return
			case <-tick.C:
			}
		}
	})
}
