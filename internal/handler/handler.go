package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/randomplaygames97-coder/helperbot-pinger/internal/stats"
)

// ServiceName identifies this process on the root route.
const ServiceName = "helperbot-pinger"

// liveInterval is how often the /stats/live stream pushes a snapshot.
const liveInterval = 5 * time.Second

var upgrader = websocket.Upgrader{}

// StatusHandler serves the pinger's own observability routes. It only
// reads the shared statistics record.
type StatusHandler struct {
	logger *slog.Logger
	stats  *stats.Stats
	target string
}

type rootResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Target  string `json:"target"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStatusHandler creates a StatusHandler reading from the given
// statistics record.
func NewStatusHandler(logger *slog.Logger, st *stats.Stats, target string) *StatusHandler {
	return &StatusHandler{
		logger: logger,
		stats:  st,
		target: target,
	}
}

// Root returns the service identity and the configured target.
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, rootResponse{
		Service: ServiceName,
		Status:  "running",
		Target:  h.target,
	})
}

// Health reports that this process is alive. It is intentionally static:
// probe outcomes never affect it, so external keepalive services can
// confirm the pinger itself is up.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// Stats returns the current statistics snapshot.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.stats.Snapshot())
}

// Live upgrades the connection to a WebSocket and streams statistics
// snapshots until the client disconnects.
func (h *StatusHandler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(h.stats.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(liveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.stats.Snapshot()); err != nil {
				return
			}
		}
	}
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
