package api

import (
	"net/http"
	"time"

	"github.com/snarg/scribe-engine/internal/database"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	db        *database.DB
	watcher   WatcherStatus
	version   string
	startTime time.Time
}

func NewHealthHandler(db *database.DB, watcher WatcherStatus, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		db:        db,
		watcher:   watcher,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	// Database check
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			checks["database"] = "error"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not_configured"
	}

	// File watcher check
	if h.watcher != nil {
		ws := h.watcher.Status()
		checks["file_watcher"] = ws
		if ws == "error" && status == "healthy" {
			status = "degraded"
		}
	} else {
		checks["file_watcher"] = "not_configured"
	}

	WriteJSONStatus(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
