package handlers

import (
	"net/http"
	"time"

	"localfeed/internal/startup"
)

var serverStart = time.Now()

// Health reports liveness and basic process info.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(serverStart).Seconds()),
		"version":        startup.Version,
	})
}

// Version reports the build information.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
