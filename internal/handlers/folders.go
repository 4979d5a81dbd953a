package handlers

import (
	"net/http"
	"os"
	"strings"

	"localfeed/internal/pathguard"
)

// GetFolders returns the configured media roots.
func (h *Handlers) GetFolders(w http.ResponseWriter, r *http.Request) {
	folders := h.config.Folders()
	if folders == nil {
		folders = []string{}
	}
	writeJSON(w, folders)
}

// AddFolder appends a new root to the configuration and invalidates the
// index so the next listing picks it up.
func (h *Handlers) AddFolder(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	expanded := pathguard.Expand(path)
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		writeJSONError(w, "Folder not found: "+expanded, http.StatusBadRequest)
		return
	}

	normalized := pathguard.Normalize(expanded)
	folders := h.config.Folders()
	for _, existing := range folders {
		if existing == normalized {
			writeJSONError(w, "Folder already added", http.StatusBadRequest)
			return
		}
	}

	folders = append(folders, normalized)
	if err := h.config.SaveFolders(folders); err != nil {
		writeJSONError(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}
	h.index.Invalidate()

	writeJSON(w, map[string]interface{}{"success": true, "folders": folders})
}

// RemoveFolder drops a root from the configuration and invalidates the index.
// Removing an unknown path succeeds without effect.
func (h *Handlers) RemoveFolder(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	normalized := pathguard.Normalize(path)
	folders := h.config.Folders()
	kept := folders[:0]
	removed := false
	for _, existing := range folders {
		if existing == normalized {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}

	if removed {
		if err := h.config.SaveFolders(kept); err != nil {
			writeJSONError(w, "Failed to save configuration", http.StatusInternalServerError)
			return
		}
		h.index.Invalidate()
	}

	if kept == nil {
		kept = []string{}
	}
	writeJSON(w, map[string]interface{}{"success": true, "folders": kept})
}
