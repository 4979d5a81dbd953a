package handlers

import (
	"net/http"
	"net/url"
	"os"

	"localfeed/internal/logging"
)

// GetTrash returns the trash list as fetchable URLs, dropping entries whose
// files have vanished.
func (h *Handlers) GetTrash(w http.ResponseWriter, r *http.Request) {
	trash, err := h.trash.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load trash", http.StatusInternalServerError)
		return
	}

	urls := make([]string, len(trash))
	for i, path := range trash {
		urls[i] = "/image?path=" + url.QueryEscape(path)
	}
	writeJSON(w, map[string][]string{"trash": urls})
}

// GetTrashImages returns the trash as a browsable feed: existing files only,
// ordered by modification time like the main listings.
func (h *Handlers) GetTrashImages(w http.ResponseWriter, r *http.Request) {
	trash, err := h.trash.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load trash", http.StatusInternalServerError)
		return
	}

	sortByModTime(trash, sortOrder(r))
	writeJSON(w, h.formatItemURLs(trash))
}

// GetTrashCount reports the number of trashed paths whose files still exist.
func (h *Handlers) GetTrashCount(w http.ResponseWriter, r *http.Request) {
	trash, err := h.trash.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load trash", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"count": len(trash)})
}

// AddTrash marks a path for deletion. A trashed path cannot stay a favorite,
// so it is removed from the favorites list in the same request.
func (h *Handlers) AddTrash(w http.ResponseWriter, r *http.Request) {
	path, ok := h.listPathFromBody(w, r)
	if !ok {
		return
	}

	if err := h.trash.Add(path); err != nil {
		writeJSONError(w, "Failed to save trash", http.StatusInternalServerError)
		return
	}
	if err := h.favorites.Remove(path); err != nil {
		logging.Warn("failed to remove trashed path from favorites: %v", err)
	}
	h.respondWithList(w, h.trash, "trash")
}

// RemoveTrash unmarks a path. Removing an absent entry is a no-op.
func (h *Handlers) RemoveTrash(w http.ResponseWriter, r *http.Request) {
	path, ok := h.listPathFromBody(w, r)
	if !ok {
		return
	}

	if err := h.trash.Remove(path); err != nil {
		writeJSONError(w, "Failed to save trash", http.StatusInternalServerError)
		return
	}
	h.respondWithList(w, h.trash, "trash")
}

// trashError is a per-item failure in an empty-trash run.
type trashError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// EmptyTrash permanently deletes every trashed file. Failures are collected
// per item and never abort the run; the trash list is cleared regardless so
// retrying does not re-delete what already succeeded.
func (h *Handlers) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	trash, err := h.trash.Load()
	if err != nil {
		writeJSONError(w, "Failed to load trash", http.StatusInternalServerError)
		return
	}

	deleted := 0
	errs := []trashError{}
	for _, path := range trash {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, trashError{Path: path, Error: err.Error()})
			continue
		}
		deleted++
	}

	if err := h.trash.Save([]string{}); err != nil {
		logging.Error("failed to clear trash list: %v", err)
	}

	// Deleted files may still be listed as favorites.
	if _, err := h.favorites.Cleanup(); err != nil {
		logging.Warn("favorites cleanup after empty-trash failed: %v", err)
	}

	h.index.Invalidate()

	writeJSON(w, map[string]interface{}{
		"success":       true,
		"deleted_count": deleted,
		"errors":        errs,
	})
}
