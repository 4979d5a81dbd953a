package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"localfeed/internal/index"
	"localfeed/internal/mediatypes"
	"localfeed/internal/pathguard"
)

func sortOrder(r *http.Request) mediatypes.SortOrder {
	if r.URL.Query().Get("sort") == string(mediatypes.SortOldest) {
		return mediatypes.SortOldest
	}
	return mediatypes.SortNewest
}

// GetImages returns every indexed media item as a fetchable URL.
func (h *Handlers) GetImages(w http.ResponseWriter, r *http.Request) {
	items := h.index.ListAll(sortOrder(r))
	thumbnails := h.config.GetOptimizations().ThumbnailCache

	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = formatItemURL(item.Path, thumbnails)
	}
	writeJSON(w, urls)
}

// GetImagesByFolder returns the items whose immediate parent is the given
// folder.
func (h *Handlers) GetImagesByFolder(w http.ResponseWriter, r *http.Request) {
	folderParam := r.URL.Query().Get("folder")
	if folderParam == "" {
		writeJSONError(w, "Folder parameter required", http.StatusBadRequest)
		return
	}

	decoded, err := url.QueryUnescape(folderParam)
	if err != nil {
		decoded = folderParam
	}
	folder := pathguard.Normalize(decoded)

	if !h.guard.IsAllowed(folder) {
		writeJSONError(w, "Access denied", http.StatusForbidden)
		return
	}

	items := h.index.ListByFolder(folder, sortOrder(r))
	thumbnails := h.config.GetOptimizations().ThumbnailCache

	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = formatItemURL(item.Path, thumbnails)
	}
	writeJSON(w, urls)
}

// GetImageCount reports the indexed item count and the configured folder
// count.
func (h *Handlers) GetImageCount(w http.ResponseWriter, r *http.Request) {
	items := h.index.ListAll(mediatypes.SortNewest)
	writeJSON(w, map[string]int{
		"imageCount":  len(items),
		"folderCount": len(h.config.Folders()),
	})
}

// GetLeafFolders returns the per-folder aggregates of the current snapshot.
func (h *Handlers) GetLeafFolders(w http.ResponseWriter, r *http.Request) {
	folders := h.index.LeafFolders()
	if folders == nil {
		folders = []index.FolderAggregate{}
	}
	writeJSON(w, folders)
}

// validatePath runs the request's path parameter through the guard and maps
// the failure modes to HTTP status codes. A written response is signalled by
// ok == false.
func (h *Handlers) validatePath(w http.ResponseWriter, raw string) (string, bool) {
	path, err := h.guard.Validate(raw)
	switch {
	case errors.Is(err, pathguard.ErrMissingPath):
		http.Error(w, "Path required", http.StatusBadRequest)
		return "", false
	case err != nil:
		http.Error(w, "Access denied", http.StatusForbidden)
		return "", false
	}
	return path, true
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
