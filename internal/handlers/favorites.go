package handlers

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"localfeed/internal/logging"
	"localfeed/internal/pathguard"
)

// GetFavorites returns the favorite list as fetchable URLs, dropping entries
// whose files have vanished.
func (h *Handlers) GetFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}

	urls := make([]string, len(favorites))
	for i, path := range favorites {
		urls[i] = "/image?path=" + url.QueryEscape(path)
	}
	writeJSON(w, map[string][]string{"favorites": urls})
}

// GetFavoriteImages returns the favorites as a browsable feed: existing
// files only, ordered by modification time like the main listings.
func (h *Handlers) GetFavoriteImages(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}

	sortByModTime(favorites, sortOrder(r))
	writeJSON(w, h.formatItemURLs(favorites))
}

// GetFavoriteImagesByFolder returns the favorites whose immediate parent is
// the given folder.
func (h *Handlers) GetFavoriteImagesByFolder(w http.ResponseWriter, r *http.Request) {
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

	favorites, err := h.favorites.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}

	filtered := favorites[:0]
	for _, path := range favorites {
		if filepath.Dir(path) == folder {
			filtered = append(filtered, path)
		}
	}

	sortByModTime(filtered, sortOrder(r))
	writeJSON(w, h.formatItemURLs(filtered))
}

// GetFavoritesCount reports the number of favorites whose files still exist.
func (h *Handlers) GetFavoritesCount(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favorites.Cleanup()
	if err != nil {
		writeJSONError(w, "Failed to load favorites", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"count": len(favorites)})
}

// AddFavorite marks a path as favorite. Adding an existing entry is a no-op.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	path, ok := h.listPathFromBody(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Add(path); err != nil {
		writeJSONError(w, "Failed to save favorites", http.StatusInternalServerError)
		return
	}
	h.respondWithList(w, h.favorites, "favorites")
}

// RemoveFavorite unmarks a path. Removing an absent entry is a no-op.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	path, ok := h.listPathFromBody(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Remove(path); err != nil {
		writeJSONError(w, "Failed to save favorites", http.StatusInternalServerError)
		return
	}
	h.respondWithList(w, h.favorites, "favorites")
}

// listPathFromBody extracts and decodes the path field of a list mutation
// request, accepting both raw paths and the URL form listings hand out.
func (h *Handlers) listPathFromBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req pathRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return "", false
	}
	return extractPathFromURL(path), true
}

type listReader interface {
	Load() ([]string, error)
}

func (h *Handlers) respondWithList(w http.ResponseWriter, s listReader, key string) {
	list, err := s.Load()
	if err != nil {
		logging.Error("failed to reload %s after save: %v", key, err)
		list = []string{}
	}
	if list == nil {
		list = []string{}
	}
	writeJSON(w, map[string]interface{}{"success": true, key: list})
}
