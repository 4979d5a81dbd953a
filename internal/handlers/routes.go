package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes attaches every endpoint to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router, metricsEnabled bool) {
	// Listings
	router.HandleFunc("/api/images", h.GetImages).Methods(http.MethodGet)
	router.HandleFunc("/api/images/folder", h.GetImagesByFolder).Methods(http.MethodGet)
	router.HandleFunc("/api/image-count", h.GetImageCount).Methods(http.MethodGet)

	// Folder configuration
	router.HandleFunc("/api/folders/leaf", h.GetLeafFolders).Methods(http.MethodGet)
	router.HandleFunc("/api/folders", h.GetFolders).Methods(http.MethodGet)
	router.HandleFunc("/api/folders", h.AddFolder).Methods(http.MethodPost)
	router.HandleFunc("/api/folders", h.RemoveFolder).Methods(http.MethodDelete)

	// Favorites and trash
	router.HandleFunc("/api/favorites", h.GetFavorites).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites", h.AddFavorite).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites", h.RemoveFavorite).Methods(http.MethodDelete)
	router.HandleFunc("/api/favorites/images", h.GetFavoriteImages).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites/images/folder", h.GetFavoriteImagesByFolder).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites/count", h.GetFavoritesCount).Methods(http.MethodGet)
	router.HandleFunc("/api/trash", h.GetTrash).Methods(http.MethodGet)
	router.HandleFunc("/api/trash", h.AddTrash).Methods(http.MethodPost)
	router.HandleFunc("/api/trash", h.RemoveTrash).Methods(http.MethodDelete)
	router.HandleFunc("/api/trash/empty", h.EmptyTrash).Methods(http.MethodPost)
	router.HandleFunc("/api/trash/images", h.GetTrashImages).Methods(http.MethodGet)
	router.HandleFunc("/api/trash/count", h.GetTrashCount).Methods(http.MethodGet)

	// Media transport
	router.HandleFunc("/image", h.ServeImage).Methods(http.MethodGet)
	router.HandleFunc("/thumbnail", h.ServeThumbnail).Methods(http.MethodGet)
	router.HandleFunc("/video-poster", h.ServeVideoPoster).Methods(http.MethodGet)

	// Cache and settings
	router.HandleFunc("/api/cache/stats", h.GetCacheStats).Methods(http.MethodGet)
	router.HandleFunc("/api/cache/clear", h.ClearCache).Methods(http.MethodPost)
	router.HandleFunc("/api/optimizations", h.GetOptimizations).Methods(http.MethodGet)
	router.HandleFunc("/api/optimizations", h.UpdateOptimizations).Methods(http.MethodPost)

	// Operational
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/version", h.Version).Methods(http.MethodGet)
	if metricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}
