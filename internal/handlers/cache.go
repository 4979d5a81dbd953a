package handlers

import (
	"fmt"
	"net/http"
)

func formatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// GetCacheStats reports the derivative cache's file count and total size.
func (h *Handlers) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	files, bytes, err := h.derivatives.Stats()
	if err != nil {
		writeJSONError(w, "Failed to read cache", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"files":          files,
		"size":           bytes,
		"size_formatted": formatSize(bytes),
	})
}

// ClearCache deletes every cached derivative. The media index is untouched;
// cleared entries regenerate on demand.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, errs := h.derivatives.Clear()

	errList := []map[string]string{}
	for _, err := range errs {
		errList = append(errList, map[string]string{"error": err.Error()})
	}

	writeJSON(w, map[string]interface{}{
		"success":       true,
		"deleted_count": removed,
		"errors":        errList,
	})
}

// GetOptimizations returns the viewer settings and derivative feature flags.
func (h *Handlers) GetOptimizations(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Load()
	if err != nil {
		writeJSONError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"shuffle":       cfg.Shuffle,
		"optimizations": h.config.GetOptimizations(),
	})
}

// optimizationsUpdate carries a partial settings update; absent fields keep
// their current values.
type optimizationsUpdate struct {
	Shuffle       *bool `json:"shuffle"`
	Optimizations *struct {
		ThumbnailCache   *bool `json:"thumbnail_cache"`
		VideoPosterCache *bool `json:"video_poster_cache"`
		FillScreen       *bool `json:"fill_screen"`
		AutoAdvance      *bool `json:"auto_advance"`
		AutoAdvanceDelay *int  `json:"auto_advance_delay"`
	} `json:"optimizations"`
}

// UpdateOptimizations merges a partial update into the persisted settings.
func (h *Handlers) UpdateOptimizations(w http.ResponseWriter, r *http.Request) {
	var req optimizationsUpdate
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg, err := h.config.Load()
	if err != nil {
		writeJSONError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	if req.Shuffle != nil {
		cfg.Shuffle = *req.Shuffle
	}

	opts := h.config.GetOptimizations()
	if req.Optimizations != nil {
		applyFlag(&opts.ThumbnailCache, req.Optimizations.ThumbnailCache)
		applyFlag(&opts.VideoPosterCache, req.Optimizations.VideoPosterCache)
		applyFlag(&opts.FillScreen, req.Optimizations.FillScreen)
		applyFlag(&opts.AutoAdvance, req.Optimizations.AutoAdvance)
		if req.Optimizations.AutoAdvanceDelay != nil {
			opts.AutoAdvanceDelay = *req.Optimizations.AutoAdvanceDelay
		}
	}
	cfg.Optimizations = &opts

	if err := h.config.Save(cfg); err != nil {
		writeJSONError(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"settings": map[string]interface{}{
			"shuffle":       cfg.Shuffle,
			"optimizations": opts,
		},
	})
}

func applyFlag(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
