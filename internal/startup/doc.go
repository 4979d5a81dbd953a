// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - DATA_DIR: Directory holding media folders' config, favorites, trash,
//     and the derivative cache (default: /data)
//   - PORT: HTTP server port (default: 8080)
//   - CACHE_TTL: Media index snapshot lifetime as Go duration (default: 30s)
//   - MAX_VIDEO_SIZE: Largest indexed video in megabytes (default: 75)
//   - THUMBNAIL_MAX_SIZE: Longest thumbnail edge in pixels (default: 1920)
//   - THUMBNAIL_QUALITY: JPEG quality for generated derivatives (default: 85)
//   - IMAGE_BACKEND: Image decode backend, "imaging" or "vips" (default: imaging)
//   - WATCH_ENABLED: Watch media folders for changes (default: true)
//   - METRICS_ENABLED: Expose the Prometheus scrape endpoint (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - LOG_FILE: Rotating log file path; stderr only when empty
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
