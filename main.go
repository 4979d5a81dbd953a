package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localfeed/internal/derivative"
	"localfeed/internal/handlers"
	"localfeed/internal/index"
	"localfeed/internal/logging"
	"localfeed/internal/middleware"
	"localfeed/internal/startup"
	"localfeed/internal/store"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	if config.LogFile != "" {
		logging.UseRotatingFile(config.LogFile)
	}

	// Persistent stores
	configStore := store.NewConfigStore(config.ConfigPath)

	// Image backend
	var imageCodec derivative.ImageCodec
	if config.ImageBackend == startup.BackendVips {
		derivative.InitVips()
		defer derivative.ShutdownVips()
		imageCodec = derivative.NewVipsCodec()
	} else {
		imageCodec = derivative.NewImagingCodec()
	}

	// Poster extraction requires ffmpeg on PATH
	var posterCodec derivative.PosterCodec
	if startup.LogPosterInit() {
		posterCodec = derivative.NewFFmpegPosterCodec()
	}

	derivatives := derivative.NewStore(config.ThumbnailDir, imageCodec, posterCodec,
		config.ThumbnailMaxSize, config.ThumbnailQuality)
	if err := derivatives.EnsureReady(); err != nil {
		logging.Fatal("Failed to prepare derivative cache: %v", err)
	}

	// Media index over the configured roots
	startup.LogIndexInit(config.CacheTTL, configStore.Folders())
	idx := index.New(configStore.Folders, config.CacheTTL, config.MaxVideoSize)

	var watcher *index.Watcher
	if config.WatchEnabled {
		watcher = index.NewWatcher(idx, configStore.Folders)
		if err := watcher.Start(); err != nil {
			logging.Warn("Failed to start filesystem watcher: %v", err)
			watcher = nil
		}
	}

	// Handlers and router
	h := handlers.New(config, configStore, idx, derivatives)
	router := mux.NewRouter()
	h.RegisterRoutes(router, config.MetricsEnabled)

	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Middleware chain: metrics innermost, access log outermost
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, watcher)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, watcher *index.Watcher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if watcher != nil {
		startup.LogShutdownStep("Stopping filesystem watcher")
		watcher.Stop()
		startup.LogShutdownStepComplete("Filesystem watcher stopped")
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
