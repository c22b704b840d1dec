package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/handlers"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
	"photo-gallery/internal/memory"
	"photo-gallery/internal/metrics"
	"photo-gallery/internal/middleware"
	"photo-gallery/internal/startup"

	"github.com/gorilla/mux"
)

const (
	readTimeout        = 15 * time.Second
	idleTimeout        = 60 * time.Second
	metricsReadTimeout = 5 * time.Second
	metricsInterval    = 1 * time.Minute
	shutdownTimeout    = 30 * time.Second
	logFlushTimeout    = 2 * time.Second
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// After LoadConfig so GOMEMLIMIT and MEMORY_RATIO may come from .env
	memResult := memory.ConfigureFromEnv()

	ceiling := memResult.Ceiling(config.MemoryCeiling)
	monitorConfig := memory.DefaultMonitorConfig()
	monitor := memory.NewMonitor(ceiling, monitorConfig)
	budget := memory.NewBudget(ceiling).WithMonitor(monitor)
	startup.LogMemoryConfig(memResult, budget, monitorConfig)

	filesystem.SetObserver(metrics.FilesystemObserver{})
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"gallery":   config.GalleryDir,
		"thumbnail": config.ThumbnailDir,
	}))

	var vipsErr error
	if config.VipsEnabled {
		vipsErr = media.InitVips()
	}

	generator := media.NewGenerator(media.Config{
		GalleryRoot:        config.GalleryDir,
		ThumbnailRoot:      config.ThumbnailDir,
		Width:              config.ThumbnailWidth,
		Height:             config.ThumbnailHeight,
		MaxSourceDimension: config.MaxSourceDimension,
		MaxSourcePixels:    config.MaxSourcePixels,
	}, budget, media.Capabilities{
		Vips:    config.VipsEnabled && vipsErr == nil,
		Imaging: config.ImagingEnabled,
	})
	startup.LogThumbnailInit(generator.Backends(), vipsErr, config.ThumbnailsWritable)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
	collector := metrics.NewCollector(budget.Ceiling(), metricsInterval)
	collector.Start()
	monitor.Start()

	h := handlers.New(config, generator)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     wrapHandler(router, config),
		ReadTimeout: readTimeout,
		// Streaming large originals to slow clients is bounded per chunk by
		// the asset streamer instead.
		WriteTimeout: 0,
		IdleTimeout:  idleTimeout,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	shutdownDone := make(chan struct{})
	go handleShutdown(sigChan, srv, metricsSrv, collector, monitor, shutdownDone)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	// ListenAndServe returns as soon as Shutdown starts; wait for the drain.
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	r.HandleFunc("/attach", h.Attach).Methods("GET", "HEAD")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/file/{path:.*}", h.GetFile).Methods("GET", "HEAD")
	api.HandleFunc("/thumbnail/{path:.*}", h.GetThumbnail).Methods("GET", "HEAD")
	api.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	api.HandleFunc("/formats", h.GetFormats).Methods("GET")
	api.HandleFunc("/backends", h.GetBackends).Methods("GET")

	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	return r
}

// wrapHandler applies the access log and compression around the router.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(router)

	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  idleTimeout,
	}
}

// handleShutdown waits for a signal, drains both servers and releases
// process-wide resources. done is closed once everything has stopped.
func handleShutdown(sigChan <-chan os.Signal, srv, metricsSrv *http.Server, collector *metrics.Collector, monitor *memory.Monitor, done chan<- struct{}) {
	defer close(done)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping metrics collector and memory monitor")
	collector.Stop()
	monitor.Stop()
	startup.LogShutdownStepComplete("Metrics collector and memory monitor stopped")

	// In-flight thumbnail work has drained with the HTTP server
	startup.LogShutdownStep("Shutting down libvips")
	media.ShutdownVips()
	startup.LogShutdownStepComplete("libvips released")

	startup.LogShutdownComplete()
	logging.Flush(logFlushTimeout)
}
