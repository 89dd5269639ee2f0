// media-pipeline processes and uploads a directory of media files to a
// case-management endpoint, adapting quality and concurrency to the
// conditions it observes. It serves health and Prometheus metrics
// endpoints while running.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-pipeline/internal/batch"
	"media-pipeline/internal/capability"
	"media-pipeline/internal/events"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/media"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/profile"
	"media-pipeline/internal/startup"
	"media-pipeline/internal/uploader"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file loaded: %v", err)
	}

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize the processor and its optional acceleration
	if err := media.InitVips(); err != nil {
		logging.Debug("libvips init: %v", err)
	}
	defer media.ShutdownVips()
	startup.LogProcessorInit(media.IsVipsAvailable())
	processor := media.NewProcessor(config.ProcessingEnabled)

	// Capability sampling and adaptive profile selection
	provider := capability.NewSystemProvider(config.InputDir, capability.NetworkInfo{
		EffectiveType: config.NetworkType,
		DownlinkMbps:  config.NetworkDownlinkMbps,
		SaveData:      config.NetworkSaveData,
	})
	selector := profile.NewSelector(provider)
	logging.Info("Selected processing profile: %s", selector.Current().Name)

	bus := events.New()
	selector.OnAdaptationChange(func(change profile.Change) {
		logging.Info("Profile switched %s -> %s (%s)", change.Previous.Name, change.New.Name, change.Reason)
		bus.Publish(events.TopicProfileChanged, change)
	})

	monitor := profile.NewMonitor(selector, config.RefreshInterval)
	monitor.Start()

	// Upload client and batch coordinator
	client := uploader.New(config.UploadEndpoint, config.UploadTimeout)
	coordinator := batch.NewCoordinator(processor, client, selector, bus)

	// Health and metrics endpoints
	router := setupRouter(config)
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			startup.LogFatal("HTTP server error: %v", err)
		}
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runUploads(ctx, config, coordinator, processor, client); err != nil {
		logging.Error("Upload run failed: %v", err)
	}

	// Keep serving health and metrics until interrupted.
	<-ctx.Done()
	shutdown(srv, monitor, bus)
}

func setupRouter(config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	return r
}

// runUploads scans the input directory and drives photos through the
// batch coordinator. Videos are validated and uploaded with an extracted
// thumbnail; they bypass image processing.
func runUploads(ctx context.Context, config *startup.Config, coordinator *batch.Coordinator, processor *media.Processor, client *uploader.Client) error {
	entries, err := filesystem.ListMedia(config.InputDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logging.Info("Nothing to upload")
		return nil
	}

	var photos []batch.File
	var videos []filesystem.Entry
	for _, e := range entries {
		if e.Kind == mediatypes.KindVideo {
			videos = append(videos, e)
			continue
		}
		data, err := e.Read()
		if err != nil {
			logging.Warn("Skipping %s: %v", e.Name, err)
			continue
		}
		photos = append(photos, batch.File{Name: e.Name, Data: data})
	}

	if len(photos) > 0 {
		opts := batch.Options{
			CaseID:                  config.CaseID,
			MaxConcurrentProcessing: config.MaxConcurrentProcessing,
			MaxConcurrentUploads:    config.MaxConcurrentUploads,
		}
		opts.Callbacks.OnProgress = func(p batch.Progress) {
			logging.Debug("Batch %s: %d/%d settled", p.BatchID, p.CompletedFiles, p.TotalFiles)
		}

		summary, err := coordinator.ProcessBatch(ctx, photos, opts)
		if err != nil {
			return err
		}
		logging.Info("Photo batch %s: %d/%d uploaded, %d failed, avg compression %.2fx",
			summary.BatchID, summary.UploadedFiles, summary.TotalFiles,
			summary.FailedFiles, summary.AvgCompressionRatio)
		for _, fe := range summary.Errors {
			logging.Warn("  %s: %v", fe.Name, fe.Err)
		}
	}

	for _, v := range videos {
		if err := uploadVideo(ctx, config, processor, client, v); err != nil {
			logging.Warn("Video %s: %v", v.Name, err)
		}
	}
	return nil
}

// uploadVideo validates one video against the default limits and uploads
// its raw bytes with an extracted thumbnail.
func uploadVideo(ctx context.Context, config *startup.Config, processor *media.Processor, client *uploader.Client, entry filesystem.Entry) error {
	info, err := processor.ValidateVideo(ctx, entry.Path, media.DefaultVideoLimits())
	if err != nil {
		return err
	}

	thumb, err := processor.VideoThumbnail(ctx, entry.Path)
	if err != nil {
		logging.Warn("No thumbnail for %s: %v", entry.Name, err)
		thumb = nil
	}

	data, err := entry.Read()
	if err != nil {
		return err
	}

	_, err = client.Upload(ctx, uploader.Item{
		FileName:  entry.Name,
		Data:      data,
		Thumbnail: thumb,
		Metadata: media.Metadata{
			OriginalSize:     entry.Size,
			ProcessedSize:    entry.Size,
			MimeType:         mediatypes.SniffMime(data),
			OriginalWidth:    info.Width,
			OriginalHeight:   info.Height,
			ProcessedWidth:   info.Width,
			ProcessedHeight:  info.Height,
			CompressionRatio: 1,
			Timestamp:        time.Now(),
		},
		CaseID: config.CaseID,
	})
	if err != nil {
		return err
	}
	logging.Info("Uploaded video %s (%.1fs, %dx%d)", entry.Name, info.Duration, info.Width, info.Height)
	return nil
}

func shutdown(srv *http.Server, monitor *profile.Monitor, bus *events.Bus) {
	startup.LogShutdownInitiated("signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	monitor.Stop()
	startup.LogShutdownStep("Capability monitor stopped")

	bus.Wait()
	startup.LogShutdownStep("Event handlers drained")

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("HTTP server shutdown error: %v", err)
		os.Exit(1)
	}
	startup.LogShutdownStep("HTTP server stopped")

	startup.LogShutdownComplete()
}
