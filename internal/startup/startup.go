package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"media-pipeline/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	UploadEndpoint string
	CaseID         string
	InputDir       string
	Port           string
	MetricsEnabled bool

	MaxConcurrentProcessing int
	MaxConcurrentUploads    int
	UploadTimeout           time.Duration
	ProcessingEnabled       bool
	RefreshInterval         time.Duration

	// Reported network conditions, fed into the capability provider.
	NetworkType         string
	NetworkDownlinkMbps float64
	NetworkSaveData     bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		UploadEndpoint:          getEnv("UPLOAD_ENDPOINT", ""),
		CaseID:                  getEnv("CASE_ID", ""),
		InputDir:                getEnv("INPUT_DIR", "./media"),
		Port:                    getEnv("PORT", "8080"),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
		MaxConcurrentProcessing: getEnvInt("MAX_CONCURRENT_PROCESSING", 0),
		MaxConcurrentUploads:    getEnvInt("MAX_CONCURRENT_UPLOADS", 3),
		UploadTimeout:           getEnvDuration("UPLOAD_TIMEOUT", 60*time.Second),
		ProcessingEnabled:       getEnvBool("PROCESSING_ENABLED", true),
		RefreshInterval:         getEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		NetworkType:             getEnv("NETWORK_TYPE", "4g"),
		NetworkDownlinkMbps:     getEnvFloat("NETWORK_DOWNLINK_MBPS", 10),
		NetworkSaveData:         getEnvBool("NETWORK_SAVE_DATA", false),
	}

	logging.Info("  UPLOAD_ENDPOINT:            %s", config.UploadEndpoint)
	logging.Info("  CASE_ID:                    %s", config.CaseID)
	logging.Info("  INPUT_DIR:                  %s", config.InputDir)
	logging.Info("  PORT:                       %s", config.Port)
	logging.Info("  METRICS_ENABLED:            %v", config.MetricsEnabled)
	logging.Info("  MAX_CONCURRENT_PROCESSING:  %d (0 = from profile)", config.MaxConcurrentProcessing)
	logging.Info("  MAX_CONCURRENT_UPLOADS:     %d", config.MaxConcurrentUploads)
	logging.Info("  UPLOAD_TIMEOUT:             %s", config.UploadTimeout)
	logging.Info("  PROCESSING_ENABLED:         %v", config.ProcessingEnabled)
	logging.Info("  REFRESH_INTERVAL:           %s", config.RefreshInterval)
	logging.Info("  NETWORK_TYPE:               %s", config.NetworkType)
	logging.Info("  NETWORK_DOWNLINK_MBPS:      %.1f", config.NetworkDownlinkMbps)
	logging.Info("  NETWORK_SAVE_DATA:          %v", config.NetworkSaveData)
	logging.Info("  LOG_LEVEL:                  %s", logging.GetLevel())

	if config.UploadEndpoint == "" {
		return nil, fmt.Errorf("UPLOAD_ENDPOINT is required")
	}
	if !strings.HasPrefix(config.UploadEndpoint, "http://") && !strings.HasPrefix(config.UploadEndpoint, "https://") {
		return nil, fmt.Errorf("UPLOAD_ENDPOINT %q is not an http(s) URL", config.UploadEndpoint)
	}

	inputDir, err := filepath.Abs(config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input directory path: %w", err)
	}
	config.InputDir = inputDir
	logging.Info("  Input directory (absolute): %s", inputDir)

	if info, err := os.Stat(inputDir); err != nil {
		logging.Warn("  Input directory issue: %v", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", inputDir)
	}

	return config, nil
}

// LogProcessorInit logs processor initialization and checks the optional
// acceleration and video tooling.
func LogProcessorInit(vipsAvailable bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PROCESSOR INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if vipsAvailable {
		logging.Info("  [OK] libvips acceleration available")
	} else {
		logging.Info("  libvips not available, using inline image pipeline")
	}

	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Video validation and thumbnails will not work")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Health:        http://localhost:%s/healthz", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a completed shutdown step
func LogShutdownStep(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	logging.Info("------------------------------------------------------------")
	logging.Info("  media-pipeline")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid float value for %s: %q, using default: %.1f", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
