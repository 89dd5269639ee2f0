package startup

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("UPLOAD_ENDPOINT", "http://localhost:9000")
	t.Setenv("INPUT_DIR", t.TempDir())

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %s, want 8080", config.Port)
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true by default")
	}
	if config.MaxConcurrentUploads != 3 {
		t.Errorf("MaxConcurrentUploads = %d, want 3", config.MaxConcurrentUploads)
	}
	if config.MaxConcurrentProcessing != 0 {
		t.Errorf("MaxConcurrentProcessing = %d, want 0 (from profile)", config.MaxConcurrentProcessing)
	}
	if config.UploadTimeout != 60*time.Second {
		t.Errorf("UploadTimeout = %s, want 60s", config.UploadTimeout)
	}
	if !config.ProcessingEnabled {
		t.Error("ProcessingEnabled = false, want true by default")
	}
	if config.NetworkDownlinkMbps != 10 {
		t.Errorf("NetworkDownlinkMbps = %.1f, want 10", config.NetworkDownlinkMbps)
	}
}

func TestLoadConfigMissingEndpoint(t *testing.T) {
	t.Setenv("UPLOAD_ENDPOINT", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig succeeded without UPLOAD_ENDPOINT")
	}
}

func TestLoadConfigRejectsNonHTTPEndpoint(t *testing.T) {
	t.Setenv("UPLOAD_ENDPOINT", "ftp://example.com")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig accepted a non-http endpoint")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("UPLOAD_ENDPOINT", "https://upload.example.com")
	t.Setenv("INPUT_DIR", t.TempDir())
	t.Setenv("MAX_CONCURRENT_PROCESSING", "4")
	t.Setenv("MAX_CONCURRENT_UPLOADS", "6")
	t.Setenv("UPLOAD_TIMEOUT", "90s")
	t.Setenv("PROCESSING_ENABLED", "false")
	t.Setenv("NETWORK_TYPE", "2g")
	t.Setenv("NETWORK_DOWNLINK_MBPS", "0.4")
	t.Setenv("NETWORK_SAVE_DATA", "true")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.MaxConcurrentProcessing != 4 || config.MaxConcurrentUploads != 6 {
		t.Errorf("caps = %d/%d, want 4/6", config.MaxConcurrentProcessing, config.MaxConcurrentUploads)
	}
	if config.UploadTimeout != 90*time.Second {
		t.Errorf("UploadTimeout = %s, want 90s", config.UploadTimeout)
	}
	if config.ProcessingEnabled {
		t.Error("ProcessingEnabled = true, want false")
	}
	if config.NetworkType != "2g" || config.NetworkDownlinkMbps != 0.4 || !config.NetworkSaveData {
		t.Errorf("network = %s/%.1f/%v, want 2g/0.4/true",
			config.NetworkType, config.NetworkDownlinkMbps, config.NetworkSaveData)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("STARTUP_TEST_BOOL", "not-a-bool")
	if got := getEnvBool("STARTUP_TEST_BOOL", true); got != true {
		t.Errorf("getEnvBool on invalid input = %v, want default", got)
	}

	t.Setenv("STARTUP_TEST_INT", "12x")
	if got := getEnvInt("STARTUP_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt on invalid input = %d, want default", got)
	}

	t.Setenv("STARTUP_TEST_DUR", "fast")
	if got := getEnvDuration("STARTUP_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration on invalid input = %s, want default", got)
	}
}
