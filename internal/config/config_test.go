package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelmux/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "reelmux")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.API.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if len(cfg.Extract.Cobalt.Instances) != 3 {
		t.Fatalf("expected three default cobalt instances, got %v", cfg.Extract.Cobalt.Instances)
	}
	if cfg.Extract.Cache.Enabled {
		t.Fatal("expected extraction cache disabled by default")
	}
	if cfg.LockPath() != filepath.Join(wantState, "reelmuxd.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RAPIDAPI_KEY", "rapid-key")
	t.Setenv("REELMUX_API_BIND", "0.0.0.0:9000")
	t.Setenv("FFMPEG_BINARY", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Extract.RapidAPI.APIKey != "rapid-key" {
		t.Fatalf("expected rapidapi key from env, got %q", cfg.Extract.RapidAPI.APIKey)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("expected api bind from env, got %q", cfg.API.Bind)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg binary from env, got %q", cfg.FFmpegBinary())
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	payload := map[string]any{
		"paths": map[string]any{
			"temp_dir": filepath.Join(dir, "tmp"),
		},
		"merge": map[string]any{
			"max_download_mib": 64,
		},
		"extract": map[string]any{
			"default_chain": []string{" OpenGraph ", "opengraph"},
			"routes": []map[string]any{
				{"name": "tiktok", "hosts": []string{"www.TikTok.com"}, "chain": []string{"rapidapi"}},
			},
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config to be read from %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.TempDir != filepath.Join(dir, "tmp") {
		t.Fatalf("unexpected temp dir: %q", cfg.Paths.TempDir)
	}
	if cfg.MaxDownloadBytes() != 64<<20 {
		t.Fatalf("unexpected max download bytes: %d", cfg.MaxDownloadBytes())
	}
	if got := cfg.Extract.DefaultChain; len(got) != 1 || got[0] != "opengraph" {
		t.Fatalf("expected normalized default chain, got %v", got)
	}
	if len(cfg.Extract.Routes) != 1 {
		t.Fatalf("expected routes to be replaced, got %d", len(cfg.Extract.Routes))
	}
	if host := cfg.Extract.Routes[0].Hosts[0]; host != "tiktok.com" {
		t.Fatalf("expected normalized host, got %q", host)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Extract.DefaultChain = []string{"rapidapi", "youtube-dl"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "youtube-dl") {
		t.Fatalf("expected error to name the provider, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bind", func(c *config.Config) { c.API.Bind = "nohostport" }, "api.bind"},
		{"timeout", func(c *config.Config) { c.FFmpeg.TimeoutSeconds = 0 }, "ffmpeg.timeout_seconds"},
		{"route hosts", func(c *config.Config) { c.Extract.Routes[0].Hosts = nil }, "hosts must not be empty"},
		{"cobalt url", func(c *config.Config) { c.Extract.Cobalt.Instances = []string{"ftp://cobalt"} }, "extract.cobalt.instances"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Extract.Routes[0].Name != "youtube" {
		t.Fatalf("unexpected sample route: %+v", cfg.Extract.Routes[0])
	}
}

func TestEncodeRedactsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Extract.RapidAPI.APIKey = "super-secret"
	cfg.Extract.Cache.RedisPassword = "hunter2"

	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(out, "super-secret") || strings.Contains(out, "hunter2") {
		t.Fatalf("expected secrets to be redacted, got:\n%s", out)
	}
	if cfg.Extract.RapidAPI.APIKey != "super-secret" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
