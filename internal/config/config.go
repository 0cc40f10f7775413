package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempDir  string `toml:"temp_dir" env:"REELMUX_TEMP_DIR"`
	StateDir string `toml:"state_dir" env:"REELMUX_STATE_DIR"`
	LogDir   string `toml:"log_dir" env:"REELMUX_LOG_DIR"`
}

// API contains configuration for the HTTP surface.
type API struct {
	Bind                   string  `toml:"bind" env:"REELMUX_API_BIND"`
	RequestsPerSecond      float64 `toml:"requests_per_second" env:"REELMUX_API_RPS"`
	Burst                  int     `toml:"burst"`
	ShutdownTimeoutSeconds int     `toml:"shutdown_timeout_seconds"`
}

// Merge contains configuration for the download + remux pipeline.
type Merge struct {
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	MaxDownloadMiB         int    `toml:"max_download_mib"`
	UserAgent              string `toml:"user_agent"`
	Referer                string `toml:"referer"`
	AcceptLanguage         string `toml:"accept_language"`
	VerifyOutput           bool   `toml:"verify_output"`
}

// FFmpeg contains the external multiplexer configuration.
type FFmpeg struct {
	Binary         string `toml:"binary" env:"FFMPEG_BINARY"`
	ProbeBinary    string `toml:"ffprobe_binary" env:"FFPROBE_BINARY"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Route maps a family of hosts onto an ordered provider chain.
type Route struct {
	Name  string   `toml:"name"`
	Hosts []string `toml:"hosts"`
	Chain []string `toml:"chain"`
}

// Cobalt contains configuration for Cobalt API instances.
type Cobalt struct {
	Enabled   bool     `toml:"enabled"`
	Instances []string `toml:"instances"`
	VQuality  string   `toml:"video_quality"`
}

// RapidAPI contains configuration for the RapidAPI autolink provider.
type RapidAPI struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Host    string `toml:"host"`
	APIKey  string `toml:"api_key" env:"RAPIDAPI_KEY"`
}

// OpenGraph contains configuration for the page-scraping provider.
type OpenGraph struct {
	Enabled   bool   `toml:"enabled"`
	UserAgent string `toml:"user_agent"`
}

// Cache contains configuration for the optional redis extraction cache.
type Cache struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	KeyPrefix     string `toml:"key_prefix"`
}

// Extract contains configuration for the provider chain.
type Extract struct {
	TimeoutSeconds int       `toml:"timeout_seconds"`
	DefaultChain   []string  `toml:"default_chain"`
	Routes         []Route   `toml:"routes"`
	Cobalt         Cobalt    `toml:"cobalt"`
	RapidAPI       RapidAPI  `toml:"rapidapi"`
	OpenGraph      OpenGraph `toml:"opengraph"`
	Cache          Cache     `toml:"cache"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"REELMUX_LOG_FORMAT"`
	Level  string `toml:"level" env:"REELMUX_LOG_LEVEL"`
}

// Notifications configures ntfy alerts. An empty topic disables them.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic" env:"NTFY_TOPIC"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	MergeFailures         bool   `toml:"merge_failures"`
	DaemonStart           bool   `toml:"daemon_start"`
}

// Config encapsulates all configuration values for reelmux.
//
// Configuration sections by subsystem:
//   - Paths: temporary artifact, state, and log directories
//   - API: bind address and rate limiting
//   - Merge: download headers, limits, and timeouts
//   - FFmpeg: multiplexer/prober binaries and timeout
//   - Extract: provider chain, routes, provider credentials, cache
//   - Notifications: ntfy topic and which events to send
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Merge         Merge         `toml:"merge"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Extract       Extract       `toml:"extract"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelmux.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for remuxing.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.FFmpeg.Binary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for output verification.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.FFmpeg.ProbeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// DownloadTimeout bounds each remote fetch.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Merge.DownloadTimeoutSeconds) * time.Second
}

// FFmpegTimeout bounds a single remux invocation.
func (c *Config) FFmpegTimeout() time.Duration {
	return time.Duration(c.FFmpeg.TimeoutSeconds) * time.Second
}

// ExtractTimeout bounds a single provider call.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Extract.TimeoutSeconds) * time.Second
}

// MaxDownloadBytes returns the per-file download cap, or 0 when unlimited.
func (c *Config) MaxDownloadBytes() int64 {
	if c.Merge.MaxDownloadMiB <= 0 {
		return 0
	}
	return int64(c.Merge.MaxDownloadMiB) << 20
}

// NotificationTimeout bounds a single ntfy request.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "reelmuxd.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), "reelmux")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the config back to TOML with credentials redacted.
func (c *Config) Encode() (string, error) {
	redacted := *c
	if redacted.Extract.RapidAPI.APIKey != "" {
		redacted.Extract.RapidAPI.APIKey = redactedValue
	}
	if redacted.Extract.Cache.RedisPassword != "" {
		redacted.Extract.Cache.RedisPassword = redactedValue
	}

	var buf strings.Builder
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(&redacted); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}
