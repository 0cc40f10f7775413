package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeMerge()
	c.normalizeFFmpeg()
	c.normalizeExtract()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir()
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst <= 0 {
		c.API.Burst = defaultAPIBurst
	}
	if c.API.ShutdownTimeoutSeconds <= 0 {
		c.API.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
}

func (c *Config) normalizeMerge() {
	c.Merge.UserAgent = strings.TrimSpace(c.Merge.UserAgent)
	if c.Merge.UserAgent == "" {
		c.Merge.UserAgent = defaultUserAgent
	}
	c.Merge.Referer = strings.TrimSpace(c.Merge.Referer)
	c.Merge.AcceptLanguage = strings.TrimSpace(c.Merge.AcceptLanguage)
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.ProbeBinary = strings.TrimSpace(c.FFmpeg.ProbeBinary)
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeExtract() {
	c.Extract.DefaultChain = normalizeChain(c.Extract.DefaultChain)
	for i := range c.Extract.Routes {
		route := &c.Extract.Routes[i]
		route.Name = strings.TrimSpace(route.Name)
		route.Chain = normalizeChain(route.Chain)
		hosts := make([]string, 0, len(route.Hosts))
		for _, host := range route.Hosts {
			host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
			if host != "" {
				hosts = append(hosts, host)
			}
		}
		route.Hosts = hosts
	}

	instances := make([]string, 0, len(c.Extract.Cobalt.Instances))
	for _, instance := range c.Extract.Cobalt.Instances {
		instance = strings.TrimRight(strings.TrimSpace(instance), "/")
		if instance != "" {
			instances = append(instances, instance)
		}
	}
	c.Extract.Cobalt.Instances = instances
	c.Extract.Cobalt.VQuality = strings.TrimSpace(c.Extract.Cobalt.VQuality)
	if c.Extract.Cobalt.VQuality == "" {
		c.Extract.Cobalt.VQuality = defaultCobaltVQuality
	}

	c.Extract.RapidAPI.URL = strings.TrimSpace(c.Extract.RapidAPI.URL)
	if c.Extract.RapidAPI.URL == "" {
		c.Extract.RapidAPI.URL = defaultRapidAPIURL
	}
	c.Extract.RapidAPI.Host = strings.TrimSpace(c.Extract.RapidAPI.Host)
	if c.Extract.RapidAPI.Host == "" {
		c.Extract.RapidAPI.Host = defaultRapidAPIHost
	}
	c.Extract.RapidAPI.APIKey = strings.TrimSpace(c.Extract.RapidAPI.APIKey)

	c.Extract.OpenGraph.UserAgent = strings.TrimSpace(c.Extract.OpenGraph.UserAgent)
	if c.Extract.OpenGraph.UserAgent == "" {
		c.Extract.OpenGraph.UserAgent = c.Merge.UserAgent
	}

	c.Extract.Cache.RedisAddr = strings.TrimSpace(c.Extract.Cache.RedisAddr)
	if c.Extract.Cache.RedisAddr == "" {
		c.Extract.Cache.RedisAddr = defaultRedisAddr
	}
	if c.Extract.Cache.TTLSeconds <= 0 {
		c.Extract.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
	if strings.TrimSpace(c.Extract.Cache.KeyPrefix) == "" {
		c.Extract.Cache.KeyPrefix = defaultCacheKeyPrefix
	}
}

func normalizeChain(chain []string) []string {
	out := make([]string, 0, len(chain))
	seen := make(map[string]struct{}, len(chain))
	for _, name := range chain {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
