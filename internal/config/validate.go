package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if topic := c.Notifications.NtfyTopic; topic != "" {
		if err := validateHTTPURL(topic); err != nil {
			return fmt.Errorf("notifications.ntfy_topic: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind must be host:port: %w", err)
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.New("api.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"merge.download_timeout_seconds": c.Merge.DownloadTimeoutSeconds,
		"ffmpeg.timeout_seconds":         c.FFmpeg.TimeoutSeconds,
		"extract.timeout_seconds":        c.Extract.TimeoutSeconds,
	})
}

func (c *Config) validateExtract() error {
	known := KnownProviders()
	check := func(field string, chain []string) error {
		for _, name := range chain {
			if !slices.Contains(known, name) {
				return fmt.Errorf("%s: unknown provider %q (expected one of %s)", field, name, strings.Join(known, ", "))
			}
		}
		return nil
	}

	if err := check("extract.default_chain", c.Extract.DefaultChain); err != nil {
		return err
	}
	for i, route := range c.Extract.Routes {
		field := fmt.Sprintf("extract.routes[%d]", i)
		if route.Name != "" {
			field = fmt.Sprintf("extract.routes[%s]", route.Name)
		}
		if len(route.Hosts) == 0 {
			return fmt.Errorf("%s: hosts must not be empty", field)
		}
		if len(route.Chain) == 0 {
			return fmt.Errorf("%s: chain must not be empty", field)
		}
		if err := check(field+".chain", route.Chain); err != nil {
			return err
		}
	}

	if c.Extract.Cobalt.Enabled {
		for _, instance := range c.Extract.Cobalt.Instances {
			if err := validateHTTPURL(instance); err != nil {
				return fmt.Errorf("extract.cobalt.instances: %w", err)
			}
		}
	}
	if c.Extract.RapidAPI.Enabled {
		if err := validateHTTPURL(c.Extract.RapidAPI.URL); err != nil {
			return fmt.Errorf("extract.rapidapi.url: %w", err)
		}
	}
	if c.Extract.Cache.Enabled && c.Extract.Cache.RedisDB < 0 {
		return errors.New("extract.cache.redis_db must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
