package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// ErrNoMedia is reported when a provider answers without any media entry.
var ErrNoMedia = errors.New("No media found. The link might be private or invalid.") //nolint:staticcheck // wire message

// Chain tries providers in order and returns the first usable result.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewChain builds a chain. timeout bounds each provider call; zero disables it.
func NewChain(timeout time.Duration, logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: append([]Provider(nil), providers...),
		timeout:   timeout,
		logger:    logging.NewComponentLogger(logger, "extract"),
	}
}

// Name lists the member providers.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain[" + strings.Join(names, ",") + "]"
}

// Providers returns the ordered member providers.
func (c *Chain) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}

// Extract returns the first result that carries at least one media entry.
// When every provider fails the individual errors are joined.
func (c *Chain) Extract(ctx context.Context, rawURL string) (*Result, error) {
	if len(c.providers) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "chain", "no providers configured", nil)
	}

	logger := logging.WithContext(ctx, c.logger)
	errs := make([]error, 0, len(c.providers))
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := c.try(ctx, provider, rawURL)
		if err == nil {
			result.Provider = provider.Name()
			logger.Debug("provider succeeded",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.Int("medias", len(result.Medias)),
			)
			return result, nil
		}
		logger.Debug("provider failed",
			logging.String(logging.FieldProvider, provider.Name()),
			logging.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
	}

	joined := errors.Join(errs...)
	if allNoMedia(errs) {
		return nil, services.Wrap(services.ErrNotFound, "extract", "chain", "", fmt.Errorf("%w (%w)", ErrNoMedia, joined))
	}
	return nil, services.Wrap(services.ErrExternalTool, "extract", "chain", "all providers failed", joined)
}

func (c *Chain) try(ctx context.Context, provider Provider, rawURL string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	result, err := provider.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Medias) == 0 {
		return nil, ErrNoMedia
	}
	return result, nil
}

func allNoMedia(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if !errors.Is(err, ErrNoMedia) {
			return false
		}
	}
	return true
}
