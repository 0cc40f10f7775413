package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// InvalidURLMessage is the client-facing text for an unusable page URL.
const InvalidURLMessage = "Please enter a valid URL."

// Route maps host suffixes onto an ordered list of provider names.
type Route struct {
	Name      string
	Hosts     []string
	Providers []string
}

// Registry maps a provider name (cobalt, rapidapi, opengraph) to the concrete
// providers it expands to. Cobalt expands to one provider per instance.
type Registry map[string][]Provider

// RouterOptions configures a Router.
type RouterOptions struct {
	Routes       []Route
	DefaultChain []string
	Registry     Registry
	Timeout      time.Duration
	Cache        Cache
	Logger       *slog.Logger
}

// Router resolves the provider chain for a URL and runs it.
type Router struct {
	routes       []Route
	defaultChain []string
	registry     Registry
	timeout      time.Duration
	cache        Cache
	logger       *slog.Logger
}

var validate = validator.New()

// NewRouter constructs a Router.
func NewRouter(opts RouterOptions) *Router {
	return &Router{
		routes:       opts.Routes,
		defaultChain: opts.DefaultChain,
		registry:     opts.Registry,
		timeout:      opts.Timeout,
		cache:        opts.Cache,
		logger:       logging.NewComponentLogger(opts.Logger, "extract"),
	}
}

// Providers returns the names of every registered provider, sorted.
func (r *Router) Providers() []string {
	var names []string
	for _, providers := range r.registry {
		for _, p := range providers {
			names = append(names, p.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Resolve returns the chain that handles rawURL and the matching route name
// ("default" when no route matched).
func (r *Router) Resolve(rawURL string) (*Chain, string, error) {
	u, err := parsePageURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	names, routeName := r.defaultChain, "default"
	for _, route := range r.routes {
		if matchesHost(host, route.Hosts) {
			names, routeName = route.Providers, route.Name
			break
		}
	}

	var providers []Provider
	for _, name := range names {
		providers = append(providers, r.registry[name]...)
	}
	if len(providers) == 0 {
		return nil, routeName, services.Wrap(services.ErrConfiguration, "extract", "resolve",
			fmt.Sprintf("route %q has no enabled providers", routeName), nil)
	}
	return NewChain(r.timeout, r.logger, providers...), routeName, nil
}

// Extract validates rawURL, consults the cache, and runs the resolved chain.
func (r *Router) Extract(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	logger := logging.WithContext(ctx, r.logger)

	chain, routeName, err := r.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, rawURL)
		if err != nil {
			logger.Warn("extraction cache read failed", logging.Error(err))
		} else if ok {
			logger.Debug("extraction cache hit", logging.String("route", routeName))
			return cached, nil
		}
	}

	result, err := chain.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	logger.Info("extraction complete",
		logging.String("route", routeName),
		logging.String(logging.FieldProvider, result.Provider),
		logging.Int("medias", len(result.Medias)),
	)

	if r.cache != nil {
		if err := r.cache.Set(ctx, rawURL, result); err != nil {
			logger.Warn("extraction cache write failed", logging.Error(err))
		}
	}
	return result, nil
}

func parsePageURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validate.Var(rawURL, "required,http_url"); err != nil {
		return nil, services.Wrap(services.ErrValidation, "extract", "validate", InvalidURLMessage, nil)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "extract", "validate", InvalidURLMessage, err)
	}
	return u, nil
}

func matchesHost(host string, suffixes []string) bool {
	for _, suffix := range suffixes {
		suffix = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(suffix)), "www.")
		if suffix == "" {
			continue
		}
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
