package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelmux/internal/services"
	"reelmux/internal/textutil"
)

// OpenGraphProvider scrapes og:* meta tags from the page itself. It works for
// public pages that embed a direct media URL and needs no credentials.
type OpenGraphProvider struct {
	userAgent string
	client    HTTPDoer
}

// NewOpenGraphProvider constructs a scraper that identifies as userAgent.
func NewOpenGraphProvider(userAgent string, client HTTPDoer) *OpenGraphProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenGraphProvider{userAgent: strings.TrimSpace(userAgent), client: client}
}

// Name returns "opengraph".
func (p *OpenGraphProvider) Name() string {
	return "opengraph"
}

// Extract fetches rawURL and reads its OpenGraph tags.
func (p *OpenGraphProvider) Extract(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, p.Name(), "request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "response", "", fmt.Errorf("page returned %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "parse page", "", err)
	}

	var base *url.URL
	if resp.Request != nil {
		base = resp.Request.URL
	}
	if base == nil {
		base, _ = url.Parse(rawURL)
	}
	return parseOpenGraph(doc, base), nil
}

func parseOpenGraph(doc *goquery.Document, base *url.URL) *Result {
	meta := map[string][]string{}
	doc.Find("meta[property], meta[name]").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok || key == "" {
			key, _ = s.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		if key == "" || content == "" {
			return
		}
		meta[key] = append(meta[key], content)
	})

	first := func(keys ...string) string {
		for _, k := range keys {
			if values := meta[k]; len(values) > 0 {
				return values[0]
			}
		}
		return ""
	}

	result := &Result{
		Title:     textutil.FirstNonEmpty(first("og:title", "twitter:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		Thumbnail: resolveRef(base, first("og:image", "og:image:url", "twitter:image")),
		Source:    textutil.FirstNonEmpty(first("og:site_name"), textutil.SourceLabel(hostOf(base))),
	}

	seen := map[string]struct{}{}
	add := func(m Media) {
		if m.URL == "" {
			return
		}
		if _, dup := seen[m.URL]; dup {
			return
		}
		seen[m.URL] = struct{}{}
		result.Medias = append(result.Medias, m)
	}

	videoType := first("og:video:type")
	for _, key := range []string{"og:video:secure_url", "og:video:url", "og:video"} {
		for _, v := range meta[key] {
			ref := resolveRef(base, v)
			add(Media{
				URL:       ref,
				Quality:   videoQuality(first("og:video:height")),
				Type:      MediaVideo,
				Extension: extensionFor(ref, videoType, "mp4"),
				HasAudio:  true,
			})
		}
	}
	audioType := first("og:audio:type")
	for _, key := range []string{"og:audio:secure_url", "og:audio:url", "og:audio"} {
		for _, v := range meta[key] {
			ref := resolveRef(base, v)
			add(Media{
				URL:       ref,
				Quality:   "Audio",
				Type:      MediaAudio,
				Extension: extensionFor(ref, audioType, "mp3"),
			})
		}
	}
	return result
}

func videoQuality(height string) string {
	height = strings.TrimSpace(height)
	if height == "" {
		return ""
	}
	return height + "p"
}

func extensionFor(ref, mimeType, fallback string) string {
	if u, err := url.Parse(ref); err == nil {
		if dot := strings.LastIndex(u.Path, "."); dot >= 0 && dot < len(u.Path)-1 {
			ext := strings.ToLower(u.Path[dot+1:])
			if !strings.Contains(ext, "/") && len(ext) <= 4 {
				return ext
			}
		}
	}
	if _, sub, ok := strings.Cut(strings.ToLower(mimeType), "/"); ok && sub != "" && !strings.ContainsAny(sub, "-+.") {
		return sub
	}
	return fallback
}

func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}
