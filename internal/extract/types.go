package extract

import (
	"context"
	"net/http"
	"strings"
)

// MediaType classifies a media entry.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaImage MediaType = "image"
)

// Media is one downloadable rendition.
type Media struct {
	URL           string    `json:"url"`
	Quality       string    `json:"quality"`
	Type          MediaType `json:"type"`
	Extension     string    `json:"extension"`
	HasAudio      bool      `json:"has_audio"`
	Size          int64     `json:"size,omitempty"`
	FormattedSize string    `json:"formatted_size,omitempty"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
}

// IsAudio reports whether the entry is audio only.
func (m Media) IsAudio() bool {
	return m.Type == MediaAudio
}

// IsVideoOnly reports whether the entry is a video without an audio track.
func (m Media) IsVideoOnly() bool {
	return m.Type == MediaVideo && !m.HasAudio
}

// Label returns the quality text, falling back to the media type.
func (m Media) Label() string {
	if q := strings.TrimSpace(m.Quality); q != "" {
		return q
	}
	switch m.Type {
	case MediaAudio:
		return "Audio"
	case MediaImage:
		return "Image"
	default:
		return "Video"
	}
}

// Result is the normalized output of every provider.
type Result struct {
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Source    string  `json:"source"`
	Medias    []Media `json:"medias"`
	Provider  string  `json:"provider,omitempty"`
}

// Provider resolves a page URL into a Result.
type Provider interface {
	Name() string
	Extract(ctx context.Context, rawURL string) (*Result, error)
}

// HTTPDoer is the subset of *http.Client used by providers.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}
