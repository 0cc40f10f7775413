package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelmux/internal/services"
)

const (
	cobaltDefaultTitle  = "YouTube Video"
	cobaltDefaultSource = "YouTube"
)

// CobaltProvider queries one Cobalt instance.
type CobaltProvider struct {
	instance string
	quality  string
	client   HTTPDoer
}

// NewCobaltProvider returns a provider for instance, e.g. https://api.cobalt.tools.
// An empty quality requests 1080.
func NewCobaltProvider(instance, quality string, client HTTPDoer) *CobaltProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	quality = strings.TrimSpace(quality)
	if quality == "" {
		quality = "1080"
	}
	return &CobaltProvider{
		instance: strings.TrimRight(strings.TrimSpace(instance), "/"),
		quality:  quality,
		client:   client,
	}
}

// Name identifies the provider and instance in logs and errors.
func (p *CobaltProvider) Name() string {
	return "cobalt(" + p.instance + ")"
}

type cobaltRequest struct {
	URL             string `json:"url"`
	VCodec          string `json:"vCodec"`
	VQuality        string `json:"vQuality"`
	AFormat         string `json:"aFormat"`
	FilenamePattern string `json:"filenamePattern"`
	IsAudioOnly     bool   `json:"isAudioOnly"`
	IsTTFullAudio   bool   `json:"isTTFullAudio"`
	IsAudioMuted    bool   `json:"isAudioMuted"`
	DubLang         bool   `json:"dubLang"`
	DisableMetadata bool   `json:"disableMetadata"`
}

type cobaltPickerItem struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Thumb string `json:"thumb"`
}

type cobaltResponse struct {
	Status   string             `json:"status"`
	Text     string             `json:"text"`
	URL      string             `json:"url"`
	Filename string             `json:"filename"`
	Thumb    string             `json:"thumb"`
	Audio    string             `json:"audio"`
	Picker   []cobaltPickerItem `json:"picker"`
}

// Extract posts url to <instance>/api/json and converts the reply.
func (p *CobaltProvider) Extract(ctx context.Context, rawURL string) (*Result, error) {
	body, err := json.Marshal(cobaltRequest{
		URL:             rawURL,
		VCodec:          "h264",
		VQuality:        p.quality,
		AFormat:         "mp3",
		FilenamePattern: "basic",
		IsTTFullAudio:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cobalt request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.instance+"/api/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, p.Name(), "request", "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, p.Name(), "read response", "", err)
	}

	var payload cobaltResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if json.Unmarshal(raw, &payload) == nil && strings.TrimSpace(payload.Text) != "" {
			return nil, services.Wrap(services.ErrExternalTool, p.Name(), "response", "", fmt.Errorf("%s", payload.Text))
		}
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "response", "", fmt.Errorf("API Error: %d", resp.StatusCode))
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "decode response", "", err)
	}
	return convertCobalt(payload)
}

func convertCobalt(data cobaltResponse) (*Result, error) {
	if data.Status == "error" {
		msg := strings.TrimSpace(data.Text)
		if msg == "" {
			msg = "Cobalt API error"
		}
		return nil, services.Wrap(services.ErrExternalTool, "cobalt", "response", "", fmt.Errorf("%s", msg))
	}

	var medias []Media
	switch data.Status {
	case "redirect", "stream":
		medias = append(medias, Media{
			URL:       data.URL,
			Quality:   "1080p",
			Type:      MediaVideo,
			Extension: "mp4",
			HasAudio:  true,
		})
	case "picker":
		for i, item := range data.Picker {
			m := Media{URL: item.URL, HasAudio: true, Thumbnail: item.Thumb}
			if item.Type == "photo" {
				m.Quality, m.Type, m.Extension = "Photo", MediaImage, "jpg"
			} else {
				m.Quality, m.Type, m.Extension = fmt.Sprintf("Option %d", i+1), MediaVideo, "mp4"
			}
			medias = append(medias, m)
		}
	}
	if data.Audio != "" {
		medias = append(medias, Media{
			URL:       data.Audio,
			Quality:   "Audio",
			Type:      MediaAudio,
			Extension: "mp3",
		})
	}

	title := data.Filename
	if title == "" {
		title = cobaltDefaultTitle
	}
	return &Result{
		Title:     title,
		Thumbnail: data.Thumb,
		Source:    cobaltDefaultSource,
		Medias:    medias,
	}, nil
}
