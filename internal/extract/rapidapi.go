package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reelmux/internal/services"
)

// maxProviderBody caps how much of an upstream reply is read.
const maxProviderBody = 4 << 20

// RapidAPIProvider calls the social-download autolink endpoint.
type RapidAPIProvider struct {
	endpoint string
	host     string
	apiKey   string
	client   HTTPDoer
}

// NewRapidAPIProvider constructs a provider. The key is required.
func NewRapidAPIProvider(endpoint, host, apiKey string, client HTTPDoer) (*RapidAPIProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "rapidapi", "init", "api key required (extract.rapidapi.api_key or RAPIDAPI_KEY)", nil)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RapidAPIProvider{
		endpoint: strings.TrimSpace(endpoint),
		host:     strings.TrimSpace(host),
		apiKey:   apiKey,
		client:   client,
	}, nil
}

// Name returns "rapidapi".
func (p *RapidAPIProvider) Name() string {
	return "rapidapi"
}

// flexBool accepts JSON booleans, strings, and numbers; any non-empty,
// non-false value is true.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "false", "0", "null", "no":
		*b = false
	default:
		*b = true
	}
	return nil
}

// flexInt accepts JSON numbers and numeric strings.
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(f)
	return nil
}

type rapidMedia struct {
	URL            string   `json:"url"`
	Quality        string   `json:"quality"`
	Type           string   `json:"type"`
	Extension      string   `json:"extension"`
	Size           flexInt  `json:"size"`
	FormattedSize  string   `json:"formattedSize"`
	Thumbnail      string   `json:"thumbnail"`
	IsAudio        flexBool `json:"is_audio"`
	HasAudio       flexBool `json:"has_audio"`
	AudioAvailable flexBool `json:"audioAvailable"`
	Audio          flexBool `json:"audio"`
	WithAudio      flexBool `json:"withAudio"`
}

type rapidResponse struct {
	Title     string       `json:"title"`
	Thumbnail string       `json:"thumbnail"`
	Source    string       `json:"source"`
	Medias    []rapidMedia `json:"medias"`
	Error     flexBool     `json:"error"`
	Message   string       `json:"message"`
}

// Extract posts {url} to the autolink endpoint.
func (p *RapidAPIProvider) Extract(ctx context.Context, rawURL string) (*Result, error) {
	body, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return nil, fmt.Errorf("encode rapidapi request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", p.apiKey)
	req.Header.Set("x-rapidapi-host", p.host)
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
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "response", "", fmt.Errorf("API Error %d: %s", resp.StatusCode, text))
	}

	var payload rapidResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "decode response", "", err)
	}
	if payload.Error && strings.TrimSpace(payload.Message) != "" {
		return nil, services.Wrap(services.ErrExternalTool, p.Name(), "response", "", fmt.Errorf("%s", payload.Message))
	}
	return convertRapid(payload), nil
}

func convertRapid(data rapidResponse) *Result {
	medias := make([]Media, 0, len(data.Medias))
	for _, item := range data.Medias {
		if strings.TrimSpace(item.URL) == "" {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(item.Extension, "."))
		m := Media{
			URL:           item.URL,
			Quality:       item.Quality,
			Extension:     ext,
			Size:          int64(item.Size),
			FormattedSize: item.FormattedSize,
			Thumbnail:     item.Thumbnail,
		}
		switch {
		case strings.EqualFold(item.Type, "audio") || ext == "mp3" || ext == "m4a" || bool(item.IsAudio):
			m.Type = MediaAudio
		case strings.EqualFold(item.Type, "image") || ext == "jpg" || ext == "jpeg" || ext == "png" || ext == "webp":
			m.Type = MediaImage
		default:
			m.Type = MediaVideo
			m.HasAudio = bool(item.HasAudio || item.AudioAvailable || item.Audio || item.WithAudio)
		}
		medias = append(medias, m)
	}
	return &Result{
		Title:     data.Title,
		Thumbnail: data.Thumbnail,
		Source:    data.Source,
		Medias:    medias,
	}
}
