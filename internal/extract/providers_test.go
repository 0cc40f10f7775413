package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelmux/internal/services"
)

func TestCobaltRequestShape(t *testing.T) {
	var got map[string]any
	var path, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		accept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"status":"stream","url":"https://cdn.example.com/v.mp4"}`))
	}))
	defer server.Close()

	p := NewCobaltProvider(server.URL+"/", "", server.Client())
	result, err := p.Extract(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if path != "/api/json" || accept != "application/json" {
		t.Fatalf("unexpected request path=%q accept=%q", path, accept)
	}
	want := map[string]any{
		"url": "https://youtu.be/abc", "vCodec": "h264", "vQuality": "1080", "aFormat": "mp3",
		"filenamePattern": "basic", "isAudioOnly": false, "isTTFullAudio": true, "isAudioMuted": false,
		"dubLang": false, "disableMetadata": false,
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s = %v, want %v", k, got[k], v)
		}
	}
	if result.Title != "YouTube Video" || result.Source != "YouTube" {
		t.Fatalf("unexpected defaults: %+v", result)
	}
	if len(result.Medias) != 1 || result.Medias[0].Quality != "1080p" || !result.Medias[0].HasAudio {
		t.Fatalf("unexpected medias: %+v", result.Medias)
	}
}

func TestConvertCobalt(t *testing.T) {
	tests := []struct {
		name      string
		data      cobaltResponse
		wantErr   string
		wantTypes []MediaType
		wantQual  []string
	}{
		{
			name:    "error status",
			data:    cobaltResponse{Status: "error", Text: "unsupported link"},
			wantErr: "unsupported link",
		},
		{
			name:    "error status default text",
			data:    cobaltResponse{Status: "error"},
			wantErr: "Cobalt API error",
		},
		{
			name:      "redirect with audio",
			data:      cobaltResponse{Status: "redirect", URL: "https://x/v.mp4", Audio: "https://x/a.mp3", Filename: "clip.mp4"},
			wantTypes: []MediaType{MediaVideo, MediaAudio},
			wantQual:  []string{"1080p", "Audio"},
		},
		{
			name: "picker",
			data: cobaltResponse{Status: "picker", Picker: []cobaltPickerItem{
				{Type: "photo", URL: "https://x/1.jpg"},
				{Type: "video", URL: "https://x/2.mp4"},
			}},
			wantTypes: []MediaType{MediaImage, MediaVideo},
			wantQual:  []string{"Photo", "Option 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := convertCobalt(tt.data)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Medias) != len(tt.wantTypes) {
				t.Fatalf("expected %d medias, got %+v", len(tt.wantTypes), result.Medias)
			}
			for i, m := range result.Medias {
				if m.Type != tt.wantTypes[i] || m.Quality != tt.wantQual[i] {
					t.Fatalf("media %d = %+v", i, m)
				}
			}
		})
	}
}

func TestCobaltNon2xxUsesResponseText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","text":"link not supported"}`))
	}))
	defer server.Close()

	_, err := NewCobaltProvider(server.URL, "720", server.Client()).Extract(context.Background(), "https://youtu.be/x")
	if err == nil || !strings.Contains(err.Error(), "link not supported") {
		t.Fatalf("expected upstream text in error, got %v", err)
	}

	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer plain.Close()
	_, err = NewCobaltProvider(plain.URL, "720", plain.Client()).Extract(context.Background(), "https://youtu.be/x")
	if err == nil || !strings.Contains(err.Error(), "API Error: 502") {
		t.Fatalf("expected status fallback, got %v", err)
	}
}

func TestRapidAPIProvider(t *testing.T) {
	var key, host, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("x-rapidapi-key")
		host = r.Header.Get("x-rapidapi-host")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = w.Write([]byte(`{
			"title": "Reel",
			"source": "instagram",
			"medias": [
				{"url": "https://cdn/v1080.mp4", "quality": "1080p", "type": "video", "extension": "mp4", "size": "2048"},
				{"url": "https://cdn/v720.mp4", "quality": "720p", "type": "video", "extension": "mp4", "audioAvailable": true},
				{"url": "https://cdn/a.m4a", "quality": "128kbps", "extension": "m4a", "size": 512},
				{"url": "", "quality": "broken"}
			]
		}`))
	}))
	defer server.Close()

	p, err := NewRapidAPIProvider(server.URL, "social.example.com", "secret", server.Client())
	if err != nil {
		t.Fatalf("NewRapidAPIProvider: %v", err)
	}
	result, err := p.Extract(context.Background(), "https://instagram.com/reel/x")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if key != "secret" || host != "social.example.com" || body != `{"url":"https://instagram.com/reel/x"}` {
		t.Fatalf("unexpected request key=%q host=%q body=%q", key, host, body)
	}
	if len(result.Medias) != 3 {
		t.Fatalf("expected empty URLs dropped, got %+v", result.Medias)
	}
	if m := result.Medias[0]; !m.IsVideoOnly() || m.Size != 2048 {
		t.Fatalf("unexpected first media %+v", m)
	}
	if m := result.Medias[1]; !m.HasAudio {
		t.Fatalf("expected audioAvailable to mark has_audio: %+v", m)
	}
	if m := result.Medias[2]; !m.IsAudio() || m.Size != 512 {
		t.Fatalf("expected m4a to be audio: %+v", m)
	}
}

func TestRapidAPIErrors(t *testing.T) {
	if _, err := NewRapidAPIProvider("https://x", "x", " ", nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing key, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("You are not subscribed to this API."))
	}))
	defer server.Close()

	p, _ := NewRapidAPIProvider(server.URL, "x", "k", server.Client())
	_, err := p.Extract(context.Background(), "https://tiktok.com/@a/video/1")
	if err == nil || !strings.Contains(err.Error(), "API Error 403: You are not subscribed to this API.") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOpenGraphProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Fallback</title>
			<meta property="og:title" content="Sunset timelapse">
			<meta property="og:image" content="/thumb.jpg">
			<meta property="og:video" content="https://cdn.example.com/sunset.mp4">
			<meta property="og:video:secure_url" content="https://cdn.example.com/sunset.mp4">
			<meta property="og:video:height" content="720">
			<meta property="og:audio" content="/audio/track.m4a">
		</head><body></body></html>`))
	}))
	defer server.Close()

	result, err := NewOpenGraphProvider("TestAgent", server.Client()).Extract(context.Background(), server.URL+"/watch/1")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if result.Title != "Sunset timelapse" {
		t.Fatalf("unexpected title %q", result.Title)
	}
	if result.Thumbnail != server.URL+"/thumb.jpg" {
		t.Fatalf("expected resolved thumbnail, got %q", result.Thumbnail)
	}
	if len(result.Medias) != 2 {
		t.Fatalf("expected deduplicated video plus audio, got %+v", result.Medias)
	}
	video, audio := result.Medias[0], result.Medias[1]
	if video.Quality != "720p" || video.Extension != "mp4" || video.Type != MediaVideo {
		t.Fatalf("unexpected video %+v", video)
	}
	if audio.URL != server.URL+"/audio/track.m4a" || audio.Extension != "m4a" || !audio.IsAudio() {
		t.Fatalf("unexpected audio %+v", audio)
	}
}

func TestOpenGraphProviderPageWithoutMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain page</title></head></html>`))
	}))
	defer server.Close()

	result, err := NewOpenGraphProvider("", server.Client()).Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if result.Title != "Plain page" || len(result.Medias) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}
