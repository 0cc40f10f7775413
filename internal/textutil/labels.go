package textutil

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// SourceLabel derives a human label such as "Instagram" from a page URL or a
// bare host name. Returns "" when no host can be found.
func SourceLabel(raw string) string {
	host := strings.TrimSpace(raw)
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.TrimPrefix(host, "m.")
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	name := parts[0]
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	if name == "youtu" {
		name = "youtube"
	}
	return titleCaser.String(name)
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
