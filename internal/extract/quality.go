package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	heightPattern  = regexp.MustCompile(`(\d{3,4})\s*p(\d{2,3})?`)
	bitratePattern = regexp.MustCompile(`(\d{2,4})\s*k(?:bps|b/s)?\b`)
	bareNumber     = regexp.MustCompile(`^\d{3,4}$`)
)

// Quality is a parsed quality label. Height applies to video and Bitrate (in
// kbps) to audio; either may be zero when the label does not say.
type Quality struct {
	Height  int
	FPS     int
	Bitrate int
}

// Score orders qualities: higher is better. Height dominates, then frame
// rate, then bitrate.
func (q Quality) Score() int {
	return q.Height*1_000_000 + q.FPS*1_000 + q.Bitrate
}

var namedHeights = map[string]int{
	"8k":      4320,
	"4k":      2160,
	"uhd":     2160,
	"2k":      1440,
	"qhd":     1440,
	"fhd":     1080,
	"full hd": 1080,
	"fullhd":  1080,
	"hd":      720,
	"sd":      480,
}

// ParseQuality interprets provider quality labels such as "2160p", "1080p60",
// "720", "4K", "HD", "128kbps", or "Audio". Unknown labels parse to zero.
func ParseQuality(label string) Quality {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return Quality{}
	}

	var q Quality
	if m := heightPattern.FindStringSubmatch(s); m != nil {
		q.Height, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			q.FPS, _ = strconv.Atoi(m[2])
		}
	} else if bareNumber.MatchString(s) {
		q.Height, _ = strconv.Atoi(s)
	} else {
		q.Height = namedHeight(s)
	}
	if m := bitratePattern.FindStringSubmatch(s); m != nil {
		q.Bitrate, _ = strconv.Atoi(m[1])
	}
	return q
}

func namedHeight(s string) int {
	if h, ok := namedHeights[s]; ok {
		return h
	}
	best := 0
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == '-' || r == '/' || r == ','
	}) {
		if h := namedHeights[field]; h > best {
			best = h
		}
	}
	return best
}
