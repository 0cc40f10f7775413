package textutil

import "strings"

// DefaultName is returned by SafeName when nothing usable remains.
const DefaultName = "video"

// SafeName converts a free-form title into a file name stem. Runs of
// characters outside [A-Za-z0-9-_.] become a single hyphen, repeated hyphens
// collapse, and leading or trailing hyphens and dots are trimmed. An empty
// result yields DefaultName. SafeName(SafeName(s)) == SafeName(s).
func SafeName(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := false
	for _, r := range title {
		if isSafeRune(r) && r != '-' {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return DefaultName
	}
	return out
}

// SafeFileName returns SafeName(title) with ext appended. ext may be given
// with or without the leading dot.
func SafeFileName(title, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return SafeName(title)
	}
	return SafeName(title) + "." + ext
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	default:
		return false
	}
}
