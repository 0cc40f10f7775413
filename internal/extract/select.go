package extract

import (
	"errors"

	"github.com/samber/lo"
)

// ErrNoPair is returned when medias lack a video-only or an audio entry.
var ErrNoPair = errors.New("no video-only and audio pair available")

// Pair is the video-only and audio-only couple handed to the merge service.
type Pair struct {
	Video Media `json:"video"`
	Audio Media `json:"audio"`
}

// VideoOnly returns the video entries without an audio track.
func VideoOnly(medias []Media) []Media {
	return lo.Filter(medias, func(m Media, _ int) bool {
		return m.IsVideoOnly() && m.URL != ""
	})
}

// AudioOnly returns the audio entries.
func AudioOnly(medias []Media) []Media {
	return lo.Filter(medias, func(m Media, _ int) bool {
		return m.IsAudio() && m.URL != ""
	})
}

// NeedsMerge reports whether medias offer no muxed video but do offer a
// video-only and audio pair.
func NeedsMerge(medias []Media) bool {
	hasMuxed := lo.ContainsBy(medias, func(m Media) bool {
		return m.Type == MediaVideo && m.HasAudio
	})
	return !hasMuxed && len(VideoOnly(medias)) > 0 && len(AudioOnly(medias)) > 0
}

// SelectPair picks the best video-only entry (by height, then frame rate,
// then size) and the best audio entry (by bitrate, then size). Earlier
// entries win ties.
func SelectPair(medias []Media) (Pair, error) {
	videos := VideoOnly(medias)
	audios := AudioOnly(medias)
	if len(videos) == 0 || len(audios) == 0 {
		return Pair{}, ErrNoPair
	}

	video := lo.MaxBy(videos, func(a, b Media) bool {
		qa, qb := ParseQuality(a.Quality), ParseQuality(b.Quality)
		if qa.Height != qb.Height {
			return qa.Height > qb.Height
		}
		if qa.FPS != qb.FPS {
			return qa.FPS > qb.FPS
		}
		return a.Size > b.Size
	})
	audio := lo.MaxBy(audios, func(a, b Media) bool {
		qa, qb := ParseQuality(a.Quality), ParseQuality(b.Quality)
		if qa.Bitrate != qb.Bitrate {
			return qa.Bitrate > qb.Bitrate
		}
		return a.Size > b.Size
	})
	return Pair{Video: video, Audio: audio}, nil
}
