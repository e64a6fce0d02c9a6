package audio

import (
	"fmt"
	"sort"
	"strings"

	"podsweep/internal/media/ffprobe"
)

// Selection names the audio stream that decoding and cutting should target.
// Index is the absolute container index, or -1 when the file carries no audio.
type Selection struct {
	Primary ffprobe.Stream
	Index   int
	Skipped []int
}

// Label returns a short human-readable summary of the primary stream.
func (s Selection) Label() string {
	if s.Index < 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	if codec := strings.TrimSpace(s.Primary.CodecName); codec != "" {
		parts = append(parts, codec)
	}
	if rate := s.Primary.SampleRateHz(); rate > 0 {
		parts = append(parts, fmt.Sprintf("%d Hz", rate))
	}
	if s.Primary.Channels > 0 {
		parts = append(parts, fmt.Sprintf("%dch", s.Primary.Channels))
	}
	if bps := s.Primary.BitRateBPS(); bps > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", bps/1000))
	}
	return strings.Join(parts, " ")
}

// SelectPrimary picks the audio stream to process from a downloaded episode.
// Podcast files occasionally carry chapter art video streams or a second audio
// track (a music bed or an alternate language); the default-flagged stream
// wins, then the highest bitrate, then container order.
func SelectPrimary(result ffprobe.Result) Selection {
	streams := result.AudioStreams()
	if len(streams) == 0 {
		return Selection{Index: -1}
	}

	ranked := make([]ffprobe.Stream, len(streams))
	copy(ranked, streams)
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := isDefault(ranked[i]), isDefault(ranked[j])
		if di != dj {
			return di
		}
		bi, bj := ranked[i].BitRateBPS(), ranked[j].BitRateBPS()
		if bi != bj {
			return bi > bj
		}
		return ranked[i].Index < ranked[j].Index
	})

	primary := ranked[0]
	skipped := make([]int, 0, len(ranked)-1)
	for _, stream := range ranked[1:] {
		skipped = append(skipped, stream.Index)
	}
	sort.Ints(skipped)

	return Selection{Primary: primary, Index: primary.Index, Skipped: skipped}
}

func isDefault(stream ffprobe.Stream) bool {
	return stream.Disposition["default"] == 1
}
