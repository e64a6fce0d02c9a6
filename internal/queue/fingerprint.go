package queue

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EpisodeFingerprint derives the deduplication key for an episode submission.
// The same title and source always map to the same fingerprint, so repeated
// submissions reuse the existing queue item.
func EpisodeFingerprint(episodeTitle, source string) string {
	seed := strings.TrimSpace(episodeTitle) + ":" + strings.TrimSpace(source)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:12]
}
