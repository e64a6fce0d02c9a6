package adclass

import (
	"context"
	"math"
)

// EmbedFunc produces one embedding vector per input text. A nil EmbedFunc
// means the semantic backend is unavailable and similarity features take
// their neutral values.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float64, error)

// Span is one stretch of transcript text under classification, with up to
// 60 seconds of neighboring text on each side for topic comparison.
type Span struct {
	Text     string
	Duration float64
	Before   string
	After    string
}

// Features is the classifier's per-span verdict: the individual linguistic
// indicators plus the blended confidence.
type Features struct {
	HasSponsorPhrase   bool
	HasPromoCode       bool
	HasURLMention      bool
	HasCallToAction    bool
	HasIntroTransition bool
	HasOutroTransition bool
	IsStandardLength   bool
	IsTopicIsland      bool
	SimilarityBefore   float64
	SimilarityAfter    float64
	KeywordHits        int
	Confidence         float64
}

// IsAd applies the caller's threshold. The engine classifies at 0.4; the
// opening and edge-expansion scans deliberately use lower thresholds to
// catch weaker peripheral evidence.
func (f Features) IsAd(threshold float64) bool {
	return f.Confidence >= threshold
}

// Positional windows and similarity constants. Outro phrases are only
// tested in spans longer than the edge window: a short span has no "end" to
// return from a break in, so phrases like "welcome back" are content there.
const (
	edgeWindowChars     = 200
	neutralSimilarity   = 0.5
	topicIslandMaxSim   = 0.4
	standardLengthSlack = 10.0
	keywordDensityScale = 5.0
)

var standardAdDurations = []float64{30, 60, 90, 120}

// Confidence contribution per indicator. The weights are fixed; they encode
// how diagnostic each indicator is of a sponsor read and deliberately sum
// past 1.0 so that strong multi-indicator spans saturate.
const (
	weightSponsor        = 0.35
	weightPromo          = 0.25
	weightURL            = 0.15
	weightCTA            = 0.15
	weightIntro          = 0.10
	weightOutro          = 0.05
	weightStandardLength = 0.10
	weightTopicIsland    = 0.15
	weightKeywordDensity = 0.20
)

// Classifier scores text spans for ad-typical language independent of the
// change-point machinery.
type Classifier struct {
	patterns Patterns
	embed    EmbedFunc
}

// New builds a classifier over the given pattern bank. Pass a nil embed to
// run without the semantic backend.
func New(patterns Patterns, embed EmbedFunc) *Classifier {
	return &Classifier{patterns: patterns, embed: embed}
}

// Classify extracts all features for one span and blends them into a
// confidence in [0, 1]. It never fails: embedding errors degrade to the
// neutral similarity.
func (c *Classifier) Classify(ctx context.Context, span Span) Features {
	features := Features{
		HasSponsorPhrase: anyMatch(c.patterns.Sponsor, span.Text),
		HasPromoCode:     anyMatch(c.patterns.Promo, span.Text),
		HasURLMention:    anyMatch(c.patterns.URL, span.Text),
		HasCallToAction:  anyMatch(c.patterns.CTA, span.Text),
		KeywordHits:      c.patterns.KeywordHits(span.Text),
		SimilarityBefore: neutralSimilarity,
		SimilarityAfter:  neutralSimilarity,
	}

	head := span.Text
	if len(head) > edgeWindowChars {
		head = head[:edgeWindowChars]
	}
	features.HasIntroTransition = anyMatch(c.patterns.Intro, head)
	if len(span.Text) > edgeWindowChars {
		tail := span.Text[len(span.Text)-edgeWindowChars:]
		features.HasOutroTransition = anyMatch(c.patterns.Outro, tail)
	}

	for _, standard := range standardAdDurations {
		if math.Abs(span.Duration-standard) <= standardLengthSlack {
			features.IsStandardLength = true
			break
		}
	}

	c.compareNeighbors(ctx, span, &features)
	features.IsTopicIsland = features.SimilarityBefore < topicIslandMaxSim &&
		features.SimilarityAfter < topicIslandMaxSim

	features.Confidence = confidence(features)
	return features
}

func (c *Classifier) compareNeighbors(ctx context.Context, span Span, features *Features) {
	if c.embed == nil || span.Text == "" || (span.Before == "" && span.After == "") {
		return
	}
	texts := []string{span.Text}
	beforeIdx, afterIdx := -1, -1
	if span.Before != "" {
		beforeIdx = len(texts)
		texts = append(texts, span.Before)
	}
	if span.After != "" {
		afterIdx = len(texts)
		texts = append(texts, span.After)
	}
	vectors, err := c.embed(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		return
	}
	if beforeIdx >= 0 {
		features.SimilarityBefore = CosineSimilarity(vectors[0], vectors[beforeIdx])
	}
	if afterIdx >= 0 {
		features.SimilarityAfter = CosineSimilarity(vectors[0], vectors[afterIdx])
	}
}

func confidence(f Features) float64 {
	score := 0.0
	if f.HasSponsorPhrase {
		score += weightSponsor
	}
	if f.HasPromoCode {
		score += weightPromo
	}
	if f.HasURLMention {
		score += weightURL
	}
	if f.HasCallToAction {
		score += weightCTA
	}
	if f.HasIntroTransition {
		score += weightIntro
	}
	if f.HasOutroTransition {
		score += weightOutro
	}
	if f.IsStandardLength {
		score += weightStandardLength
	}
	if f.IsTopicIsland {
		score += weightTopicIsland
	}
	density := float64(f.KeywordHits) / keywordDensityScale
	if density > 1 {
		density = 1
	}
	score += density * weightKeywordDensity
	if score > 1 {
		return 1
	}
	return score
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has no magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
