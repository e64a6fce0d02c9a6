// Package textsig converts transcript segments into per-segment scalar
// scores for the signal fuser: keyword density, transition phrasing,
// similarity to canonical sponsor reads, and topic discontinuity against
// the previous segment. The two embedding-based channels are only emitted
// when an embedding backend is available.
package textsig

import (
	"context"

	"podsweep/internal/adclass"
	"podsweep/internal/transcript"
)

// Signal channel names consumed by the fuser.
const (
	ChannelKeyword    = "keyword"
	ChannelTransition = "transition"
	ChannelEmbedding  = "embedding"
	ChannelBoundary   = "boundary"
)

// Scaling constants. Keyword hits saturate at three matches per segment;
// transition phrasing weighs heavier near the episode edges where sponsor
// reads cluster.
const (
	keywordHitScale      = 3.0
	transitionHitWeight  = 0.5
	edgeTransitionFactor = 1.5
	edgeFraction         = 0.10
)

// Embedding similarity is rescaled so that anything at or below lowSim maps
// to 0 and anything at or above highSim maps to 1; the boundary channel
// inverts a similar band.
const (
	exemplarLowSim  = 0.2
	exemplarHighSim = 0.7
	boundaryHighSim = 0.7
	boundaryLowSim  = 0.3
	neutralBoundary = 0.5
)

// adExemplars are canonical sponsor-read texts. Their embeddings form the
// reference bank the embedding channel measures segments against.
var adExemplars = []string{
	"This episode is brought to you by our sponsor. Use promo code for twenty percent off your first order.",
	"Today's show is sponsored by a company that makes getting insurance quotes fast and easy. Visit their website to learn more.",
	"Are you tired of overpaying? Sign up today and get your first month free. Terms and conditions apply.",
	"Thanks to our sponsor for supporting the show. Go to their site slash podcast and use our code at checkout.",
	"And now a quick word from our sponsors. We'll be right back after this short break.",
	"Download the app today and start your free trial. New customers get fifteen percent off with code PODCAST.",
}

// Extractor computes text signal channels. The zero embedder (nil) drops
// the embedding and boundary channels rather than emitting neutral arrays,
// so the fuser renormalizes over the channels that exist.
type Extractor struct {
	patterns adclass.Patterns
	embed    adclass.EmbedFunc
}

// New builds an extractor over the standard pattern bank.
func New(patterns adclass.Patterns, embed adclass.EmbedFunc) *Extractor {
	return &Extractor{patterns: patterns, embed: embed}
}

// Channels produces the per-segment signal arrays and the segment-start
// timestamp axis. All returned arrays share the axis length.
func (e *Extractor) Channels(ctx context.Context, t *transcript.Transcript) ([]float64, map[string][]float64) {
	if t == nil || len(t.Segments) == 0 {
		return nil, nil
	}
	segments := t.Segments
	n := len(segments)
	duration := t.Duration()

	timestamps := make([]float64, n)
	keyword := make([]float64, n)
	transition := make([]float64, n)
	for i, seg := range segments {
		timestamps[i] = seg.Start
		keyword[i] = clampUnit(float64(e.patterns.KeywordHits(seg.Text)) / keywordHitScale)
		transition[i] = e.transitionScore(seg, duration)
	}
	channels := map[string][]float64{
		ChannelKeyword:    keyword,
		ChannelTransition: transition,
	}

	if embedding, boundary, ok := e.embeddingChannels(ctx, segments); ok {
		channels[ChannelEmbedding] = embedding
		channels[ChannelBoundary] = boundary
	}
	return timestamps, channels
}

func (e *Extractor) transitionScore(seg transcript.Segment, duration float64) float64 {
	hits := e.patterns.TransitionHits(seg.Text)
	score := float64(hits) * transitionHitWeight
	if duration > 0 {
		mid := (seg.Start + seg.End) / 2
		if mid < duration*edgeFraction || mid > duration*(1-edgeFraction) {
			score *= edgeTransitionFactor
		}
	}
	return clampUnit(score)
}

// embeddingChannels embeds the exemplar bank and every segment in one call
// and derives both semantic channels. Any embedding failure drops both
// channels; the fuser treats an absent channel as zero weight.
func (e *Extractor) embeddingChannels(ctx context.Context, segments []transcript.Segment) (embedding, boundary []float64, ok bool) {
	if e.embed == nil {
		return nil, nil, false
	}
	texts := make([]string, 0, len(adExemplars)+len(segments))
	texts = append(texts, adExemplars...)
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	vectors, err := e.embed(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		return nil, nil, false
	}
	bank := vectors[:len(adExemplars)]
	segVectors := vectors[len(adExemplars):]

	embedding = make([]float64, len(segments))
	boundary = make([]float64, len(segments))
	for i, vec := range segVectors {
		best := 0.0
		for _, exemplar := range bank {
			if sim := adclass.CosineSimilarity(vec, exemplar); sim > best {
				best = sim
			}
		}
		embedding[i] = rescale(best, exemplarLowSim, exemplarHighSim)

		if i == 0 {
			boundary[i] = neutralBoundary
			continue
		}
		prevSim := adclass.CosineSimilarity(vec, segVectors[i-1])
		boundary[i] = 1 - rescale(prevSim, boundaryLowSim, boundaryHighSim)
	}
	return embedding, boundary, true
}

// rescale maps v linearly from [low, high] onto [0, 1], clamping outside.
func rescale(v, low, high float64) float64 {
	if v <= low {
		return 0
	}
	if v >= high {
		return 1
	}
	return (v - low) / (high - low)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
