package adclass

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const sponsorRead = "This episode is brought to you by Progressive Insurance. " +
	"Get a quote at progressive.com and save up to 30% on your car insurance. " +
	"Use code PODCAST at checkout for an extra discount."

func TestClassifySponsorRead(t *testing.T) {
	classifier := New(DefaultPatterns(), nil)
	features := classifier.Classify(context.Background(), Span{Text: sponsorRead, Duration: 60})

	if !features.HasSponsorPhrase {
		t.Error("sponsor phrase not detected")
	}
	if !features.HasPromoCode {
		t.Error("promo code not detected")
	}
	if !features.HasURLMention {
		t.Error("URL mention not detected")
	}
	if !features.HasCallToAction {
		t.Error("call to action not detected")
	}
	if !features.IsStandardLength {
		t.Error("60s should be a standard ad length")
	}
	if features.Confidence < 0.85 {
		t.Errorf("confidence = %v, want >= 0.85", features.Confidence)
	}
	if !features.IsAd(0.4) {
		t.Error("sponsor read should classify as ad at the default threshold")
	}
}

func TestClassifyShowContent(t *testing.T) {
	classifier := New(DefaultPatterns(), nil)
	features := classifier.Classify(context.Background(), Span{
		Text:     "So the dragon landed on the castle and everyone in the village ran for the gates.",
		Duration: 45,
	})
	if features.IsAd(0.4) {
		t.Error("story content should not classify as ad")
	}
	if features.Confidence >= 0.2 {
		t.Errorf("confidence = %v, want < 0.2", features.Confidence)
	}
	if features.IsStandardLength {
		t.Error("45s is not within 10s of any standard ad length")
	}
}

func TestStandardLengthSlack(t *testing.T) {
	classifier := New(DefaultPatterns(), nil)
	cases := []struct {
		duration float64
		want     bool
	}{
		{20, true}, {29, true}, {41, false}, {55, true}, {100, true}, {131, false}, {200, false},
	}
	for _, tc := range cases {
		features := classifier.Classify(context.Background(), Span{Text: "x", Duration: tc.duration})
		if features.IsStandardLength != tc.want {
			t.Errorf("duration %v: standard length = %v, want %v", tc.duration, features.IsStandardLength, tc.want)
		}
	}
}

// Spans at or below 200 characters never test positive for an outro
// transition, even when the phrase sits in the final characters.
func TestOutroRequiresLongSpan(t *testing.T) {
	classifier := New(DefaultPatterns(), nil)
	short := strings.Repeat("a ", 55) + "and now welcome back to the show"
	if len(short) > 200 {
		t.Fatalf("fixture must stay at or below 200 chars, got %d", len(short))
	}
	features := classifier.Classify(context.Background(), Span{Text: short, Duration: 30})
	if features.HasOutroTransition {
		t.Error("short span flagged outro transition")
	}

	long := strings.Repeat("blah blah content here ", 12) + "and now welcome back to the show"
	if len(long) <= 200 {
		t.Fatalf("fixture must exceed 200 chars, got %d", len(long))
	}
	features = classifier.Classify(context.Background(), Span{Text: long, Duration: 30})
	if !features.HasOutroTransition {
		t.Error("long span with trailing outro phrase not flagged")
	}
}

func TestIntroOnlyInHead(t *testing.T) {
	classifier := New(DefaultPatterns(), nil)
	late := strings.Repeat("regular conversation about the topic at hand ", 6) +
		"and now a word from our sponsors"
	if len(late) <= 200 {
		t.Fatalf("fixture must push the phrase past 200 chars, got %d", len(late))
	}
	features := classifier.Classify(context.Background(), Span{Text: late, Duration: 30})
	if features.HasIntroTransition {
		t.Error("intro phrase outside the first 200 chars should not flag")
	}

	early := "And now a word from our sponsors. " + strings.Repeat("more talk ", 30)
	features = classifier.Classify(context.Background(), Span{Text: early, Duration: 30})
	if !features.HasIntroTransition {
		t.Error("intro phrase in the head should flag")
	}
}

// Confidence is monotonically non-decreasing as indicators accumulate.
func TestConfidenceMonotonicInIndicators(t *testing.T) {
	base := Features{}
	prev := confidence(base)
	steps := []func(*Features){
		func(f *Features) { f.HasSponsorPhrase = true },
		func(f *Features) { f.HasPromoCode = true },
		func(f *Features) { f.HasURLMention = true },
		func(f *Features) { f.HasCallToAction = true },
		func(f *Features) { f.HasIntroTransition = true },
		func(f *Features) { f.HasOutroTransition = true },
		func(f *Features) { f.IsStandardLength = true },
		func(f *Features) { f.IsTopicIsland = true },
		func(f *Features) { f.KeywordHits = 3 },
	}
	for i, step := range steps {
		step(&base)
		next := confidence(base)
		if next < prev {
			t.Fatalf("step %d decreased confidence: %v -> %v", i, prev, next)
		}
		prev = next
	}
	if prev != 1 {
		t.Errorf("fully loaded features = %v, want clamp to 1", prev)
	}
}

func TestTopicIslandFromEmbeddings(t *testing.T) {
	// The span's vector is orthogonal to both neighbors, so both
	// similarities are 0 and the span is an island.
	embed := func(_ context.Context, texts []string) ([][]float64, error) {
		vectors := make([][]float64, len(texts))
		for i, text := range texts {
			if strings.Contains(text, "ad") {
				vectors[i] = []float64{1, 0}
			} else {
				vectors[i] = []float64{0, 1}
			}
		}
		return vectors, nil
	}
	classifier := New(DefaultPatterns(), embed)
	features := classifier.Classify(context.Background(), Span{
		Text:     "ad read here",
		Duration: 30,
		Before:   "show content before",
		After:    "show content after",
	})
	if !features.IsTopicIsland {
		t.Errorf("orthogonal span should be a topic island (sims %v, %v)",
			features.SimilarityBefore, features.SimilarityAfter)
	}
}

// An embedding failure must not change boolean feature detection and must
// leave similarities at the neutral value, which can never form an island.
func TestEmbeddingFailureDegradesToNeutral(t *testing.T) {
	failing := func(context.Context, []string) ([][]float64, error) {
		return nil, errors.New("model unavailable")
	}
	withEmbed := New(DefaultPatterns(), failing)
	without := New(DefaultPatterns(), nil)
	span := Span{Text: sponsorRead, Duration: 60, Before: "before text", After: "after text"}

	a := withEmbed.Classify(context.Background(), span)
	b := without.Classify(context.Background(), span)
	if a != b {
		t.Errorf("failing embedder changed features:\n%+v\n%+v", a, b)
	}
	if a.SimilarityBefore != 0.5 || a.SimilarityAfter != 0.5 {
		t.Errorf("similarities = %v, %v, want neutral 0.5", a.SimilarityBefore, a.SimilarityAfter)
	}
	if a.IsTopicIsland {
		t.Error("neutral similarities must not form a topic island")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if sim := CosineSimilarity([]float64{1, 0}, []float64{1, 0}); sim != 1 {
		t.Errorf("identical vectors = %v, want 1", sim)
	}
	if sim := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); sim != 0 {
		t.Errorf("orthogonal vectors = %v, want 0", sim)
	}
	if sim := CosineSimilarity([]float64{1, 2}, []float64{1}); sim != 0 {
		t.Errorf("mismatched lengths = %v, want 0", sim)
	}
	if sim := CosineSimilarity([]float64{0, 0}, []float64{1, 1}); sim != 0 {
		t.Errorf("zero vector = %v, want 0", sim)
	}
}
