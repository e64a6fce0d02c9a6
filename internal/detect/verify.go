package detect

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"podsweep/internal/detections"
	"podsweep/internal/logging"
	"podsweep/internal/transcript"
)

// verifiedConfidence replaces a borderline segment's confidence when the
// LLM confirms it is an ad.
const verifiedConfidence = 0.8

const verifySystemPrompt = `You classify podcast transcript excerpts. Decide whether the excerpt is ` +
	`an advertisement or sponsor read, as opposed to regular show content. ` +
	`Respond with a JSON object only: {"is_ad": boolean, "confidence": number between 0 and 1, "reason": string}.`

type verdict int

const (
	verdictKeep verdict = iota // transport or parse failure: preserve the prior
	verdictAd
	verdictNotAd
)

// verifySegments sends every segment whose confidence lies strictly inside
// the verification band to the LLM. Confirmed segments are boosted to the
// fixed verified confidence, rejected ones dropped, and any failure keeps
// the segment unchanged. Calls run concurrently across segments; results
// are applied in input order so the final list is deterministic.
func (e *Engine) verifySegments(ctx context.Context, t *transcript.Transcript, segments []detections.Segment) []detections.Segment {
	verdicts := make([]verdict, len(segments))
	var wg sync.WaitGroup
	for i, seg := range segments {
		if seg.Confidence <= e.llmCfg.VerifyLow || seg.Confidence >= e.llmCfg.VerifyHigh {
			verdicts[i] = verdictAd // outside the band: decided without the LLM
			continue
		}
		text := t.TextBetween(seg.Start, seg.End)
		if strings.TrimSpace(text) == "" {
			verdicts[i] = verdictKeep
			continue
		}
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			verdicts[i] = e.verifyOne(ctx, text)
		}(i, text)
	}
	wg.Wait()

	var kept []detections.Segment
	for i, seg := range segments {
		switch verdicts[i] {
		case verdictNotAd:
			e.logger.Info("verifier rejected segment",
				logging.Float64("start", seg.Start),
				logging.Float64("end", seg.End),
				logging.Float64("confidence", seg.Confidence),
			)
		case verdictAd:
			if seg.Confidence > e.llmCfg.VerifyLow && seg.Confidence < e.llmCfg.VerifyHigh {
				seg.Confidence = verifiedConfidence
				seg.Method += detections.TagLLM
			}
			kept = append(kept, seg)
		default:
			kept = append(kept, seg)
		}
	}
	return kept
}

func (e *Engine) verifyOne(ctx context.Context, text string) verdict {
	prompt := "Transcript excerpt:\n\n" + text + "\n\nIs this an advertisement?"
	response, err := e.generator.Generate(ctx, verifySystemPrompt, prompt, true)
	if err != nil {
		e.logger.Warn("llm verification failed, keeping segment", logging.Error(err))
		return verdictKeep
	}
	return parseVerdict(response)
}

type verifyPayload struct {
	IsAd       *bool   `json:"is_ad"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseVerdict reads the model's answer. JSON is tried first; free-text
// replies fall back to scanning for an affirmative or negative token, and
// anything unrecognizable counts as a failure, which keeps the segment.
func parseVerdict(response string) verdict {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return verdictKeep
	}
	var payload verifyPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && payload.IsAd != nil {
		if *payload.IsAd {
			return verdictAd
		}
		return verdictNotAd
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, `"is_ad": true`), strings.Contains(lower, `"is_ad":true`):
		return verdictAd
	case strings.Contains(lower, `"is_ad": false`), strings.Contains(lower, `"is_ad":false`):
		return verdictNotAd
	case strings.HasPrefix(lower, "yes"), strings.HasPrefix(lower, "true"):
		return verdictAd
	case strings.HasPrefix(lower, "no"), strings.HasPrefix(lower, "false"):
		return verdictNotAd
	}
	return verdictKeep
}
