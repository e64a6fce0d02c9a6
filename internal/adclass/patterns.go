package adclass

import "regexp"

// Patterns is the compiled linguistic feature bank the classifier matches
// against. Callers normally use DefaultPatterns; the bank is injected so
// tests can narrow it.
type Patterns struct {
	Sponsor []*regexp.Regexp
	Promo   []*regexp.Regexp
	URL     []*regexp.Regexp
	CTA     []*regexp.Regexp
	Intro   []*regexp.Regexp
	Outro   []*regexp.Regexp
}

// The phrase tables define what counts as ad language.
// They are matched case-insensitively against raw transcript text, so they
// tolerate the transcriber's punctuation but not its misspellings.
var (
	sponsorPhrases = []string{
		`sponsored\s+by`,
		`brought\s+to\s+you\s+by`,
		`this\s+episode\s+is\s+sponsored`,
		`thanks?\s+to\s+our\s+sponsor`,
		`support\s+for\s+(?:this|the)\s+(?:show|podcast|episode)\s+comes\s+from`,
		`(?:today's|our)\s+sponsor`,
		`in\s+partnership\s+with`,
		`is\s+made\s+possible\s+by`,
	}
	promoPhrases = []string{
		`promo\s+code`,
		`coupon\s+code`,
		`discount\s+code`,
		`use\s+(?:the\s+)?code\s+\w+`,
		`enter\s+(?:the\s+)?code`,
		`\d+\s*(?:%|percent)\s+off`,
		`free\s+(?:trial|shipping|month)`,
		`first\s+month\s+free`,
	}
	urlPhrases = []string{
		`(?:visit|go\s+to|head\s+(?:over\s+)?to|check\s+out)\s+\S+\.(?:com|org|net|co|io)`,
		`at\s+\w+\.(?:com|org|net|co|io)\b`,
		`\w+\.com/\w+`,
		`slash\s+\w+`,
		`link\s+in\s+the\s+(?:show\s*notes|description)`,
	}
	ctaPhrases = []string{
		`sign\s+up\s+(?:now|today|at|for)`,
		`get\s+a\s+(?:free\s+)?quote`,
		`save\s+up\s+to`,
		`start\s+your\s+free\s+trial`,
		`download\s+the\s+app`,
		`don't\s+miss\s+(?:out|this)`,
		`for\s+a\s+limited\s+time`,
		`terms\s+(?:and\s+conditions\s+)?apply`,
		`new\s+customers\s+only`,
	}
	introTransitionPhrases = []string{
		`(?:a\s+)?(?:quick\s+)?word\s+from\s+our\s+sponsors?`,
		`we(?:'ll|\s+will)\s+be\s+right\s+back`,
		`before\s+we\s+(?:get\s+started|continue|dive\s+in|go\s+any\s+further)`,
		`let's\s+take\s+a\s+(?:quick\s+|short\s+)?break`,
		`let's\s+hear\s+from`,
		`first,?\s+a\s+message\s+from`,
	}
	outroTransitionPhrases = []string{
		`welcome\s+back`,
		`(?:now\s+)?back\s+to\s+the\s+(?:show|episode|podcast|interview)`,
		`and\s+we're\s+back`,
		`as\s+i\s+was\s+saying`,
		`where\s+were\s+we`,
		`anyway,?\s+back\s+to`,
	}
)

// DefaultPatterns compiles the standard phrase bank. Compilation happens per
// call; construct once and share.
func DefaultPatterns() Patterns {
	return Patterns{
		Sponsor: compilePhrases(sponsorPhrases),
		Promo:   compilePhrases(promoPhrases),
		URL:     compilePhrases(urlPhrases),
		CTA:     compilePhrases(ctaPhrases),
		Intro:   compilePhrases(introTransitionPhrases),
		Outro:   compilePhrases(outroTransitionPhrases),
	}
}

func compilePhrases(phrases []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(phrases))
	for i, phrase := range phrases {
		compiled[i] = regexp.MustCompile(`(?i)` + phrase)
	}
	return compiled
}

// KeywordHits counts matches across the sponsor, promo, URL, and CTA
// families. Every match counts, including repeats of the same pattern.
func (p Patterns) KeywordHits(text string) int {
	total := 0
	for _, family := range [][]*regexp.Regexp{p.Sponsor, p.Promo, p.URL, p.CTA} {
		total += countHits(family, text)
	}
	return total
}

// TransitionHits counts intro and outro transition phrase matches anywhere
// in the text. Positional gating (intro near the start, outro near the end)
// is the classifier's job; the signal extractor wants raw counts.
func (p Patterns) TransitionHits(text string) int {
	return countHits(p.Intro, text) + countHits(p.Outro, text)
}

func countHits(family []*regexp.Regexp, text string) int {
	total := 0
	for _, pattern := range family {
		total += len(pattern.FindAllStringIndex(text, -1))
	}
	return total
}

func anyMatch(family []*regexp.Regexp, text string) bool {
	for _, pattern := range family {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
