package sentiment

import (
	"strings"
)

// Scorer maps normalized text to a bounded sentiment score.
// Implementations must be deterministic, side-effect free and total:
// every input, including empty or garbled text, yields a value in
// [-1.0, 1.0], with 0.0 as the neutral midpoint.
type Scorer interface {
	Score(text string) float64
}

// LexiconScorer performs keyword-based sentiment analysis over a
// stock-market lexicon. Construct once and inject; the word maps are
// built at construction and never mutated afterwards.
type LexiconScorer struct {
	positiveWords map[string]float64
	negativeWords map[string]float64
}

// NewLexiconScorer creates new lexicon scorer
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		positiveWords: buildPositiveWords(),
		negativeWords: buildNegativeWords(),
	}
}

// Score analyzes text and returns sentiment score (-1.0 to 1.0)
func (s *LexiconScorer) Score(text string) float64 {
	if text == "" {
		return 0.0
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0.0
	}

	var score float64
	matchCount := 0

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:")

		if weight, ok := s.positiveWords[word]; ok {
			score += weight
			matchCount++
		}

		if weight, ok := s.negativeWords[word]; ok {
			score -= weight
			matchCount++
		}
	}

	if matchCount == 0 {
		return 0.0
	}

	// Normalize by total token count so long neutral posts stay near 0
	normalizedScore := score / float64(len(words))

	if normalizedScore > 1.0 {
		normalizedScore = 1.0
	} else if normalizedScore < -1.0 {
		normalizedScore = -1.0
	}

	return normalizedScore
}

// buildPositiveWords returns positive keywords for stock discussion
func buildPositiveWords() map[string]float64 {
	return map[string]float64{
		// General positive
		"bullish":    1.0,
		"bull":       0.9,
		"rally":      0.9,
		"surge":      0.8,
		"soar":       0.8,
		"moon":       0.7,
		"rocket":     0.7,
		"gain":       0.6,
		"gains":      0.6,
		"profit":     0.6,
		"win":        0.6,
		"green":      0.6,
		"buy":        0.6,
		"up":         0.5,
		"rise":       0.5,
		"grow":       0.5,
		"growth":     0.5,
		"increase":   0.5,
		"positive":   0.5,
		"optimistic": 0.5,
		"strong":     0.4,
		"great":      0.5,
		"good":       0.4,

		// Stock specific
		"calls":       0.6,
		"undervalued": 0.6,
		"beat":        0.6,
		"beats":       0.6,
		"upgrade":     0.5,
		"upgraded":    0.5,
		"breakout":    0.7,
		"dividend":    0.4,
		"buyback":     0.5,
		"outperform":  0.6,
		"ath":         0.8, // all-time high
		"tendies":     0.7,
		"yolo":        0.4,
		"hold":        0.3,
	}
}

// buildNegativeWords returns negative keywords for stock discussion
func buildNegativeWords() map[string]float64 {
	return map[string]float64{
		// General negative
		"bearish":     1.0,
		"bear":        0.9,
		"crash":       1.0,
		"plunge":      0.8,
		"tank":        0.7,
		"terrible":    0.7,
		"fall":        0.6,
		"drop":        0.6,
		"decline":     0.6,
		"loss":        0.7,
		"losses":      0.7,
		"red":         0.6,
		"down":        0.5,
		"negative":    0.5,
		"pessimistic": 0.5,
		"fear":        0.6,
		"panic":       0.8,
		"sell":        0.5,
		"selloff":     0.7,
		"correction":  0.6,
		"weak":        0.4,
		"bad":         0.4,

		// Stock specific
		"puts":         0.6,
		"overvalued":   0.6,
		"miss":         0.5,
		"missed":       0.5,
		"downgrade":    0.6,
		"downgraded":   0.6,
		"bankruptcy":   1.0,
		"bankrupt":     1.0,
		"fraud":        1.0,
		"scam":         1.0,
		"lawsuit":      0.7,
		"sec":          0.5, // usually regulatory trouble in this context
		"recession":    0.7,
		"inflation":    0.5,
		"layoffs":      0.7,
		"dilution":     0.6,
		"bagholder":    0.8,
		"bagholders":   0.8,
		"short":        0.4,
		"bubble":       0.6,
		"capitulation": 0.8,
	}
}
