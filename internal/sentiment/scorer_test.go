package sentiment

import (
	"strings"
	"testing"
)

func TestLexiconScorer_Score(t *testing.T) {
	scorer := NewLexiconScorer()

	tests := []struct {
		name     string
		text     string
		expected string // positive, negative, or neutral
	}{
		{
			name:     "bullish text",
			text:     "bullish rally undervalued buy calls moon",
			expected: "positive",
		},
		{
			name:     "bearish text",
			text:     "crash bearish puts panic sell bagholder",
			expected: "negative",
		},
		{
			name:     "neutral text",
			text:     "earnings report scheduled thursday morning",
			expected: "neutral",
		},
		{
			name:     "mixed but bullish",
			text:     "despite fear strong growth bullish breakout momentum",
			expected: "positive",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "neutral",
		},
		{
			name:     "whitespace only",
			text:     "   \t\n  ",
			expected: "neutral",
		},
		{
			name:     "punctuation around keywords",
			text:     "bullish! rally, moon.",
			expected: "positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(tt.text)

			var got string
			if score > 0.05 {
				got = "positive"
			} else if score < -0.05 {
				got = "negative"
			} else {
				got = "neutral"
			}

			if got != tt.expected {
				t.Errorf("Expected %s sentiment, got %s (score: %.3f)",
					tt.expected, got, score)
			}
		})
	}
}

func TestLexiconScorer_ScoreRange(t *testing.T) {
	scorer := NewLexiconScorer()

	texts := []string{
		"bullish rally moon rocket surge breakout",
		"bearish crash panic bankruptcy fraud",
		"neutral stable sideways",
		"",
		strings.Repeat("crash ", 500),
		"\x00\xff garbled � input ??? !!!",
	}

	for _, text := range texts {
		score := scorer.Score(text)

		if score < -1.0 || score > 1.0 {
			t.Errorf("Score should be between -1.0 and 1.0, got %.3f for: %q",
				score, text)
		}
	}
}

func TestLexiconScorer_Deterministic(t *testing.T) {
	scorer := NewLexiconScorer()
	text := "strong bullish rally despite lawsuit fear and selloff"

	first := scorer.Score(text)
	for i := 0; i < 100; i++ {
		if got := scorer.Score(text); got != first {
			t.Fatalf("Score not deterministic: first %.6f, run %d got %.6f", first, i, got)
		}
	}
}
