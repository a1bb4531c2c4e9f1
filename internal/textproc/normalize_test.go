package textproc

import "testing"

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "TSLA Is GOING Up",
			expected: "tsla going up",
		},
		{
			name:     "strips urls",
			input:    "check this https://example.com/dd and www.reddit.com/r/stocks chart",
			expected: "check chart",
		},
		{
			name:     "strips numbers and punctuation",
			input:    "bought 100 shares @ $42.50, great buy!!!",
			expected: "bought shares great buy",
		},
		{
			name:     "removes stopwords",
			input:    "this is the best stock in the market",
			expected: "best stock market",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only stopwords and noise",
			input:    "it is what it is... 123",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
