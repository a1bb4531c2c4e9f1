package textproc

import (
	"regexp"
	"strings"
)

// Normalizer cleans raw post text before scoring: lowercase, strip
// URLs and non-alphabetic characters, drop English stopwords
type Normalizer struct {
	stopwords map[string]struct{}
}

var (
	urlPattern      = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	nonAlphaPattern = regexp.MustCompile(`[^a-z\s]`)
)

// NewNormalizer creates new text normalizer
func NewNormalizer() *Normalizer {
	stopwords := make(map[string]struct{}, len(stopwordList))
	for _, w := range stopwordList {
		stopwords[w] = struct{}{}
	}
	return &Normalizer{stopwords: stopwords}
}

// Normalize returns the cleaned form of text. Output is a
// space-joined sequence of lowercase alphabetic tokens; it may be
// empty when the input carries no usable words.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = nonAlphaPattern.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, word := range fields {
		if _, stop := n.stopwords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}

// stopwordList is a compact English stopword set; close to the NLTK
// list but limited to words that never carry market sentiment
var stopwordList = []string{
	"a", "about", "above", "after", "again", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "did", "do", "does",
	"doing", "during", "each", "few", "for", "from", "further", "had",
	"has", "have", "having", "he", "her", "here", "hers", "him", "his",
	"how", "i", "if", "in", "into", "is", "it", "its", "just", "me",
	"more", "most", "my", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "out", "over", "own",
	"s", "same", "she", "so", "some", "such", "t", "than", "that", "the",
	"their", "theirs", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "very", "was",
	"we", "were", "what", "when", "where", "which", "while", "who",
	"whom", "why", "will", "with", "you", "your", "yours",
}
