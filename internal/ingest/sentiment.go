package ingest

import (
	"strings"
	"unicode"
)

// Small polarity lexicons for the sentiment proxy. This is a fallback for
// datasets without a sentiment column, not a sentiment model.
var positiveWords = map[string]struct{}{
	"amazing": {}, "awesome": {}, "best": {}, "brilliant": {}, "clear": {},
	"excellent": {}, "fantastic": {}, "good": {}, "great": {}, "helpful": {},
	"incredible": {}, "love": {}, "loved": {}, "perfect": {}, "thank": {},
	"thanks": {}, "useful": {}, "wonderful": {},
}

var negativeWords = map[string]struct{}{
	"awful": {}, "bad": {}, "boring": {}, "confused": {}, "confusing": {},
	"disappointed": {}, "hate": {}, "horrible": {}, "lost": {}, "terrible": {},
	"unclear": {}, "useless": {}, "waste": {}, "worst": {}, "wrong": {},
}

// LexiconPolarity scores text in [-1,1] as the balance of positive and
// negative lexicon hits over total hits. Texts with no hits score 0.
func LexiconPolarity(text string) float64 {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var positive, negative int
	for _, token := range tokens {
		if _, ok := positiveWords[token]; ok {
			positive++
		}
		if _, ok := negativeWords[token]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}
