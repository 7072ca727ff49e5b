package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/creatorpulse/hub/internal/models"
)

// stopwords filtered out of keyword tables. English function words plus a few
// tokens that dominate creator-comment corpora without carrying theme signal.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "because": {},
	"been": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {}, "do": {},
	"does": {}, "dont": {}, "for": {}, "from": {}, "get": {}, "got": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {}, "i": {},
	"if": {}, "im": {}, "in": {}, "is": {}, "it": {}, "its": {}, "just": {},
	"like": {}, "me": {}, "more": {}, "my": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "one": {}, "or": {}, "our": {}, "out": {}, "please": {}, "re": {},
	"really": {}, "s": {}, "she": {}, "so": {}, "some": {}, "t": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"they": {}, "this": {}, "to": {}, "too": {}, "u": {}, "up": {}, "us": {},
	"very": {}, "video": {}, "was": {}, "we": {}, "were": {}, "what": {},
	"when": {}, "which": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"would": {}, "you": {}, "your": {},
}

// tokenize lowercases text and splits it into alphanumeric runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// TopKeywords returns the topN most frequent non-stopword tokens across the
// given texts. Ties are broken alphabetically so the table is deterministic.
func TopKeywords(texts []string, topN int) []models.KeywordCount {
	if topN <= 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for _, token := range tokenize(text) {
			if len(token) < 2 {
				continue
			}
			if _, stop := stopwords[token]; stop {
				continue
			}
			counts[token]++
		}
	}

	keywords := make([]models.KeywordCount, 0, len(counts))
	for token, count := range counts {
		keywords = append(keywords, models.KeywordCount{Keyword: token, Count: count})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})

	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	return keywords
}
