package rag

import (
	"strings"
	"unicode"

	"c3ingest/internal/storage"
)

// Lexical weights. The total is capped at maxLexicalScore so a keyword match
// can reorder close vector hits but not outrank a clearly better one.
const (
	coverageWeight    = float32(0.2)
	densityWeight     = float32(0.1)
	densityScale      = float32(10.0)
	headingMatchBonus = float32(0.1)
	pageMatchBonus    = float32(0.15)
	maxLexicalScore   = float32(0.4)
)

var lexicalStopwords = stopwordSet(`
	a an and are as at be but by for from has have in is it of on or
	our that the this to was were what which with
`)

func stopwordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// lexicalScore is the keyword half of a hit's final score. It combines:
//   - coverage: share of distinct query terms found in the chunk text
//   - density: term occurrences per chunk token, using the chunker's
//     token_count when known so long chunks are not favoured
//   - a bonus per query term in the heading path
//   - a bonus when the query names the chunk's page ("page 12", "p 12")
func lexicalScore(query string, chunk *storage.ChunkRecord) float32 {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return 0
	}

	var score float32

	if words := tokenize(chunk.Text); len(words) > 0 {
		freq := make(map[string]int, len(words))
		for _, w := range words {
			freq[w]++
		}

		var covered, occurrences int
		for _, term := range terms {
			if n := freq[term]; n > 0 {
				covered++
				occurrences += n
			}
		}

		length := chunk.TokenCount
		if length <= 0 {
			length = len(words)
		}
		density := float32(occurrences) / float32(length) * densityScale
		if density > 1 {
			density = 1
		}
		score += coverageWeight*float32(covered)/float32(len(terms)) + densityWeight*density
	}

	if chunk.HeadingPath != "" {
		heading := make(map[string]bool)
		for _, w := range tokenize(chunk.HeadingPath) {
			heading[w] = true
		}
		for _, term := range terms {
			if heading[term] {
				score += headingMatchBonus
			}
		}
	}

	if chunk.Page != nil && requestsPage(query, strings.TrimSpace(*chunk.Page)) {
		score += pageMatchBonus
	}

	return min(score, maxLexicalScore)
}

// queryTerms returns the distinct non-stopword tokens of a query in order.
func queryTerms(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, w := range tokenize(query) {
		if _, stop := lexicalStopwords[w]; stop || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}

// requestsPage reports whether the query asks for the given page label.
func requestsPage(query, page string) bool {
	if page == "" {
		return false
	}
	page = strings.ToLower(page)
	words := tokenize(query)
	for i := 0; i+1 < len(words); i++ {
		if (words[i] == "page" || words[i] == "p" || words[i] == "pg") && words[i+1] == page {
			return true
		}
	}
	return false
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil
	}
	return words
}
