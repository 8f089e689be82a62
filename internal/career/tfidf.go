package career

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// foldCaser performs Unicode case folding so that tokens compare equal
// regardless of the casing used in event titles.
var foldCaser = cases.Fold()

// tokenize splits a document into lowercased word tokens. Punctuation is a
// separator, so compound keywords like "ci/cd" yield their parts.
func tokenize(text string) []string {
	folded := foldCaser.String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tfidfIndex holds raw term counts per document plus document frequencies
// over the whole corpus.
type tfidfIndex struct {
	counts []map[string]int
	df     map[string]int
}

// newIndex builds an index over the given documents. The same construction
// is used for the startup corpus and for the per-query corpus that includes
// the student document, so term weights stay comparable.
func newIndex(docs []string) *tfidfIndex {
	ix := &tfidfIndex{
		counts: make([]map[string]int, len(docs)),
		df:     make(map[string]int),
	}
	for i, doc := range docs {
		counts := make(map[string]int)
		for _, tok := range tokenize(doc) {
			counts[tok]++
		}
		ix.counts[i] = counts
		for tok := range counts {
			ix.df[tok]++
		}
	}
	return ix
}

// vector returns the term -> tf·idf weight mapping for document i.
// idf = ln(1 + N/df): log-scaled, never negative, and shared between
// corpus and query documents of the same index.
func (ix *tfidfIndex) vector(i int) map[string]float64 {
	n := float64(len(ix.counts))
	vec := make(map[string]float64, len(ix.counts[i]))
	for tok, count := range ix.counts[i] {
		idf := math.Log(1 + n/float64(ix.df[tok]))
		vec[tok] = float64(count) * idf
	}
	return vec
}

// cosine computes the cosine similarity of two sparse vectors. A zero norm
// on either side yields 0 rather than a division by zero.
func cosine(a, b map[string]float64) float64 {
	var dot, magA, magB float64
	for tok, va := range a {
		magA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		magB += vb * vb
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}
