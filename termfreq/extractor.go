// Package termfreq turns document text into normalized term frequencies.
// Text is tokenized with bleve's standard analyzer (unicode segmentation,
// lower-casing and English stop-word removal). HTML documents are reduced to
// their text with a strict bluemonday policy first.
package termfreq

import (
	"errors"
	"html"
	"regexp"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis"
	"github.com/blevesearch/bleve/analysis/analyzer/standard"
	"github.com/microcosm-cc/bluemonday"
)

var markupRegex = regexp.MustCompile(`(?i)<(?:!doctype|html|head|body|pre|div|p)[\s>]`)

// Extractor computes term frequencies. It is safe for concurrent use.
type Extractor struct {
	analyzer   *analysis.Analyzer
	policyPool sync.Pool
}

// NewExtractor returns an extractor backed by the standard analyzer.
func NewExtractor() (*Extractor, error) {
	analyzer := bleve.NewIndexMapping().AnalyzerNamed(standard.Name)
	if analyzer == nil {
		return nil, errors.New("termfreq: standard analyzer is not registered")
	}

	return &Extractor{
		analyzer: analyzer,
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}, nil
}

// Terms returns the terms of content in document order.
func (e *Extractor) Terms(content string) []string {
	tokens := e.analyzer.Analyze([]byte(e.plainText(content)))

	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token.Term) == 0 {
			continue
		}

		terms = append(terms, string(token.Term))
	}

	return terms
}

// Frequencies returns the relative frequency of every term in content. The
// frequencies of a non-empty document sum to 1.
func (e *Extractor) Frequencies(content string) map[string]float64 {
	terms := e.Terms(content)
	if len(terms) == 0 {
		return map[string]float64{}
	}

	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}

	total := float64(len(terms))
	freqs := make(map[string]float64, len(counts))
	for term, n := range counts {
		freqs[term] = float64(n) / total
	}

	return freqs
}

func (e *Extractor) plainText(content string) string {
	if !markupRegex.MatchString(content) {
		return content
	}

	policy := e.policyPool.Get().(*bluemonday.Policy)
	defer e.policyPool.Put(policy)

	return html.UnescapeString(policy.Sanitize(content))
}
