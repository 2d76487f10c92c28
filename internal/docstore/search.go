package docstore

import (
	"errors"
	"sort"
	"strings"

	"github.com/localrivet/mdpack/internal/errortypes"
)

// SearchResult pairs a matched document with its relevance score.
// Scores fall in [0, 1].
type SearchResult struct {
	Document Document
	Score    float64
}

// Scoring weights. The exact formula is implementation-defined; what
// matters is that scores are bounded, deterministic, and monotonic in
// the number of matched query terms.
const (
	termWeight   = 0.8
	phraseWeight = 0.2
)

// Search returns at most maxResults documents matching the query,
// ordered by descending score with ties broken by ascending id.
// Repeating the same query against an unchanged collection yields an
// identical sequence. A query that matches nothing returns an empty
// slice, not an error.
func (c *Collection) Search(query string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errortypes.InvalidArgumentError(errors.New("query cannot be empty"), "cannot search documents")
	}
	if maxResults <= 0 {
		return nil, errortypes.InvalidArgumentError(errors.New("max results must be positive"), "cannot search documents").
			WithField("max_results", maxResults)
	}

	lowered := strings.ToLower(query)
	terms := uniqueTerms(lowered)

	c.mu.RLock()
	results := make([]SearchResult, 0, len(c.docs))
	for _, doc := range c.docs {
		score := scoreDocument(doc, lowered, terms)
		if score > 0 {
			results = append(results, SearchResult{Document: doc.Clone(), Score: score})
		}
	}
	c.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// scoreDocument computes the relevance of one document. The score is
// the fraction of distinct query terms found in the content or
// metadata, plus a bonus when the whole query phrase occurs in the
// content. Both parts are weighted so the total never exceeds 1.
func scoreDocument(doc Document, loweredQuery string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}

	content := strings.ToLower(doc.Content)
	var meta strings.Builder
	for k, v := range doc.Metadata {
		meta.WriteString(strings.ToLower(k))
		meta.WriteByte(' ')
		meta.WriteString(strings.ToLower(v))
		meta.WriteByte(' ')
	}
	metadata := meta.String()

	matched := 0
	for _, term := range terms {
		if strings.Contains(content, term) || strings.Contains(metadata, term) {
			matched++
		}
	}

	score := termWeight * float64(matched) / float64(len(terms))
	if strings.Contains(content, loweredQuery) {
		score += phraseWeight
	}
	if score > 1 {
		score = 1
	}
	return score
}

func uniqueTerms(loweredQuery string) []string {
	fields := strings.Fields(loweredQuery)
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}
