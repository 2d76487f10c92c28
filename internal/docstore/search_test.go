package docstore

import (
	"math"
	"testing"

	"github.com/localrivet/mdpack/internal/errortypes"
)

func TestSearchValidation(t *testing.T) {
	c := NewCollection()
	c.Add("some content", nil)

	if _, err := c.Search("", 5); !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Empty query should be invalid, got %v", err)
	}
	if _, err := c.Search("   ", 5); !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Whitespace query should be invalid, got %v", err)
	}
	if _, err := c.Search("query", 0); !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Zero max results should be invalid, got %v", err)
	}
	if _, err := c.Search("query", -3); !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Negative max results should be invalid, got %v", err)
	}
}

func TestSearchNoMatch(t *testing.T) {
	c := NewCollection()
	c.Add("completely unrelated text", nil)

	results, err := c.Search("zzyzx", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestSearchScoresBoundedAndOrdered(t *testing.T) {
	c := NewCollection()
	c.Add("the quick brown fox jumps over the lazy dog", nil)
	c.Add("a quick note about foxes", nil)
	c.Add("nothing relevant here", nil)
	c.Add("quick brown fox", nil)

	results, err := c.Search("quick brown fox", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(results))
	}

	for _, r := range results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("Score out of range (0, 1]: %f for %s", r.Score, r.Document.ID)
		}
	}

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if cur.Score > prev.Score {
			t.Errorf("Results not in descending score order: %f before %f", prev.Score, cur.Score)
		}
		if cur.Score == prev.Score && prev.Document.ID >= cur.Document.ID {
			t.Errorf("Score ties not broken by ascending id: %s before %s", prev.Document.ID, cur.Document.ID)
		}
	}

	// The two documents containing the full phrase and all terms both
	// score 1.0; the partial match scores strictly lower.
	if results[0].Score != 1.0 || results[1].Score != 1.0 {
		t.Errorf("Full matches should score 1.0, got %f and %f", results[0].Score, results[1].Score)
	}
	if results[2].Score >= 1.0 {
		t.Errorf("Partial match should score below 1.0, got %f", results[2].Score)
	}
}

func TestSearchTermFraction(t *testing.T) {
	c := NewCollection()
	id, _ := c.Add("alpha beta text", nil)

	// Two of four distinct terms match; the phrase does not occur.
	results, err := c.Search("alpha beta gamma delta", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != id {
		t.Fatalf("Expected a single match, got %v", results)
	}

	want := termWeight * 2.0 / 4.0
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("Expected score %f, got %f", want, results[0].Score)
	}
}

func TestSearchMatchesMetadata(t *testing.T) {
	c := NewCollection()
	id, _ := c.Add("body without the term", map[string]string{"topic": "kubernetes"})

	results, err := c.Search("kubernetes", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != id {
		t.Fatalf("Expected metadata match, got %v", results)
	}

	// Term matched via metadata only; no phrase bonus from content.
	if math.Abs(results[0].Score-termWeight) > 1e-9 {
		t.Errorf("Expected score %f, got %f", termWeight, results[0].Score)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	c := NewCollection()
	c.Add("The Quick BROWN Fox", nil)

	results, err := c.Search("quick brown", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected case-insensitive match, got %d results", len(results))
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	c := NewCollection()
	for i := 0; i < 8; i++ {
		c.Add("shared keyword content", nil)
	}

	results, err := c.Search("keyword", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
}

func TestSearchDeterministic(t *testing.T) {
	c := NewCollection()
	c.Add("release notes about caching", map[string]string{"title": "Cache"})
	c.Add("caching strategy overview", nil)
	c.Add("notes on cache invalidation", nil)

	first, err := c.Search("cache notes", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := c.Search("cache notes", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("Result count changed between runs: %d vs %d", len(first), len(again))
		}
		for i := range again {
			if again[i].Document.ID != first[i].Document.ID || again[i].Score != first[i].Score {
				t.Fatalf("Run %d diverged at position %d: %v vs %v", run, i, again[i], first[i])
			}
		}
	}
}
