package docstore

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Context extraction constants. These are part of the contract: a
// matched query yields a window of ContextWindow bytes on each side of
// the first occurrence, and a query with no match falls back to a
// ContextFallbackLen-byte prefix of the content. The fallback is
// deliberate; context extraction never reports "no match".
const (
	ContextWindow      = 100
	ContextFallbackLen = 200
)

// ExtractContext returns a bounded window of content surrounding the
// first case-insensitive occurrence of query. When the query does not
// occur, it returns a fixed-length prefix of the content instead.
// Window boundaries are clamped to rune boundaries so the snippet is
// always valid UTF-8.
func ExtractContext(content, query string) string {
	matchStart, matchEnd := matchBounds(content, query)

	if matchStart < 0 {
		if len(content) <= ContextFallbackLen {
			return content
		}
		return content[:runeFloor(content, ContextFallbackLen)]
	}

	start := matchStart - ContextWindow
	if start < 0 {
		start = 0
	} else {
		start = runeFloor(content, start)
	}
	end := matchEnd + ContextWindow
	if end > len(content) {
		end = len(content)
	} else {
		end = runeFloor(content, end)
	}
	return content[start:end]
}

// matchBounds locates the first case-insensitive occurrence of query in
// content and returns its byte bounds within content, or (-1, -1) when
// there is none. Lowering can change a rune's encoded length, so the
// bounds are mapped back to the original bytes rather than taken from
// the lowered text.
func matchBounds(content, query string) (int, int) {
	if query == "" {
		return -1, -1
	}

	loweredQuery := strings.ToLower(query)
	lowered := strings.ToLower(content)

	// Fast path: lowering kept every byte offset aligned.
	if len(lowered) == len(content) {
		idx := strings.Index(lowered, loweredQuery)
		if idx < 0 {
			return -1, -1
		}
		return idx, idx + len(loweredQuery)
	}

	// Rebuild the lowered text rune by rune, recording the original
	// offset each lowered byte came from.
	offsets := make([]int, 0, len(lowered)+1)
	var b strings.Builder
	b.Grow(len(lowered))
	for i, r := range content {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(content))

	idx := strings.Index(b.String(), loweredQuery)
	if idx < 0 {
		return -1, -1
	}
	return offsets[idx], offsets[idx+len(loweredQuery)]
}

// runeFloor returns the largest rune boundary in s not greater than i.
func runeFloor(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// Context returns the context snippet for the stored document with the
// given id. It fails with a not-found error when the id is absent.
func (c *Collection) Context(id, query string) (string, error) {
	doc, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return ExtractContext(doc.Content, query), nil
}
