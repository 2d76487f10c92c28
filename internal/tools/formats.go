package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/localrivet/mdpack/internal/docstore"
)

// Literal texts in tool results. These exact strings are part of the
// wire contract.
const (
	// MsgNoSearchResults is returned by search_documents when nothing matches
	MsgNoSearchResults = "No matching documents found."

	// MsgNoContextResults is returned by fetch_context when no document resolves
	MsgNoContextResults = "No relevant documents found."

	// CreatedPrefix prefixes the create_document confirmation; the new
	// document id follows it
	CreatedPrefix = "Document created with ID: "
)

// FormatCreateConfirmation renders the create_document result text.
func FormatCreateConfirmation(id string) string {
	return CreatedPrefix + id
}

// FormatUpdateConfirmation renders the update_document result text.
func FormatUpdateConfirmation(id string) string {
	return fmt.Sprintf("Document %s updated successfully", id)
}

// FormatDeleteConfirmation renders the delete_document result text.
func FormatDeleteConfirmation(id string) string {
	return fmt.Sprintf("Document %s deleted successfully", id)
}

// ParseCreateConfirmation extracts the document id from a
// create_document result text.
func ParseCreateConfirmation(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, CreatedPrefix))
}

// FormatMetadata serializes metadata as newline-separated "key: value"
// lines. Keys are emitted in sorted order so the serialization is
// deterministic.
func FormatMetadata(metadata map[string]string) string {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(metadata[k])
	}
	return b.String()
}

// ParseMetadata parses newline-separated "key: value" lines back into
// a map. Malformed lines are skipped.
func ParseMetadata(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// FormatListing serializes the collection listing as newline-separated
// "id: title" lines, using the Untitled placeholder for documents
// without a title.
func FormatListing(docs []docstore.Document) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(doc.ID)
		b.WriteString(": ")
		b.WriteString(doc.Title())
	}
	return b.String()
}

// ParseListing parses "id: title" lines back into an id -> title map.
func ParseListing(text string) map[string]string {
	return ParseMetadata(text)
}

// FormatSearchResults renders the human-readable search_documents
// result. Each hit carries the document title, id, score, and a
// context snippet for the query. An empty result set yields
// MsgNoSearchResults.
func FormatSearchResults(results []docstore.SearchResult, query string) string {
	if len(results) == 0 {
		return MsgNoSearchResults
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		snippet := docstore.ExtractContext(r.Document.Content, query)
		blocks = append(blocks, fmt.Sprintf("Document: %s (ID: %s, Score: %.2f)\nSnippet: %s\n",
			r.Document.Title(), r.Document.ID, r.Score, snippet))
	}
	return strings.Join(blocks, "\n")
}

// FormatContextBlocks renders the fetch_context result: one block per
// resolved document with its title, id, and context text. An empty
// document set yields MsgNoContextResults.
func FormatContextBlocks(docs []docstore.Document, query string) string {
	if len(docs) == 0 {
		return MsgNoContextResults
	}

	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		context := docstore.ExtractContext(doc.Content, query)
		blocks = append(blocks, fmt.Sprintf("Document: %s (ID: %s)\nContext: %s\n",
			doc.Title(), doc.ID, context))
	}
	return strings.Join(blocks, "\n")
}
