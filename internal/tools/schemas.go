// Package tools defines the tool names, request schemas, and wire
// formats for the mdpack service.
package tools

import "fmt"

const (
	// ToolCreateDocument is the name of the create_document MCP tool
	ToolCreateDocument = "create_document"

	// ToolUpdateDocument is the name of the update_document MCP tool
	ToolUpdateDocument = "update_document"

	// ToolDeleteDocument is the name of the delete_document MCP tool
	ToolDeleteDocument = "delete_document"

	// ToolSearchDocuments is the name of the search_documents MCP tool
	ToolSearchDocuments = "search_documents"

	// ToolFetchContext is the name of the fetch_context MCP tool
	ToolFetchContext = "fetch_context"

	// DefaultSearchLimit is the default number of results to return
	// when no max_results is specified in a search_documents request
	DefaultSearchLimit = 10

	// DefaultContextLimit is the default number of documents to resolve
	// when no max_results is specified in a fetch_context request
	DefaultContextLimit = 5
)

// Resource URI templates exposed by the server. The mdp scheme and the
// templates below are part of the wire contract.
const (
	// ResourceDocumentContent addresses the raw content of one document
	ResourceDocumentContent = "mdp://docs/{id}"

	// ResourceDocumentMetadata addresses a document's metadata,
	// serialized as newline-separated "key: value" lines
	ResourceDocumentMetadata = "mdp://docs/{id}/metadata"

	// ResourceCollectionList addresses the collection listing,
	// serialized as newline-separated "id: title" lines
	ResourceCollectionList = "mdp://collections/list"
)

// CreateDocumentRequest defines the input schema for the create_document tool
type CreateDocumentRequest struct {
	// Content is the text body of the new document
	Content string `json:"content"`

	// Metadata holds optional key/value pairs to attach to the document.
	// Structured values are flattened to strings at the protocol boundary.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// UpdateDocumentRequest defines the input schema for the update_document tool
type UpdateDocumentRequest struct {
	// DocID is the id of the document to update
	DocID string `json:"doc_id"`

	// Content, when present, replaces the document content entirely
	Content *string `json:"content,omitempty"`

	// Metadata keys are merged into the existing metadata: new keys are
	// added, existing keys overwritten, absent keys left untouched
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DeleteDocumentRequest defines the input schema for the delete_document tool
type DeleteDocumentRequest struct {
	// DocID is the id of the document to delete
	DocID string `json:"doc_id"`
}

// SearchDocumentsRequest defines the input schema for the search_documents tool
type SearchDocumentsRequest struct {
	// Query is the text to search for
	Query string `json:"query"`

	// MaxResults is the maximum number of results to return.
	// If not specified, DefaultSearchLimit will be used.
	MaxResults int `json:"max_results,omitempty"`
}

// FetchContextRequest defines the input schema for the fetch_context tool
type FetchContextRequest struct {
	// Query is the text to extract context around
	Query string `json:"query"`

	// DocIDs, when present, restricts context extraction to exactly
	// these documents, bypassing search ranking
	DocIDs []string `json:"doc_ids,omitempty"`

	// MaxResults is the maximum number of documents to resolve via
	// search when DocIDs is empty. If not specified,
	// DefaultContextLimit will be used.
	MaxResults int `json:"max_results,omitempty"`
}

// DocumentResourceRequest carries the path parameter for the
// per-document resource templates.
type DocumentResourceRequest struct {
	// ID is the document id extracted from the resource URI
	ID string `json:"id" path:"id"`
}

// CollectionListRequest is the (empty) parameter set for the
// collection listing resource.
type CollectionListRequest struct{}

// StringifyMetadata flattens a protocol-boundary metadata map into the
// string-to-string form stored by the collection. Non-string values
// are rendered with their default formatting.
func StringifyMetadata(metadata map[string]interface{}) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
