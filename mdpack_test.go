package mdpack

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TestSaveConfigWritesFile tests that SaveConfig persists the
// configuration to the given path
func TestSaveConfigWritesFile(t *testing.T) {
	cfg := DefaultConfig()
	path := filepath.Join(t.TempDir(), "config.json")

	content, err := SaveConfig(cfg, path)
	if err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Config file was not written: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("File content should match the returned content")
	}

	reloaded := &Config{}
	if err := json.Unmarshal(data, reloaded); err != nil {
		t.Fatalf("Written config is not valid JSON: %v", err)
	}
	if reloaded.Server.Name != cfg.Server.Name {
		t.Errorf("Expected server name %q, got %q", cfg.Server.Name, reloaded.Server.Name)
	}
	if reloaded.Limits.SearchResults != cfg.Limits.SearchResults {
		t.Errorf("Expected search limit %d, got %d", cfg.Limits.SearchResults, reloaded.Limits.SearchResults)
	}
}

// TestSaveConfigBadPath tests the error path for an unwritable target
func TestSaveConfigBadPath(t *testing.T) {
	cfg := DefaultConfig()

	_, err := SaveConfig(cfg, filepath.Join(t.TempDir(), "missing", "config.json"))
	if err == nil {
		t.Fatal("Expected error writing to a missing directory")
	}
}

// TestServerDirectMethods exercises the document lifecycle through the
// embedding API
func TestServerDirectMethods(t *testing.T) {
	srv, err := NewServer(ServerOptions{Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	id, err := srv.CreateDocument("the quick brown fox", map[string]string{"title": "Fox"})
	if err != nil {
		t.Fatalf("CreateDocument returned error: %v", err)
	}

	doc, err := srv.GetDocument(id)
	if err != nil {
		t.Fatalf("GetDocument returned error: %v", err)
	}
	if doc.Content != "the quick brown fox" {
		t.Errorf("Unexpected content: %q", doc.Content)
	}

	results, err := srv.SearchDocuments("quick fox", 5)
	if err != nil {
		t.Fatalf("SearchDocuments returned error: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != id {
		t.Fatalf("Expected the stored document as the single hit, got %v", results)
	}

	if err := srv.DeleteDocument(id); err != nil {
		t.Fatalf("DeleteDocument returned error: %v", err)
	}
	if got := srv.ListDocuments(); len(got) != 0 {
		t.Errorf("Expected empty collection after delete, got %d documents", len(got))
	}
}
