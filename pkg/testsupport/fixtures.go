// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formstate/pkg/openapi"
)

// MustLoadDocument loads an OpenAPI fixture, failing the test on error.
func MustLoadDocument(t *testing.T, path string, opts ...openapi.Option) *openapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path, opts...)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, so
// callers can wire fixtures in setup functions.
func LoadDocumentFromPath(path string, opts ...openapi.Option) (*openapi.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := openapi.Load(Context(), data, opts...)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load document: %w", err)
	}
	return doc, nil
}

// MustWriteFile writes body to name inside a per-test temp dir and returns
// the full path.
func MustWriteFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
