// Package testutil provides shared test helpers for building document
// templates and setting up registries and generated directories.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/registry"
	"github.com/starford/gebo/internal/storage"
	"github.com/starford/gebo/internal/template"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/></Types>`

// TestRegistry creates a temporary SQLite registry that is automatically cleaned up.
func TestRegistry(t *testing.T) *registry.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gebo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := registry.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// BuildDocx assembles a minimal docx archive whose document body wraps
// the given XML fragment.
func BuildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document><w:body><w:p><w:r><w:t>` + body + `</w:t></w:r></w:p></w:body></w:document>`},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// DocumentXML extracts the word/document.xml entry from a docx archive.
func DocumentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, entry := range zr.File {
		if entry.Name != "word/document.xml" {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(out)
	}
	t.Fatal("word/document.xml not found in archive")
	return ""
}

// TestTemplates writes a template for every document kind with the
// given body and returns a Store over the temporary directory.
func TestTemplates(t *testing.T, body string) *template.Store {
	t.Helper()
	dir := t.TempDir()
	data := BuildDocx(t, body)
	for _, kind := range models.Kinds() {
		if err := os.WriteFile(filepath.Join(dir, kind.TemplateFile()), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := template.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestOutput creates a temporary generated root with the per-kind
// subdirectories and returns it with a storage provider.
func TestOutput(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for _, kind := range models.Kinds() {
		if err := os.MkdirAll(filepath.Join(dir, kind.OutputSubdir()), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
