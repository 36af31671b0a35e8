// Package render binds field values into ZIP-packaged XML document
// templates (the .docx container format).
package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/starford/gebo/internal/apperr"
)

// Default placeholder delimiters.
const (
	DefaultStart = "{{"
	DefaultEnd   = "}}"
)

// Engine substitutes delimited placeholder tokens in the XML parts of a
// docx archive. XML parts under word/ are rewritten; every other entry
// is copied through verbatim.
type Engine struct {
	token *regexp.Regexp
}

// NewEngine creates an Engine with the default {{ }} delimiters.
func NewEngine() *Engine {
	return NewEngineWithDelims(DefaultStart, DefaultEnd)
}

// NewEngineWithDelims creates an Engine with custom delimiters.
func NewEngineWithDelims(start, end string) *Engine {
	pattern := regexp.QuoteMeta(start) + `\s*([A-Za-z0-9_]+)\s*` + regexp.QuoteMeta(end)
	return &Engine{token: regexp.MustCompile(pattern)}
}

// Render opens template as an in-memory archive, substitutes every
// placeholder occurrence in the document XML with the matching field
// value, and serializes a new archive. Unknown placeholders render as
// the empty string. A template that is not a valid archive maps to
// apperr.ErrRender.
func (e *Engine) Render(template []byte, fields map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("render: open archive: %w", apperr.ErrRender)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range zr.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("render: open entry %s: %w", entry.Name, apperr.ErrRender)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("render: read entry %s: %w", entry.Name, apperr.ErrRender)
		}

		if isDocumentPart(entry.Name) {
			data = e.substitute(data, fields)
		}

		w, err := zw.Create(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("render: create entry %s: %w", entry.Name, apperr.ErrRender)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("render: write entry %s: %w", entry.Name, apperr.ErrRender)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render: close archive: %w", apperr.ErrRender)
	}
	return buf.Bytes(), nil
}

// isDocumentPart reports whether a zip entry holds substitutable body
// XML: the main document plus headers and footers.
func isDocumentPart(name string) bool {
	return strings.HasPrefix(name, "word/") && strings.HasSuffix(name, ".xml")
}

// substitute replaces each placeholder token with the XML-escaped field
// value.
func (e *Engine) substitute(data []byte, fields map[string]string) []byte {
	return e.token.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(e.token.FindSubmatch(match)[1])
		return escapeXML(fields[key])
	})
}

func escapeXML(s string) []byte {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.Bytes()
}
