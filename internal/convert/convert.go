// Package convert provides docx-to-PDF conversion behind a small
// interface. The only backend shells out to an external converter
// (LibreOffice-style command line); when none is configured, PDF
// requests fail with apperr.ErrConversionUnavailable instead of
// silently returning docx bytes.
package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/gebo/internal/apperr"
)

// Converter converts a docx file to PDF, returning the path of the
// converted file.
type Converter interface {
	ConvertToPDF(ctx context.Context, path string) (string, error)
}

// Disabled is a Converter that always reports conversion as unavailable.
type Disabled struct{}

// ConvertToPDF always returns apperr.ErrConversionUnavailable.
func (Disabled) ConvertToPDF(context.Context, string) (string, error) {
	return "", apperr.ErrConversionUnavailable
}

// ExecConverter runs an external command to produce the PDF next to the
// source file. The command is invoked as:
//
//	<command> --headless --convert-to pdf --outdir <dir> <file>
//
// which matches the LibreOffice/soffice CLI.
type ExecConverter struct {
	Command string
	Timeout time.Duration
}

// NewExecConverter creates an ExecConverter with a 60s default timeout.
func NewExecConverter(command string) *ExecConverter {
	return &ExecConverter{Command: command, Timeout: 60 * time.Second}
}

// ConvertToPDF converts path and returns the resulting .pdf path.
func (c *ExecConverter) ConvertToPDF(ctx context.Context, path string) (string, error) {
	if c.Command == "" {
		return "", apperr.ErrConversionUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	outDir := filepath.Dir(path)
	cmd := exec.CommandContext(ctx, c.Command, "--headless", "--convert-to", "pdf", "--outdir", outDir, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("convert: %s: %s: %w", c.Command, strings.TrimSpace(string(out)), apperr.ErrConversion)
	}

	pdfPath := PDFPath(path)
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("convert: output missing at %s: %w", pdfPath, apperr.ErrConversion)
	}
	return pdfPath, nil
}

// PDFPath returns the path the converted file is expected at: the
// source path with its extension replaced by .pdf.
func PDFPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".pdf"
}
