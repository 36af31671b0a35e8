package models

import (
	"regexp"
	"strings"
	"time"
)

// Artifact statuses.
const (
	StatusGenerated  = "generated"
	StatusDownloaded = "downloaded"
)

// Output formats.
const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// Artifact represents a generated document registered for download.
// ID is a server-generated UUID; DiskName carries the ID prefix so two
// artifacts for the same employee name never share a file on disk.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	FileName  string    `json:"file_name"`
	DiskName  string    `json:"-"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	Format    string    `json:"format"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentType returns the MIME type for the artifact's format.
func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// ArtifactFileInfo is a lightweight on-disk listing entry used when
// reconciling the registry against the generated directory.
type ArtifactFileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Sanitize turns an employee name into a filesystem-safe token:
// spaces become underscores, everything outside [A-Za-z0-9_-] is
// stripped. An empty result falls back to "Employee". Idempotent.
func Sanitize(name string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	s = unsafeChars.ReplaceAllString(s, "")
	if s == "" {
		return "Employee"
	}
	return s
}
