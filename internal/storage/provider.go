// Package storage defines the generated-artifacts file-system abstraction.
package storage

import "github.com/starford/gebo/internal/models"

// Provider is the interface for artifact file operations. All paths are
// relative to the generated root.
type Provider interface {
	// List returns metadata for every generated document file under dir.
	List(dir string) ([]models.ArtifactFileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Abs resolves path against the root, rejecting traversal.
	Abs(path string) (string, error)
	// Root returns the absolute generated root directory.
	Root() string
}
