package registry

import (
	"time"

	"github.com/starford/gebo/internal/models"
)

// ArtifactIndex defines the interface for artifact registry operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ArtifactIndex interface {
	Insert(a models.Artifact) error
	Get(id string) (*models.Artifact, error)
	Delete(id string) error
	List(limit, offset int, kind string) ([]models.Artifact, int, error)
	MarkDownloaded(id string) error
	AllDiskNames() (map[string]string, error)
	ExpiredBefore(t time.Time) ([]models.Artifact, error)
	Close() error
}

// Verify *DB satisfies ArtifactIndex at compile time.
var _ ArtifactIndex = (*DB)(nil)
