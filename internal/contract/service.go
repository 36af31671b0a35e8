// Package contract implements the document synthesizer: it turns a
// validated contract request into a registered artifact on disk.
package contract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/checksum"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/registry"
	"github.com/starford/gebo/internal/render"
	"github.com/starford/gebo/internal/sse"
	"github.com/starford/gebo/internal/storage"
	"github.com/starford/gebo/internal/template"
)

// Service coordinates template loading, rendering, artifact storage,
// and registry bookkeeping.
type Service struct {
	templates *template.Store
	store     storage.Provider
	db        registry.ArtifactIndex
	engine    *render.Engine
	broker    *sse.Broker
	now       func() time.Time
}

// NewService creates a new synthesizer service. broker may be nil.
func NewService(templates *template.Store, store storage.Provider, db registry.ArtifactIndex, broker *sse.Broker) *Service {
	return &Service{
		templates: templates,
		store:     store,
		db:        db,
		engine:    render.NewEngine(),
		broker:    broker,
		now:       time.Now,
	}
}

// Synthesize renders the template for kind with the request fields and
// writes a new artifact under the per-kind output directory. The
// contract_date field is always injected server-side. The caller is
// expected to have validated req already.
func (s *Service) Synthesize(_ context.Context, kind models.Kind, req models.ContractRequest) (*models.Artifact, error) {
	tpl, err := s.templates.Load(kind)
	if err != nil {
		return nil, err
	}

	fields := req.Fields()
	fields["contract_date"] = models.ContractDate(s.now())

	rendered, err := s.engine.Render(tpl, fields)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	fileName := models.Sanitize(req.Name()) + "_" + kind.Suffix() + ".docx"
	diskName := filepath.Join(kind.OutputSubdir(), id+"_"+fileName)

	if err := s.store.Write(diskName, rendered); err != nil {
		return nil, fmt.Errorf("contract: write artifact: %w", err)
	}

	artifact := models.Artifact{
		ID:        id,
		Kind:      kind,
		FileName:  fileName,
		DiskName:  diskName,
		Checksum:  checksum.Sum(rendered),
		Size:      int64(len(rendered)),
		Format:    models.FormatDocx,
		Status:    models.StatusGenerated,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.Insert(artifact); err != nil {
		// Roll the file back so disk and registry stay consistent.
		_ = s.store.Delete(diskName)
		return nil, err
	}

	if s.broker != nil {
		s.broker.PublishArtifactEvent(sse.EventArtifactCreated, artifact)
	}

	slog.Info("contract: artifact generated",
		slog.String("id", id),
		slog.String("kind", string(kind)),
		slog.String("file_name", fileName))
	return &artifact, nil
}

// Resolve looks up an artifact by ID and verifies its file still exists
// on disk, returning the absolute path. A missing row or missing file
// maps to apperr.ErrNotFound.
func (s *Service) Resolve(_ context.Context, id string) (*models.Artifact, string, error) {
	artifact, err := s.db.Get(id)
	if err != nil {
		return nil, "", err
	}
	abs, err := s.store.Abs(artifact.DiskName)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.store.Read(artifact.DiskName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}
	return artifact, abs, nil
}

// MarkDownloaded records a confirmed transmission.
func (s *Service) MarkDownloaded(_ context.Context, artifact *models.Artifact) {
	if err := s.db.MarkDownloaded(artifact.ID); err != nil {
		slog.Warn("contract: mark downloaded failed",
			slog.String("id", artifact.ID),
			slog.String("error", err.Error()))
	}
	if s.broker != nil {
		s.broker.PublishArtifactEvent(sse.EventArtifactDownloaded, *artifact)
	}
}

// Remove deletes the artifact file and registry row. Best-effort:
// failures are logged, never surfaced, matching the cleanup policy.
func (s *Service) Remove(_ context.Context, artifact *models.Artifact) {
	if err := s.store.Delete(artifact.DiskName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("contract: delete artifact file failed",
			slog.String("disk_name", artifact.DiskName),
			slog.String("error", err.Error()))
	}
	if err := s.db.Delete(artifact.ID); err != nil {
		slog.Warn("contract: delete artifact row failed",
			slog.String("id", artifact.ID),
			slog.String("error", err.Error()))
	}
	if s.broker != nil {
		s.broker.PublishArtifactEvent(sse.EventArtifactDeleted, *artifact)
	}
}

// List returns a page of registered artifacts.
func (s *Service) List(_ context.Context, limit, offset int, kind string) ([]models.Artifact, int, error) {
	return s.db.List(limit, offset, kind)
}
