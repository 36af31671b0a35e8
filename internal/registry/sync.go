package registry

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/storage"
)

// Sync walks the generated root and brings the registry up to date:
//   - rows whose files are gone from disk are removed
//   - parseable on-disk files missing from the registry are re-registered
func Sync(db ArtifactIndex, store storage.Provider, logger *slog.Logger) error {
	known, err := db.AllDiskNames()
	if err != nil {
		return err
	}

	infos, err := store.List("")
	if err != nil {
		return err
	}

	disk := make(map[string]models.ArtifactFileInfo, len(infos))
	for _, info := range infos {
		disk[info.Path] = info
	}

	for name, id := range known {
		if _, ok := disk[name]; !ok {
			if delErr := db.Delete(id); delErr != nil {
				logger.Warn("sync: delete stale row failed", slog.String("id", id), slog.String("error", delErr.Error()))
			} else {
				logger.Debug("sync: removed stale row", slog.String("disk_name", name))
			}
		}
	}

	for name, info := range disk {
		if _, ok := known[name]; ok {
			continue
		}
		a, ok := artifactFromDiskName(name, info)
		if !ok {
			logger.Warn("sync: unrecognized file in generated root", slog.String("path", name))
			continue
		}
		if insErr := db.Insert(a); insErr != nil {
			logger.Warn("sync: re-register failed", slog.String("path", name), slog.String("error", insErr.Error()))
		} else {
			logger.Debug("sync: re-registered orphan", slog.String("id", a.ID))
		}
	}

	return nil
}

// artifactFromDiskName reconstructs a registry row from an on-disk
// artifact path of the form <kind-subdir>/<uuid>_<fileName>.<ext>.
func artifactFromDiskName(relPath string, info models.ArtifactFileInfo) (models.Artifact, bool) {
	dir := filepath.Dir(relPath)
	base := filepath.Base(relPath)

	var kind models.Kind
	switch dir {
	case models.KindEmployment.OutputSubdir():
		kind = models.KindEmployment
	case models.KindLeave.OutputSubdir():
		kind = models.KindLeave
	default:
		return models.Artifact{}, false
	}

	sep := strings.Index(base, "_")
	if sep < 0 {
		return models.Artifact{}, false
	}
	id, fileName := base[:sep], base[sep+1:]
	if _, err := uuid.Parse(id); err != nil || fileName == "" {
		return models.Artifact{}, false
	}

	format := models.FormatDocx
	if strings.HasSuffix(base, ".pdf") {
		format = models.FormatPDF
	}

	return models.Artifact{
		ID:        id,
		Kind:      kind,
		FileName:  fileName,
		DiskName:  relPath,
		Checksum:  info.Checksum,
		Size:      info.Size,
		Format:    format,
		Status:    models.StatusGenerated,
		CreatedAt: info.UpdatedAt.UTC().Truncate(time.Second),
	}, true
}
