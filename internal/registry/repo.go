package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/models"
)

// Insert stores a new artifact row.
func (db *DB) Insert(a models.Artifact) error {
	_, err := db.conn.Exec(`
		INSERT INTO artifacts (id, kind, file_name, disk_name, checksum, size, format, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Kind), a.FileName, a.DiskName, a.Checksum, a.Size, a.Format, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("registry: insert artifact: %w", err)
	}
	return nil
}

// Get returns the artifact with the given ID, or apperr.ErrNotFound.
func (db *DB) Get(id string) (*models.Artifact, error) {
	row := db.conn.QueryRow(`
		SELECT id, kind, file_name, disk_name, checksum, size, format, status, created_at
		FROM artifacts WHERE id = ?
	`, id)
	a, err := scanArtifact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("registry: get artifact: %w", err)
	}
	return a, nil
}

// Delete removes an artifact row. Deleting a missing row is not an error.
func (db *DB) Delete(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("registry: delete artifact: %w", err)
	}
	return nil
}

// List returns a page of artifacts, newest first, with the total count.
// kind filters by document kind when non-empty.
func (db *DB) List(limit, offset int, kind string) ([]models.Artifact, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if kind != "" {
		where = "WHERE kind = ?"
		args = append(args, kind)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM artifacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("registry: count artifacts: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := db.conn.Query(`
		SELECT id, kind, file_name, disk_name, checksum, size, format, status, created_at
		FROM artifacts `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("registry: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// MarkDownloaded flips an artifact's status to downloaded.
func (db *DB) MarkDownloaded(id string) error {
	if _, err := db.conn.Exec(`UPDATE artifacts SET status = ? WHERE id = ?`, models.StatusDownloaded, id); err != nil {
		return fmt.Errorf("registry: mark downloaded: %w", err)
	}
	return nil
}

// AllDiskNames returns a map of disk name to artifact ID for every
// registered artifact. Used by reconciliation.
func (db *DB) AllDiskNames() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT disk_name, id FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("registry: all disk names: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// ExpiredBefore returns artifacts created before t that were never
// downloaded. Used by the retention sweep.
func (db *DB) ExpiredBefore(t time.Time) ([]models.Artifact, error) {
	rows, err := db.conn.Query(`
		SELECT id, kind, file_name, disk_name, checksum, size, format, status, created_at
		FROM artifacts WHERE created_at < ? AND status = ?
	`, t, models.StatusGenerated)
	if err != nil {
		return nil, fmt.Errorf("registry: expired: %w", err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (*models.Artifact, error) {
	var a models.Artifact
	var kind string
	if err := s.Scan(&a.ID, &kind, &a.FileName, &a.DiskName, &a.Checksum, &a.Size, &a.Format, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = models.Kind(kind)
	return &a, nil
}
