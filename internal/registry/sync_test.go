package registry

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProvider(t *testing.T) (string, *storage.FS) {
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

func TestSyncRemovesStaleRows(t *testing.T) {
	db := openTestDB(t)
	_, store := testProvider(t)

	stale := testArtifact(models.KindEmployment, time.Now().UTC())
	if err := db.Insert(stale); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.Get(stale.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale row should be gone, got err = %v", err)
	}
}

func TestSyncRegistersOrphans(t *testing.T) {
	db := openTestDB(t)
	_, store := testProvider(t)

	id := uuid.NewString()
	diskName := filepath.Join(models.KindLeave.OutputSubdir(), id+"_Maria_Santos_Leave_Contract.docx")
	if err := store.Write(diskName, []byte("docx bytes")); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, err := db.Get(id)
	if err != nil {
		t.Fatalf("orphan not registered: %v", err)
	}
	if got.Kind != models.KindLeave || got.FileName != "Maria_Santos_Leave_Contract.docx" {
		t.Errorf("got %+v", got)
	}
	if got.Status != models.StatusGenerated || got.Format != models.FormatDocx {
		t.Errorf("status/format = %s/%s", got.Status, got.Format)
	}
}

func TestSyncSkipsUnrecognizedFiles(t *testing.T) {
	db := openTestDB(t)
	_, store := testProvider(t)

	if err := store.Write("contracts/random.docx", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("stray.docx", []byte("y")); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	_, total, err := db.List(50, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0 (unparseable files skipped)", total)
	}
}

func TestSyncKeepsMatchedRows(t *testing.T) {
	db := openTestDB(t)
	_, store := testProvider(t)

	a := testArtifact(models.KindEmployment, time.Now().UTC())
	if err := store.Write(a.DiskName, []byte("bytes")); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(a); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.Get(a.ID); err != nil {
		t.Errorf("matched row should survive: %v", err)
	}
}

func TestArtifactFromDiskName(t *testing.T) {
	id := uuid.NewString()
	info := models.ArtifactFileInfo{Checksum: "c", Size: 7, UpdatedAt: time.Now()}

	a, ok := artifactFromDiskName(filepath.Join("contracts", id+"_Jane_Contract.docx"), info)
	if !ok {
		t.Fatal("expected parseable disk name")
	}
	if a.ID != id || a.Kind != models.KindEmployment || a.FileName != "Jane_Contract.docx" {
		t.Errorf("got %+v", a)
	}

	if _, ok := artifactFromDiskName(filepath.Join("contracts", id+"_report.pdf"), info); !ok {
		t.Error("pdf artifact should parse")
	}

	bad := []string{
		"contracts/no-separator.docx",
		"contracts/not-a-uuid_x.docx",
		filepath.Join("elsewhere", id+"_x.docx"),
		filepath.Join("contracts", id+"_"),
	}
	for _, name := range bad {
		if _, ok := artifactFromDiskName(name, info); ok {
			t.Errorf("%q should not parse", name)
		}
	}
}
