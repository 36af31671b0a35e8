package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/contract"
	"github.com/starford/gebo/internal/convert"
	"github.com/starford/gebo/internal/models"
)

// Generic client-facing error messages; exact causes stay in the logs.
const (
	msgGenerateFailed = "failed to generate contract"
	msgFileNotFound   = "file not found"
	msgConvertFailed  = "failed to convert contract to pdf"
	msgDownloadFailed = "failed to download contract"
)

// Handler holds API route handlers.
type Handler struct {
	svc  *contract.Service
	conv convert.Converter
}

// NewHandler creates a new Handler.
func NewHandler(svc *contract.Service, conv convert.Converter) *Handler {
	return &Handler{svc: svc, conv: conv}
}

// CreateContract handles POST /contracts: synthesize an employment
// contract and return its registry entry for a later download.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEmploymentRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	h.create(w, r, models.KindEmployment, req)
}

// CreateLeaveContract handles POST /leave-contract.
func (h *Handler) CreateLeaveContract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLeaveRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	h.create(w, r, models.KindLeave, req)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, kind models.Kind, req models.ContractRequest) {
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	artifact, err := h.svc.Synthesize(r.Context(), kind, req)
	if err != nil {
		slog.Error("synthesize failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgGenerateFailed))
		return
	}
	writeJSON(w, http.StatusCreated, artifactResponse(artifact))
}

// GenerateContract handles POST /contracts/generate: synthesize,
// stream, and delete within one request/response cycle.
func (h *Handler) GenerateContract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEmploymentRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	h.generate(w, r, models.KindEmployment, req)
}

// GenerateLeaveContract handles POST /leave-contract/generate.
func (h *Handler) GenerateLeaveContract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLeaveRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	h.generate(w, r, models.KindLeave, req)
}

// generate runs the one-shot pipeline: validate → synthesize →
// transmit → delete. The artifact is removed unconditionally once
// transmission has been attempted; it is never downloadable again.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request, kind models.Kind, req models.ContractRequest) {
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	artifact, err := h.svc.Synthesize(r.Context(), kind, req)
	if err != nil {
		slog.Error("synthesize failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgGenerateFailed))
		return
	}

	artifact, abs, err := h.svc.Resolve(r.Context(), artifact.ID)
	if err != nil {
		slog.Error("resolve after synthesize failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgGenerateFailed))
		return
	}

	h.transmit(w, artifact.FileName, models.FormatDocx, abs)
	h.svc.Remove(r.Context(), artifact)
}

// DownloadContract handles GET /contracts/{id}/download and
// GET /leave-contract/{id}/download. Cleanup strictly follows a
// confirmed transmission; a failed send leaves the artifact on disk.
func (h *Handler) DownloadContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}

	artifact, abs, err := h.svc.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(msgFileNotFound))
		} else {
			slog.Error("resolve failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(msgDownloadFailed))
		}
		return
	}

	sendPath := abs
	sendName := artifact.FileName
	format := models.FormatDocx

	if r.URL.Query().Get("format") == models.FormatPDF {
		converted, convErr := h.conv.ConvertToPDF(r.Context(), abs)
		if convErr != nil {
			// Conversion failure leaves the original artifact on disk.
			slog.Error("conversion failed", slog.String("id", id), slog.String("error", convErr.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(msgConvertFailed))
			return
		}
		sendPath = converted
		sendName = strings.TrimSuffix(artifact.FileName, filepath.Ext(artifact.FileName)) + ".pdf"
		format = models.FormatPDF
	}

	if !h.transmit(w, sendName, format, sendPath) {
		// Delivery unconfirmed: do not delete anything.
		return
	}

	h.svc.MarkDownloaded(r.Context(), artifact)
	h.svc.Remove(r.Context(), artifact)
	if sendPath != abs {
		if rmErr := os.Remove(sendPath); rmErr != nil {
			slog.Warn("delete converted copy failed",
				slog.String("path", sendPath),
				slog.String("error", rmErr.Error()))
		}
	}
}

// ListArtifacts handles GET /contracts: registered artifacts with
// optional pagination and kind filtering.
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	kind := q.Get("kind")

	if kind != "" {
		if _, err := models.ParseKind(kind); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown kind"))
			return
		}
	}

	items, total, err := h.svc.List(r.Context(), limit, offset, kind)
	if err != nil {
		slog.Error("list artifacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.Artifact{}
	}
	writeJSON(w, http.StatusOK, ArtifactListResponse{Artifacts: items, Total: total})
}

// transmit streams the file at path with attachment headers. It returns
// true only when every byte was written; a mid-stream error is logged
// and reported false so callers skip cleanup.
func (h *Handler) transmit(w http.ResponseWriter, name, format, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("open artifact failed", slog.String("path", path), slog.String("error", err.Error()))
		http.Error(w, msgDownloadFailed, http.StatusInternalServerError)
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Error("stat artifact failed", slog.String("path", path), slog.String("error", err.Error()))
		http.Error(w, msgDownloadFailed, http.StatusInternalServerError)
		return false
	}

	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	w.Header().Set("Content-Type", models.ContentType(format))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		slog.Error("stream artifact failed", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	return true
}
