package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creator_mind/pkg/api/respond"
	coreIngest "creator_mind/pkg/core/ingest"
	"creator_mind/pkg/core/stats"
	"creator_mind/pkg/core/store"
)

// Handler serves file ingestion and the model-free stats endpoint.
type Handler struct {
	Repo        *store.ReportRepo
	MaxUploadMB int64
	Log         *zap.Logger
}

func NewHandler(repo *store.ReportRepo, maxUploadMB int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Repo: repo, MaxUploadMB: maxUploadMB, Log: log}
}

type IngestResponse struct {
	BatchID   string                  `json:"batch_id"`
	Text      string                  `json:"text"`
	Images    []string                `json:"images"`
	Files     []coreIngest.FileResult `json:"files"`
	HardStats stats.HardStats         `json:"hardStats"`
}

// HandleIngest accepts multipart "files" plus an optional "text" field,
// decodes every file and merges the batch into the text in one step.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") || !respond.Method(w, r, http.MethodPost) {
		return
	}

	limit := h.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", h.MaxUploadMB))
			return
		}
		respond.Error(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	files, err := readUploads(r.MultipartForm.File["files"])
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := coreIngest.DecodeFiles(r.Context(), files)
	if err != nil {
		var fe *coreIngest.FileError
		if errors.As(err, &fe) {
			h.Log.Info("ingest: unreadable file", zap.String("file", fe.Name), zap.Error(fe.Err))
			respond.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	batchID := uuid.NewString()
	var sheets []store.BatchSheet
	for _, res := range results {
		if res.Sheet != nil {
			sheets = append(sheets, store.BatchSheet{File: res.Name, Sheet: res.Sheet})
		}
	}
	if h.Repo != nil {
		if err := h.Repo.SaveSheets(r.Context(), batchID, sheets); err != nil {
			// export of original rows is unavailable for this batch, analysis still works
			h.Log.Warn("ingest: failed to keep sheets", zap.String("batch", batchID), zap.Error(err))
		}
	}

	text := coreIngest.MergeBatch(r.FormValue("text"), results)
	images := coreIngest.ImageURIs(results)
	if images == nil {
		images = []string{}
	}

	h.Log.Info("ingest: batch merged",
		zap.String("batch", batchID),
		zap.Int("files", len(results)),
		zap.Int("images", len(images)),
		zap.Int("sheets", len(sheets)))

	respond.JSON(w, http.StatusOK, IngestResponse{
		BatchID:   batchID,
		Text:      text,
		Images:    images,
		Files:     results,
		HardStats: stats.FromText(text),
	})
}

func readUploads(headers []*multipart.FileHeader) ([]coreIngest.UploadedFile, error) {
	files := make([]coreIngest.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, coreIngest.UploadedFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

type StatsRequest struct {
	Text string `json:"text"`
}

type StatsResponse struct {
	Records   int             `json:"records"`
	HardStats stats.HardStats `json:"hardStats"`
}

// HandleStats computes hard stats for pasted text without calling a model.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") || !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	hs := stats.FromText(req.Text)
	respond.JSON(w, http.StatusOK, StatsResponse{Records: hs.TotalNotes, HardStats: hs})
}
