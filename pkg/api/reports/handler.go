package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"creator_mind/pkg/api/respond"
	"creator_mind/pkg/core/ingest"
	"creator_mind/pkg/core/report"
	"creator_mind/pkg/core/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves stored reports and their exports.
type Handler struct {
	Repo *store.ReportRepo
	Log  *zap.Logger
}

func NewHandler(repo *store.ReportRepo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") || !respond.Method(w, r, http.MethodGet) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		h.Log.Error("reports: list failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") || !respond.Method(w, r, http.MethodGet) {
		return
	}
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, rep)
}

func (h *Handler) HandleMarkdown(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") || !respond.Method(w, r, http.MethodGet) {
		return
	}
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="creator-audit-%s.md"`, rep.ID))
	w.Write([]byte(report.ToMarkdown(rep.Result)))
}

func (h *Handler) HandleHTML(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") || !respond.Method(w, r, http.MethodGet) {
		return
	}
	rep, ok := h.load(w, r)
	if !ok {
		return
	}
	page, err := report.ToHTML(rep.Result)
	if err != nil {
		h.Log.Error("reports: html render failed", zap.String("id", rep.ID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// HandleBatchXLSX re-exports the rows of an uploaded spreadsheet exactly as
// they were read, with no filtering.
func (h *Handler) HandleBatchXLSX(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") || !respond.Method(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	bs, err := h.Repo.LoadSheet(r.Context(), q.Get("id"), q.Get("sheet"))
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "sheet not found")
		return
	}
	if err != nil {
		h.Log.Error("reports: load sheet failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load sheet")
		return
	}

	data, err := ingest.WriteXLSX(bs.Sheet)
	if err != nil {
		h.Log.Error("reports: xlsx export failed", zap.String("file", bs.File), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, bs.Sheet.Name+".xlsx"))
	w.Write(data)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*store.StoredReport, bool) {
	rep, err := h.Repo.Load(r.Context(), r.URL.Query().Get("id"))
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "report not found")
		return nil, false
	}
	if err != nil {
		h.Log.Error("reports: load failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load report")
		return nil, false
	}
	return rep, true
}
