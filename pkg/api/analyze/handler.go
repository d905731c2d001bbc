package analyze

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"creator_mind/pkg/api/respond"
	"creator_mind/pkg/core/agent"
	"creator_mind/pkg/core/analysis"
	"creator_mind/pkg/core/report"
	"creator_mind/pkg/core/store"
)

// Handler runs audits and persists them.
type Handler struct {
	Service *analysis.Service
	Agents  *agent.Manager
	Repo    *store.ReportRepo
	Log     *zap.Logger
}

func NewHandler(svc *analysis.Service, agents *agent.Manager, repo *store.ReportRepo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: svc, Agents: agents, Repo: repo, Log: log}
}

type AnalyzeRequest struct {
	analysis.Input
	BatchID string `json:"batch_id"`
}

type AnalyzeResponse struct {
	ID     string                 `json:"id,omitempty"`
	Result *report.AnalysisResult `json:"result"`
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") || !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Service.Analyze(r.Context(), req.Input)
	if err != nil {
		status, msg := StatusFor(err)
		respond.Error(w, status, msg)
		return
	}

	resp := AnalyzeResponse{Result: res}
	if h.Repo != nil {
		stored := &store.StoredReport{
			BatchID:  req.BatchID,
			Provider: h.Agents.GetProvider(analysis.AgentName).Name(),
			Goal:     req.Goal,
			Result:   res,
		}
		if err := h.Repo.Save(r.Context(), stored); err != nil {
			// the user still gets the report; only history is lost
			h.Log.Warn("analyze: failed to persist report", zap.Error(err))
		} else {
			resp.ID = stored.ID
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}

// StatusFor maps analysis errors to the HTTP status and the message shown to users.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, report.ErrResultParse):
		return http.StatusBadGateway, report.ErrResultParse.Error()
	case errors.Is(err, analysis.ErrAnalysisFailed):
		return http.StatusBadGateway, analysis.ErrAnalysisFailed.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
