// Package analysis runs one creator audit: hard stats from the raw input,
// a grounded prompt to the configured model, and a validated result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"creator_mind/pkg/core/agent"
	"creator_mind/pkg/core/llm"
	"creator_mind/pkg/core/prompt"
	"creator_mind/pkg/core/report"
	"creator_mind/pkg/core/stats"
)

// AgentName is the agents key in models.yaml used for audits.
const AgentName = "profile_audit"

var (
	ErrEmptyInput = errors.New("nothing to analyse: provide profile text, data files or screenshots")

	// ErrAnalysisFailed matches every *AnalysisError via errors.Is.
	ErrAnalysisFailed = errors.New("unable to complete analysis")
)

// AnalysisError wraps a failed model call. It is not retried.
type AnalysisError struct {
	Provider string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%v (%s): %v", ErrAnalysisFailed, e.Provider, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// Input is one audit request. Images are data URIs; malformed ones are dropped.
type Input struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
	Goal   string   `json:"goal"`
}

type Service struct {
	agents  *agent.Manager
	prompts *prompt.Registry
	log     *zap.Logger
}

func NewService(agents *agent.Manager, prompts *prompt.Registry, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{agents: agents, prompts: prompts, log: log}
}

// Analyze produces a fully defaulted AnalysisResult whose HardStats come
// from in.Text, not from the model.
func (s *Service) Analyze(ctx context.Context, in Input) (*report.AnalysisResult, error) {
	images := llm.AttachmentsFromDataURIs(in.Images)
	if strings.TrimSpace(in.Text) == "" && len(images) == 0 {
		return nil, ErrEmptyInput
	}
	if dropped := len(in.Images) - len(images); dropped > 0 {
		s.log.Debug("analysis: dropped malformed image uris", zap.Int("dropped", dropped))
	}

	hard := stats.FromText(in.Text)

	pt, err := s.prompts.GetPrompt(prompt.ProfileAuditID)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	vars := prompt.NewContext().
		Set("Input", in.Text).
		Set("Grounding", GroundingBlock(hard)).
		Set("Goal", strings.TrimSpace(in.Goal)).
		Set("ImageCount", len(images))
	userPrompt, err := prompt.RenderUserPrompt(pt, vars)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	provider := s.agents.GetProvider(AgentName)
	ctx, cancel := context.WithTimeout(ctx, s.agents.Timeout())
	defer cancel()

	s.log.Info("analysis: calling model",
		zap.String("provider", provider.Name()),
		zap.Int("notes", hard.TotalNotes),
		zap.Int("images", len(images)),
		zap.Bool("goal", in.Goal != ""))

	raw, err := provider.GenerateResponse(ctx, &llm.Request{
		SystemPrompt:   pt.SystemPrompt,
		Prompt:         userPrompt,
		Images:         images,
		ResponseSchema: report.ResponseSchema(),
		JSON:           true,
		Model:          s.agents.ModelFor(AgentName),
	})
	if err != nil {
		s.log.Warn("analysis: model call failed", zap.String("provider", provider.Name()), zap.Error(err))
		return nil, &AnalysisError{Provider: provider.Name(), Err: err}
	}

	res, err := report.ParseResult(raw)
	if err != nil {
		s.log.Warn("analysis: unparsable model response", zap.String("provider", provider.Name()), zap.Error(err))
		return nil, err
	}
	report.ApplyDefaults(res)
	res.HardStats = hard
	return res, nil
}

// GroundingBlock renders hard stats as the block the model must quote verbatim.
func GroundingBlock(hs stats.HardStats) string {
	var b strings.Builder
	b.WriteString("=== HARD STATS (computed from the imported data; report these numbers exactly, do not invent or re-estimate) ===\n")
	if hs.TotalNotes == 0 {
		b.WriteString("No structured note records were detected in the input.\n")
		b.WriteString("Base numeric claims only on visible screenshots or text, and label any figure you estimate.\n")
	} else {
		fmt.Fprintf(&b, "Notes analysed: %d\n", hs.TotalNotes)
		fmt.Fprintf(&b, "Total likes: %d\n", hs.TotalLikes)
		fmt.Fprintf(&b, "Average likes per note: %d\n", hs.AvgLikes)
		fmt.Fprintf(&b, "Max likes on one note: %d\n", hs.MaxLikes)
		fmt.Fprintf(&b, "Total collects: %d\n", hs.TotalCollects)
		fmt.Fprintf(&b, "Average collects per note: %d\n", hs.AvgCollects)
		fmt.Fprintf(&b, "Collects per like: %.2f\n", hs.CollectRatio)
		fmt.Fprintf(&b, "Total comments: %d\n", hs.TotalComments)
		fmt.Fprintf(&b, "Total shares: %d\n", hs.TotalShares)
		fmt.Fprintf(&b, "Top note: %q (%d likes, type: %s)\n", hs.TopNote.Title, hs.TopNote.Likes, hs.TopNote.Type)
	}
	b.WriteString("=== END HARD STATS ===")
	return b.String()
}
