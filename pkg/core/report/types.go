// Package report defines the structured audit a model returns, and the code
// that turns untrusted model output into a fully populated AnalysisResult.
package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"creator_mind/pkg/core/stats"
)

type AnalysisResult struct {
	Summary             string          `json:"summary"`
	CreatorDNA          CreatorDNA      `json:"creatorDNA"`
	PromisingDirections []Direction     `json:"promisingDirections"`
	StrategicVerdict    string          `json:"strategicVerdict"`
	Strengths           StringList      `json:"strengths"`
	Weaknesses          StringList      `json:"weaknesses"`
	Opportunities       StringList      `json:"opportunities"`
	SwotAnalysisStats   []SwotStat      `json:"swotAnalysisStats"`
	ContentStrategy     []ContentPillar `json:"contentStrategy"`
	AudiencePersona     AudiencePersona `json:"audiencePersona"`
	AudienceStats       AudienceStats   `json:"audienceStats"`
	GrowthMetrics       []GrowthMetric  `json:"growthMetrics"`
	MetricsAnalysis     string          `json:"metricsAnalysis"`

	// HardStats is computed from the input, never read from the model.
	HardStats stats.HardStats `json:"hardStats"`
}

type CreatorDNA struct {
	Title       string     `json:"title"`
	Tags        StringList `json:"tags"`
	Description string     `json:"description"`
}

type Direction struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rationale   string     `json:"rationale"`
	ActionPlan  StringList `json:"actionPlan"`
	Tags        StringList `json:"tags"`
}

type SwotStat struct {
	Label string `json:"label"`
	Score Score  `json:"score"`
	Color string `json:"color"`
}

type ContentPillar struct {
	Category      string     `json:"category"`
	TitleTemplate string     `json:"titleTemplate"`
	Structure     string     `json:"structure"`
	Keywords      StringList `json:"keywords"`
}

type AudiencePersona struct {
	AgeRange   string     `json:"ageRange"`
	Interests  StringList `json:"interests"`
	PainPoints StringList `json:"painPoints"`
}

type AudienceStats struct {
	AgeDistribution     []LabelValue `json:"ageDistribution"`
	InterestComposition []LabelValue `json:"interestComposition"`
}

type LabelValue struct {
	Label string `json:"label"`
	Value Score  `json:"value"`
}

type GrowthMetric struct {
	Label string `json:"label"`
	Value Score  `json:"value"`
	Color string `json:"color"`
}

// Score is a 0..100 number. Models sometimes send "85" or "85%" instead of
// 85, so strings are accepted; anything unreadable decodes as 0.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSuffix(strings.TrimSpace(str), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		if strings.TrimSpace(one) == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}
