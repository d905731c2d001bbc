package report

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"creator_mind/pkg/core/stats"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSummary string
		wantErr     bool
	}{
		{
			name:        "Plain object",
			raw:         `{"summary":"ok","strengths":["a"]}`,
			wantSummary: "ok",
		},
		{
			name:        "Code fence and prose",
			raw:         "Here is the audit:\n```json\n{\"summary\":\"fenced\"}\n```\nThanks",
			wantSummary: "fenced",
		},
		{
			name:        "Trailing commas repaired",
			raw:         `{"summary":"repaired","strengths":["a","b",],}`,
			wantSummary: "repaired",
		},
		{
			name:    "No object",
			raw:     "I cannot analyse this account.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrResultParse) {
					t.Fatalf("err = %v, want ErrResultParse", err)
				}
				var rpe *ResultParseError
				if !errors.As(err, &rpe) || rpe.Raw == "" {
					t.Errorf("ResultParseError not populated: %#v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResult: %v", err)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.wantSummary)
			}
		})
	}
}

func TestParseResult_LenientFieldTypes(t *testing.T) {
	raw := `{"growthMetrics":[{"label":"A","value":"85%"},{"label":"B","value":"n/a"},{"label":"C","value":40.5}],` +
		`"strengths":"only one","weaknesses":null}`
	got, err := ParseResult(raw)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	wantValues := []Score{85, 0, 40.5}
	for i, w := range wantValues {
		if got.GrowthMetrics[i].Value != w {
			t.Errorf("GrowthMetrics[%d].Value = %v, want %v", i, got.GrowthMetrics[i].Value, w)
		}
	}
	if len(got.Strengths) != 1 || got.Strengths[0] != "only one" {
		t.Errorf("Strengths = %v", got.Strengths)
	}
	if got.Weaknesses != nil {
		t.Errorf("Weaknesses = %v, want nil", got.Weaknesses)
	}
}

func TestParseResult_IgnoresModelHardStats(t *testing.T) {
	// the service overwrites hardStats; parsing must not fail on it either way
	got, err := ParseResult(`{"summary":"s","hardStats":{"totalNotes":999}}`)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if got.Summary != "s" {
		t.Errorf("Summary = %q", got.Summary)
	}
}

func TestApplyDefaults_Counts(t *testing.T) {
	tests := []struct {
		name       string
		directions int
		metrics    int
	}{
		{"empty", 0, 0},
		{"short", 1, 3},
		{"exact", 2, 5},
		{"too many", 4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AnalysisResult{
				PromisingDirections: make([]Direction, tt.directions),
				GrowthMetrics:       make([]GrowthMetric, tt.metrics),
			}
			for i := range r.PromisingDirections {
				r.PromisingDirections[i].Title = "model"
			}
			ApplyDefaults(r)
			if len(r.PromisingDirections) != DirectionCount {
				t.Errorf("directions = %d, want %d", len(r.PromisingDirections), DirectionCount)
			}
			if len(r.GrowthMetrics) != GrowthMetricCount {
				t.Errorf("growth metrics = %d, want %d", len(r.GrowthMetrics), GrowthMetricCount)
			}
			if tt.directions > 0 && r.PromisingDirections[0].Title != "model" {
				t.Errorf("model direction overwritten: %+v", r.PromisingDirections[0])
			}
			for i, m := range r.GrowthMetrics {
				if m.Label == "" || m.Color == "" {
					t.Errorf("metric %d not defaulted: %+v", i, m)
				}
			}
		})
	}
}

func TestApplyDefaults_ClampsAndFills(t *testing.T) {
	r := &AnalysisResult{
		SwotAnalysisStats: []SwotStat{{Label: "S", Score: 140}, {Score: -3, Color: "#000"}},
		GrowthMetrics:     []GrowthMetric{{Label: "Reach", Value: 250}},
		AudienceStats:     AudienceStats{AgeDistribution: []LabelValue{{Label: "18-24", Value: -1}}},
	}
	ApplyDefaults(r)

	if r.SwotAnalysisStats[0].Score != 100 || r.SwotAnalysisStats[1].Score != 0 {
		t.Errorf("swot scores = %v, %v", r.SwotAnalysisStats[0].Score, r.SwotAnalysisStats[1].Score)
	}
	if r.SwotAnalysisStats[0].Color != Palette[0] || r.SwotAnalysisStats[1].Color != "#000" {
		t.Errorf("swot colors = %q, %q", r.SwotAnalysisStats[0].Color, r.SwotAnalysisStats[1].Color)
	}
	if r.SwotAnalysisStats[1].Label != "Factor 2" {
		t.Errorf("swot label = %q", r.SwotAnalysisStats[1].Label)
	}
	if r.GrowthMetrics[0].Value != 100 || r.GrowthMetrics[0].Label != "Reach" {
		t.Errorf("growth[0] = %+v", r.GrowthMetrics[0])
	}
	if r.GrowthMetrics[1].Label != defaultGrowthLabels[1] || r.GrowthMetrics[1].Value != 0 {
		t.Errorf("growth[1] = %+v", r.GrowthMetrics[1])
	}
	if r.AudienceStats.AgeDistribution[0].Value != 0 {
		t.Errorf("age share = %v", r.AudienceStats.AgeDistribution[0].Value)
	}

	if r.Summary != DefaultSummary || r.CreatorDNA.Title != DefaultDNATitle || r.AudiencePersona.AgeRange != DefaultAgeRange {
		t.Errorf("string defaults not applied: %q %q %q", r.Summary, r.CreatorDNA.Title, r.AudiencePersona.AgeRange)
	}
	if r.Strengths == nil || r.ContentStrategy == nil || r.AudienceStats.InterestComposition == nil {
		t.Error("lists should be non-nil after defaulting")
	}
}

func TestApplyDefaults_EveryFieldPopulated(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"summary only", `{"summary":"s"}`},
		{"blank lists", `{"strengths":["", "  "],"contentStrategy":[{}],"audienceStats":{"ageDistribution":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseResult(tt.raw)
			if err != nil {
				t.Fatalf("ParseResult: %v", err)
			}
			ApplyDefaults(r)

			strs := map[string]string{
				"summary":                r.Summary,
				"strategicVerdict":       r.StrategicVerdict,
				"metricsAnalysis":        r.MetricsAnalysis,
				"creatorDNA.title":       r.CreatorDNA.Title,
				"creatorDNA.description": r.CreatorDNA.Description,
				"audiencePersona.age":    r.AudiencePersona.AgeRange,
			}
			for name, v := range strs {
				if strings.TrimSpace(v) == "" {
					t.Errorf("%s is empty", name)
				}
			}

			lists := map[string]StringList{
				"creatorDNA.tags":            r.CreatorDNA.Tags,
				"strengths":                  r.Strengths,
				"weaknesses":                 r.Weaknesses,
				"opportunities":              r.Opportunities,
				"audiencePersona.interests":  r.AudiencePersona.Interests,
				"audiencePersona.painPoints": r.AudiencePersona.PainPoints,
			}
			for i, d := range r.PromisingDirections {
				lists[fmt.Sprintf("promisingDirections[%d].actionPlan", i)] = d.ActionPlan
				lists[fmt.Sprintf("promisingDirections[%d].tags", i)] = d.Tags
				if d.Title == "" || d.Description == "" || d.Rationale == "" {
					t.Errorf("direction %d has empty text: %+v", i, d)
				}
			}
			for i, c := range r.ContentStrategy {
				lists[fmt.Sprintf("contentStrategy[%d].keywords", i)] = c.Keywords
				if c.Category == "" || c.TitleTemplate == "" || c.Structure == "" {
					t.Errorf("content pillar %d has empty text: %+v", i, c)
				}
			}
			for name, l := range lists {
				if len(l) == 0 {
					t.Errorf("%s is empty", name)
				}
				for _, it := range l {
					if strings.TrimSpace(it) == "" {
						t.Errorf("%s has a blank entry: %q", name, l)
					}
				}
			}

			if len(r.SwotAnalysisStats) == 0 || r.SwotAnalysisStats[0].Label == "" || r.SwotAnalysisStats[0].Color == "" {
				t.Errorf("swotAnalysisStats = %+v", r.SwotAnalysisStats)
			}
			if len(r.ContentStrategy) == 0 {
				t.Error("contentStrategy is empty")
			}
			for name, lv := range map[string][]LabelValue{
				"ageDistribution":     r.AudienceStats.AgeDistribution,
				"interestComposition": r.AudienceStats.InterestComposition,
			} {
				if len(lv) == 0 || lv[0].Label == "" {
					t.Errorf("%s = %+v", name, lv)
				}
			}
			if len(r.PromisingDirections) != DirectionCount || len(r.GrowthMetrics) != GrowthMetricCount {
				t.Errorf("counts = %d/%d", len(r.PromisingDirections), len(r.GrowthMetrics))
			}
		})
	}
}

func TestApplyDefaults_KeepsModelLists(t *testing.T) {
	r := &AnalysisResult{
		Strengths:       StringList{"", "Consistent covers"},
		ContentStrategy: []ContentPillar{{Category: "Recipes", TitleTemplate: "3 dinners under 20 min"}},
	}
	ApplyDefaults(r)
	if len(r.Strengths) != 1 || r.Strengths[0] != "Consistent covers" {
		t.Errorf("Strengths = %v", r.Strengths)
	}
	c := r.ContentStrategy[0]
	if c.Category != "Recipes" || c.TitleTemplate != "3 dinners under 20 min" || c.Structure != DefaultStructure {
		t.Errorf("content pillar = %+v", c)
	}
}

func TestToMarkdown(t *testing.T) {
	r := &AnalysisResult{
		Summary:    "Strong visual identity.",
		CreatorDNA: CreatorDNA{Title: "Minimalist OOTD", Tags: StringList{"#OOTD", "style"}},
		PromisingDirections: []Direction{
			{Title: "Capsule wardrobe series", ActionPlan: StringList{"Post 3x a week", "Pin a guide"}},
		},
		Strengths:     StringList{"Consistent covers"},
		GrowthMetrics: []GrowthMetric{{Label: "Engagement", Value: 72.5}},
		HardStats: stats.HardStats{
			TotalNotes: 2, TotalLikes: 200, AvgLikes: 100, MaxLikes: 120,
			TopNote: stats.TopNote{Title: "A | B", Likes: 120, Type: "normal"},
		},
	}
	ApplyDefaults(r)

	got := ToMarkdown(r)
	for _, want := range []string{
		"# Creator Audit: Minimalist OOTD",
		"Tags: #OOTD #style",
		"| Notes analysed | 2 |",
		`| Top note | A \| B (120 likes, normal) |`,
		"### 1. Capsule wardrobe series",
		"1. Post 3x a week\n2. Pin a guide",
		"### 2. Direction 2",
		"- Consistent covers",
		"### Weaknesses\n\n- " + DefaultListItem,
		"## Content Strategy\n\n### " + DefaultPillarCategory,
		"- " + DefaultShareLabel + ": 100%",
		"| Engagement | 72.5/100 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q\n%s", want, got)
		}
	}
	if again := ToMarkdown(r); again != got {
		t.Error("ToMarkdown is not deterministic")
	}
}

func TestToHTML(t *testing.T) {
	r := &AnalysisResult{CreatorDNA: CreatorDNA{Title: "<Chef>"}}
	ApplyDefaults(r)
	got, err := ToHTML(r)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, "<title>Creator Audit: &lt;Chef&gt;</title>") {
		t.Errorf("title not escaped: %s", got[:200])
	}
	if !strings.Contains(got, "<h2>Growth Metrics</h2>") || !strings.Contains(got, "<table>") {
		t.Error("body not rendered")
	}
}

func TestResponseSchema(t *testing.T) {
	s := ResponseSchema()
	if len(s.Required) != len(propertyOrder) || s.Required[0] != "summary" || s.Required[len(s.Required)-1] != "metricsAnalysis" {
		t.Errorf("Required = %v", s.Required)
	}
	if _, ok := s.Properties["hardStats"]; ok {
		t.Error("hardStats must not be requested from the model")
	}
	dirs := s.Properties["promisingDirections"]
	if dirs.MinItems == nil || *dirs.MinItems != DirectionCount || *dirs.MaxItems != DirectionCount {
		t.Errorf("promisingDirections bounds = %v/%v", dirs.MinItems, dirs.MaxItems)
	}
	if got := s.Properties["growthMetrics"].Items.Required; strings.Join(got, ",") != "color,label,value" {
		t.Errorf("growthMetrics item required = %v", got)
	}
}
