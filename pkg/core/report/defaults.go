package report

import (
	"fmt"
	"strings"
)

const (
	DirectionCount    = 2
	GrowthMetricCount = 5
)

// Fallback text for fields the model left empty.
const (
	DefaultSummary          = "The model did not return a summary for this account."
	DefaultDNATitle         = "Unclassified Creator"
	DefaultDNADescription   = "Not enough signal to describe this creator's positioning."
	DefaultVerdict          = "No verdict was returned. Re-run the analysis with more notes or screenshots."
	DefaultMetricsAnalysis  = "No metrics commentary was returned."
	DefaultAgeRange         = "Unknown"
	DefaultDirectionSummary = "No detail was returned for this direction."
	DefaultListItem         = "Not enough data to assess."
	DefaultActionStep       = "Collect more notes and re-run the audit."
	DefaultTag              = "uncategorized"
	DefaultPillarCategory   = "General"
	DefaultTitleTemplate    = "No title template was returned."
	DefaultStructure        = "No structure was returned."
	DefaultSwotLabel        = "Overall"
	DefaultShareLabel       = "Unknown"
)

// Palette cycles through chart colours for entries that arrive without one.
var Palette = []string{"#ff2442", "#fe2c55", "#25f4ee", "#f59e0b", "#10b981", "#6366f1"}

var defaultGrowthLabels = [GrowthMetricCount]string{
	"Content Quality",
	"Engagement",
	"Consistency",
	"Niche Potential",
	"Monetization",
}

// ApplyDefaults fills every field of r so downstream code never checks for
// missing sections. Absent lists get a single placeholder entry. It pads or
// truncates promisingDirections to exactly two and growthMetrics to exactly
// five, clamps scores into 0..100 and assigns palette colours where none were
// given.
func ApplyDefaults(r *AnalysisResult) {
	r.Summary = orDefault(r.Summary, DefaultSummary)
	r.StrategicVerdict = orDefault(r.StrategicVerdict, DefaultVerdict)
	r.MetricsAnalysis = orDefault(r.MetricsAnalysis, DefaultMetricsAnalysis)

	r.CreatorDNA.Title = orDefault(r.CreatorDNA.Title, DefaultDNATitle)
	r.CreatorDNA.Description = orDefault(r.CreatorDNA.Description, DefaultDNADescription)
	r.CreatorDNA.Tags = listOrDefault(r.CreatorDNA.Tags, DefaultTag)

	r.PromisingDirections = fitDirections(r.PromisingDirections)

	r.Strengths = listOrDefault(r.Strengths, DefaultListItem)
	r.Weaknesses = listOrDefault(r.Weaknesses, DefaultListItem)
	r.Opportunities = listOrDefault(r.Opportunities, DefaultListItem)

	if len(r.SwotAnalysisStats) == 0 {
		r.SwotAnalysisStats = []SwotStat{{Label: DefaultSwotLabel}}
	}
	for i := range r.SwotAnalysisStats {
		s := &r.SwotAnalysisStats[i]
		s.Label = orDefault(s.Label, fmt.Sprintf("Factor %d", i+1))
		s.Score = clamp(s.Score)
		s.Color = orDefault(s.Color, Palette[i%len(Palette)])
	}

	if len(r.ContentStrategy) == 0 {
		r.ContentStrategy = []ContentPillar{{Category: DefaultPillarCategory}}
	}
	for i := range r.ContentStrategy {
		c := &r.ContentStrategy[i]
		c.Category = orDefault(c.Category, fmt.Sprintf("Pillar %d", i+1))
		c.TitleTemplate = orDefault(c.TitleTemplate, DefaultTitleTemplate)
		c.Structure = orDefault(c.Structure, DefaultStructure)
		c.Keywords = listOrDefault(c.Keywords, DefaultTag)
	}

	r.AudiencePersona.AgeRange = orDefault(r.AudiencePersona.AgeRange, DefaultAgeRange)
	r.AudiencePersona.Interests = listOrDefault(r.AudiencePersona.Interests, DefaultListItem)
	r.AudiencePersona.PainPoints = listOrDefault(r.AudiencePersona.PainPoints, DefaultListItem)

	r.AudienceStats.AgeDistribution = fitLabelValues(r.AudienceStats.AgeDistribution)
	r.AudienceStats.InterestComposition = fitLabelValues(r.AudienceStats.InterestComposition)

	r.GrowthMetrics = fitGrowthMetrics(r.GrowthMetrics)
}

func fitDirections(in []Direction) []Direction {
	out := make([]Direction, DirectionCount)
	copy(out, in)
	for i := range out {
		d := &out[i]
		d.Title = orDefault(d.Title, fmt.Sprintf("Direction %d", i+1))
		d.Description = orDefault(d.Description, DefaultDirectionSummary)
		d.Rationale = orDefault(d.Rationale, DefaultDirectionSummary)
		d.ActionPlan = listOrDefault(d.ActionPlan, DefaultActionStep)
		d.Tags = listOrDefault(d.Tags, DefaultTag)
	}
	return out
}

func fitGrowthMetrics(in []GrowthMetric) []GrowthMetric {
	out := make([]GrowthMetric, GrowthMetricCount)
	copy(out, in)
	for i := range out {
		m := &out[i]
		m.Label = orDefault(m.Label, defaultGrowthLabels[i])
		m.Value = clamp(m.Value)
		m.Color = orDefault(m.Color, Palette[i%len(Palette)])
	}
	return out
}

func fitLabelValues(in []LabelValue) []LabelValue {
	if len(in) == 0 {
		return []LabelValue{{Label: DefaultShareLabel, Value: 100}}
	}
	for i := range in {
		in[i].Label = orDefault(in[i].Label, fmt.Sprintf("Group %d", i+1))
		in[i].Value = clamp(in[i].Value)
	}
	return in
}

func clamp(s Score) Score {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// listOrDefault drops blank entries and falls back to a single placeholder.
func listOrDefault(l StringList, def string) StringList {
	out := make(StringList, 0, len(l))
	for _, it := range l {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return StringList{def}
	}
	return out
}
