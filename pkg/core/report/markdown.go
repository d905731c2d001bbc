package report

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"creator_mind/pkg/core/utils"
)

// ToMarkdown renders r as a standalone Markdown document. Output depends only
// on r; call ApplyDefaults first for a fully populated report.
func ToMarkdown(r *AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Creator Audit: %s\n\n", r.CreatorDNA.Title)

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(r.Summary + "\n\n")

	b.WriteString("## Creator DNA\n\n")
	fmt.Fprintf(&b, "**%s**\n\n%s\n\n", r.CreatorDNA.Title, r.CreatorDNA.Description)
	writeTags(&b, r.CreatorDNA.Tags)

	writeHardStats(&b, r)

	b.WriteString("## Promising Directions\n\n")
	for i, d := range r.PromisingDirections {
		fmt.Fprintf(&b, "### %d. %s\n\n%s\n\n", i+1, d.Title, d.Description)
		fmt.Fprintf(&b, "**Why it fits:** %s\n\n", d.Rationale)
		b.WriteString("**Action plan:**\n\n")
		for j, step := range d.ActionPlan {
			fmt.Fprintf(&b, "%d. %s\n", j+1, step)
		}
		b.WriteString("\n")
		writeTags(&b, d.Tags)
	}

	b.WriteString("## Strategic Verdict\n\n")
	b.WriteString(r.StrategicVerdict + "\n\n")

	b.WriteString("## SWOT\n\n")
	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Weaknesses", r.Weaknesses)
	writeList(&b, "Opportunities", r.Opportunities)
	b.WriteString("### Scores\n\n| Factor | Score |\n|---|---|\n")
	for _, s := range r.SwotAnalysisStats {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(s.Label), num(s.Score))
	}
	b.WriteString("\n")

	b.WriteString("## Content Strategy\n\n")
	for _, c := range r.ContentStrategy {
		fmt.Fprintf(&b, "### %s\n\n", c.Category)
		fmt.Fprintf(&b, "- **Title template:** %s\n", c.TitleTemplate)
		fmt.Fprintf(&b, "- **Structure:** %s\n", c.Structure)
		fmt.Fprintf(&b, "- **Keywords:** %s\n\n", strings.Join(c.Keywords, ", "))
	}

	b.WriteString("## Audience Persona\n\n")
	fmt.Fprintf(&b, "- **Age range:** %s\n", r.AudiencePersona.AgeRange)
	fmt.Fprintf(&b, "- **Interests:** %s\n", joinOrNone(r.AudiencePersona.Interests))
	fmt.Fprintf(&b, "- **Pain points:** %s\n\n", joinOrNone(r.AudiencePersona.PainPoints))

	b.WriteString("## Audience Breakdown\n\n")
	writeShares(&b, "Age distribution", r.AudienceStats.AgeDistribution)
	writeShares(&b, "Interest composition", r.AudienceStats.InterestComposition)

	b.WriteString("## Growth Metrics\n\n| Metric | Score |\n|---|---|\n")
	for _, m := range r.GrowthMetrics {
		fmt.Fprintf(&b, "| %s | %s/100 |\n", cell(m.Label), num(m.Value))
	}
	b.WriteString("\n")

	b.WriteString("## Metrics Analysis\n\n")
	b.WriteString(r.MetricsAnalysis + "\n")

	return b.String()
}

// ToHTML is the print view: the Markdown export rendered to a small HTML page.
func ToHTML(r *AnalysisResult) (string, error) {
	body, err := utils.RenderHTML(ToMarkdown(r))
	if err != nil {
		return "", err
	}
	title := html.EscapeString("Creator Audit: " + r.CreatorDNA.Title)
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>" + title +
		"</title>\n<style>body{font-family:sans-serif;max-width:860px;margin:2em auto;line-height:1.5}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n</head>\n<body>\n" +
		body + "</body>\n</html>\n", nil
}

func writeHardStats(b *strings.Builder, r *AnalysisResult) {
	hs := r.HardStats
	b.WriteString("## Hard Stats\n\n| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Notes analysed | %d |\n", hs.TotalNotes)
	fmt.Fprintf(b, "| Total likes | %d |\n", hs.TotalLikes)
	fmt.Fprintf(b, "| Average likes | %d |\n", hs.AvgLikes)
	fmt.Fprintf(b, "| Max likes | %d |\n", hs.MaxLikes)
	fmt.Fprintf(b, "| Total collects | %d |\n", hs.TotalCollects)
	fmt.Fprintf(b, "| Collects per like | %s |\n", strconv.FormatFloat(hs.CollectRatio, 'f', 2, 64))
	fmt.Fprintf(b, "| Total comments | %d |\n", hs.TotalComments)
	fmt.Fprintf(b, "| Total shares | %d |\n", hs.TotalShares)
	fmt.Fprintf(b, "| Top note | %s (%d likes, %s) |\n\n", cell(hs.TopNote.Title), hs.TopNote.Likes, cell(hs.TopNote.Type))
}

func writeList(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	if len(items) == 0 {
		b.WriteString("_None noted._\n\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func writeShares(b *strings.Builder, heading string, items []LabelValue) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s: %s%%\n", it.Label, num(it.Value))
	}
	b.WriteString("\n")
}

func writeTags(b *strings.Builder, tags []string) {
	if len(tags) == 0 {
		return
	}
	hashed := make([]string, len(tags))
	for i, t := range tags {
		hashed[i] = "#" + strings.TrimPrefix(t, "#")
	}
	fmt.Fprintf(b, "Tags: %s\n\n", strings.Join(hashed, " "))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "n/a"
	}
	return strings.Join(items, ", ")
}

// cell keeps a value from breaking a Markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func num(s Score) string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}
