package report

import (
	"sort"

	"google.golang.org/genai"
)

// ResponseSchema describes AnalysisResult for providers that accept a typed
// schema. hardStats is left out; it is filled in locally.
func ResponseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	strList := &genai.Schema{Type: genai.TypeArray, Items: str}
	num := &genai.Schema{Type: genai.TypeNumber}

	labelValue := object(map[string]*genai.Schema{"label": str, "value": num})
	scored := func(field string) *genai.Schema {
		return object(map[string]*genai.Schema{"label": str, field: num, "color": str})
	}

	return object(map[string]*genai.Schema{
		"summary": {Type: genai.TypeString, Description: "Executive summary of the account, referencing visual elements when screenshots are present."},
		"creatorDNA": object(map[string]*genai.Schema{
			"title":       str,
			"tags":        strList,
			"description": str,
		}),
		"promisingDirections": {
			Type:        genai.TypeArray,
			Description: "Exactly two strategic directions. If the user stated a goal, one must serve it.",
			MinItems:    genai.Ptr[int64](DirectionCount),
			MaxItems:    genai.Ptr[int64](DirectionCount),
			Items: object(map[string]*genai.Schema{
				"title":       str,
				"description": str,
				"rationale":   str,
				"actionPlan":  strList,
				"tags":        strList,
			}),
		},
		"strategicVerdict":  str,
		"strengths":         strList,
		"weaknesses":        strList,
		"opportunities":     strList,
		"swotAnalysisStats": {Type: genai.TypeArray, Items: scored("score")},
		"contentStrategy": {Type: genai.TypeArray, Items: object(map[string]*genai.Schema{
			"category":      str,
			"titleTemplate": str,
			"structure":     str,
			"keywords":      strList,
		})},
		"audiencePersona": object(map[string]*genai.Schema{
			"ageRange":   str,
			"interests":  strList,
			"painPoints": strList,
		}),
		"audienceStats": object(map[string]*genai.Schema{
			"ageDistribution":     {Type: genai.TypeArray, Items: labelValue},
			"interestComposition": {Type: genai.TypeArray, Items: labelValue},
		}),
		"growthMetrics": {
			Type:        genai.TypeArray,
			Description: "Exactly five metrics scored 0-100 from the potential of the niche.",
			MinItems:    genai.Ptr[int64](GrowthMetricCount),
			MaxItems:    genai.Ptr[int64](GrowthMetricCount),
			Items:       scored("value"),
		},
		"metricsAnalysis": str,
	})
}

func object(props map[string]*genai.Schema) *genai.Schema {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         keys,
		PropertyOrdering: keys,
	}
}

// propertyOrder is the order the top-level fields are asked for.
var propertyOrder = []string{
	"summary", "creatorDNA", "promisingDirections", "strategicVerdict",
	"strengths", "weaknesses", "opportunities", "swotAnalysisStats",
	"contentStrategy", "audiencePersona", "audienceStats", "growthMetrics",
	"metricsAnalysis",
}

func rank(key string) int {
	for i, k := range propertyOrder {
		if k == key {
			return i
		}
	}
	return len(propertyOrder)
}
