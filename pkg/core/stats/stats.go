// Package stats reduces normalized notes into the "hard stats" shown on the
// dashboard and injected into the analysis prompt.
package stats

import (
	"math"

	"creator_mind/pkg/core/ingest"
)

// TopNotePlaceholder fills TopNote when there are no notes.
const TopNotePlaceholder = "N/A"

// TopNote identifies the most liked note.
type TopNote struct {
	Title string `json:"title"`
	Likes int64  `json:"likes"`
	Type  string `json:"type"`
}

// HardStats are engagement figures computed from the input, never estimated.
type HardStats struct {
	TotalNotes    int     `json:"totalNotes"`
	TotalLikes    int64   `json:"totalLikes"`
	TotalCollects int64   `json:"totalCollects"`
	TotalComments int64   `json:"totalComments"`
	TotalShares   int64   `json:"totalShares"`
	AvgLikes      int64   `json:"avgLikes"`
	AvgCollects   int64   `json:"avgCollects"`
	MaxLikes      int64   `json:"maxLikes"`
	CollectRatio  float64 `json:"collectRatio"` // collects per like, 2 decimals
	TopNote       TopNote `json:"topNote"`
}

// Aggregate computes HardStats in one pass. Totals saturate at math.MaxInt64
// instead of wrapping. Averages are rounded half away from zero (2.5 -> 3). The first note reaching the maximum like count wins ties.
func Aggregate(notes []ingest.CanonicalNote) HardStats {
	s := HardStats{
		TopNote: TopNote{Title: TopNotePlaceholder, Type: TopNotePlaceholder},
	}

	top := -1
	for i, n := range notes {
		s.TotalLikes = addSat(s.TotalLikes, n.LikedCount)
		s.TotalCollects = addSat(s.TotalCollects, n.CollectedCount)
		s.TotalComments = addSat(s.TotalComments, n.CommentCount)
		s.TotalShares = addSat(s.TotalShares, n.ShareCount)
		if top < 0 || n.LikedCount > s.MaxLikes {
			s.MaxLikes = n.LikedCount
			top = i
		}
	}
	s.TotalNotes = len(notes)
	if s.TotalNotes == 0 {
		return s
	}

	s.AvgLikes = roundDiv(s.TotalLikes, int64(s.TotalNotes))
	s.AvgCollects = roundDiv(s.TotalCollects, int64(s.TotalNotes))
	if s.TotalLikes > 0 {
		s.CollectRatio = math.Round(float64(s.TotalCollects)/float64(s.TotalLikes)*100) / 100
	}
	s.TopNote = TopNote{
		Title: notes[top].Title,
		Likes: notes[top].LikedCount,
		Type:  notes[top].NoteType,
	}
	return s
}

// FromText runs the whole pipeline: extract, normalize, aggregate.
func FromText(text string) HardStats {
	return Aggregate(ingest.NormalizeAll(ingest.ExtractRecords(text)))
}

// roundDiv divides a non-negative sum by n, rounding halves up, without
// going through float64.
func roundDiv(sum, n int64) int64 {
	if n <= 0 {
		return 0
	}
	q, r := sum/n, sum%n
	if r >= n-r {
		q++
	}
	return q
}

// addSat adds two non-negative counts, clamping at math.MaxInt64.
func addSat(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
