package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// UntitledPlaceholder is used when a record carries no title under any alias.
	UntitledPlaceholder = "Untitled"
	// UnknownTypePlaceholder is used when a record carries no note type.
	UnknownTypePlaceholder = "unknown"
)

// CanonicalNote is the normalized view of a Record used for statistics.
type CanonicalNote struct {
	ID             string `json:"id,omitempty"`
	Title          string `json:"title"`
	LikedCount     int64  `json:"likedCount"`
	CollectedCount int64  `json:"collectedCount"`
	CommentCount   int64  `json:"commentCount"`
	ShareCount     int64  `json:"shareCount"`
	NoteType       string `json:"noteType"`
}

// Normalize coerces a raw record into a fully populated CanonicalNote.
// Counts that cannot be read become 0; it never fails.
func Normalize(r Record) CanonicalNote {
	n := CanonicalNote{
		Title:    UntitledPlaceholder,
		NoteType: UnknownTypePlaceholder,
	}
	if id, ok := LookupString(r, Aliases.NoteID); ok {
		n.ID = id
	}
	if t, ok := LookupString(r, Aliases.Title); ok {
		n.Title = t
	}
	if t, ok := LookupString(r, Aliases.NoteType); ok {
		n.NoteType = t
	}
	n.LikedCount = countOf(r, Aliases.Likes)
	n.CollectedCount = countOf(r, Aliases.Collects)
	n.CommentCount = countOf(r, Aliases.Comments)
	n.ShareCount = countOf(r, Aliases.Shares)
	return n
}

// NormalizeAll normalizes records, keeping input order.
func NormalizeAll(recs []Record) []CanonicalNote {
	out := make([]CanonicalNote, 0, len(recs))
	for _, r := range recs {
		out = append(out, Normalize(r))
	}
	return out
}

func countOf(r Record, keys []string) int64 {
	v, ok := Lookup(r, keys)
	if !ok {
		return 0
	}
	return CoerceCount(v)
}

// CoerceCount turns a number or numeric string into a non-negative integer.
// Platform-style abbreviations are expanded: "1.2万" is 12000, "3亿" is
// 300000000, "1.5k" is 1500, and a trailing "+" ("10万+") is ignored.
// Anything else that is not a finite, non-negative number becomes 0.
func CoerceCount(v any) int64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case string:
		f = parseCountString(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(math.Round(f))
}

var countSuffixes = []struct {
	suffix string
	mult   float64
}{
	{"亿", 1e8},
	{"万", 1e4},
	{"w", 1e4},
	{"W", 1e4},
	{"k", 1e3},
	{"K", 1e3},
}

func parseCountString(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "，", "", " ", "").Replace(s)
	s = strings.TrimSuffix(s, "+")
	if s == "" {
		return 0
	}
	mult := 1.0
	for _, cs := range countSuffixes {
		if strings.HasSuffix(s, cs.suffix) {
			s = strings.TrimSuffix(s, cs.suffix)
			mult = cs.mult
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f * mult
}
