package ingest

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoerceCount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
	}{
		{"Float", 120.0, 120},
		{"Int", 7, 7},
		{"JSON number", json.Number("42"), 42},
		{"Numeric string", "120", 120},
		{"Padded string", "  80 ", 80},
		{"Thousands separator", "1,234", 1234},
		{"Fraction rounds half up", "2.5", 3},
		{"Wan suffix", "1.2万", 12000},
		{"Wan plus", "10万+", 100000},
		{"W suffix", "3.4w", 34000},
		{"Yi suffix", "1亿", 100000000},
		{"K suffix", "1.5k", 1500},
		{"Garbage", "abc", 0},
		{"Empty string", "", 0},
		{"Negative", -5.0, 0},
		{"Negative string", "-12", 0},
		{"NaN string", "NaN", 0},
		{"Infinity", math.Inf(1), 0},
		{"Bool", true, 0},
		{"Nested object", map[string]any{"v": 1}, 0},
		{"Nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceCount(tt.input); got != tt.want {
				t.Errorf("CoerceCount(%#v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Aliases(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want CanonicalNote
	}{
		{
			name: "Spider_XHS keys",
			rec:  Record{"note_id": "n1", "display_title": "OOTD", "liked_count": "120", "collected_count": "30", "comment_count": "4", "share_count": 2.0, "type": "video"},
			want: CanonicalNote{ID: "n1", Title: "OOTD", LikedCount: 120, CollectedCount: 30, CommentCount: 4, ShareCount: 2, NoteType: "video"},
		},
		{
			name: "Spreadsheet export keys",
			rec:  Record{"Note_note_id": "n2", "Note_Title": "Skincare", "Note_liked_count": "1.2万", "Note_collected_count": "800"},
			want: CanonicalNote{ID: "n2", Title: "Skincare", LikedCount: 12000, CollectedCount: 800, NoteType: UnknownTypePlaceholder},
		},
		{
			name: "Title falls through blank alias",
			rec:  Record{"title": "  ", "Title": "Coding", "Likes": 9.0, "note_type": "normal"},
			want: CanonicalNote{Title: "Coding", LikedCount: 9, NoteType: "normal"},
		},
		{
			name: "Empty record gets placeholders",
			rec:  Record{},
			want: CanonicalNote{Title: UntitledPlaceholder, NoteType: UnknownTypePlaceholder},
		},
		{
			name: "Unparsable likes are zero",
			rec:  Record{"liked_count": "abc", "title": "X"},
			want: CanonicalNote{Title: "X", NoteType: UnknownTypePlaceholder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.rec); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalize_FirstPresentCountWins(t *testing.T) {
	// liked_count is present but unreadable; the lookup does not fall through to likes.
	got := Normalize(Record{"liked_count": "n/a", "likes": 50.0})
	if got.LikedCount != 0 {
		t.Errorf("LikedCount = %d, want 0", got.LikedCount)
	}
}

func TestNormalizeAll_KeepsOrder(t *testing.T) {
	got := NormalizeAll([]Record{{"title": "a"}, {"title": "b"}, {"title": "c"}})
	if len(got) != 3 || got[0].Title != "a" || got[2].Title != "c" {
		t.Errorf("NormalizeAll() = %+v, want order a, b, c", got)
	}
}
