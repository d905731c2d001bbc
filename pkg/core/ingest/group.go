package ingest

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// CommentsListField is the key under which nested comment fragments are emitted.
const CommentsListField = "Comments_List"

// GroupedNote is one note's full field set plus the comment-level fields of
// every row that belonged to it, in row order.
type GroupedNote struct {
	Key      string
	Fields   Record
	Comments []Record
}

// MarshalJSON flattens the note: all original fields plus Comments_List.
func (g GroupedNote) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(g.Fields)+1)
	for k, v := range g.Fields {
		out[k] = v
	}
	comments := g.Comments
	if comments == nil {
		comments = []Record{}
	}
	out[CommentsListField] = comments
	return json.Marshal(out)
}

// GroupRows folds flat spreadsheet rows (one row per comment, note columns
// repeated) into one GroupedNote per note. Rows with no usable key are never
// merged with anything else.
func GroupRows(rows []Record) []GroupedNote {
	return groupRows(rows, func() string { return "row-" + uuid.NewString() })
}

func groupRows(rows []Record, anonKey func() string) []GroupedNote {
	index := make(map[string]int)
	var out []GroupedNote

	for _, row := range rows {
		key, ok := groupKey(row)
		if !ok {
			key = anonKey()
		}

		i, seen := index[key]
		if !seen {
			fields := make(Record, len(row))
			for k, v := range row {
				fields[k] = v
			}
			out = append(out, GroupedNote{Key: key, Fields: fields, Comments: []Record{}})
			i = len(out) - 1
			index[key] = i
		}

		if frag := commentFields(row); len(frag) > 0 {
			out[i].Comments = append(out[i].Comments, frag)
		}
	}
	return out
}

func groupKey(row Record) (string, bool) {
	for _, keys := range groupKeyAliases {
		if v, ok := LookupString(row, keys); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// IsCommentField reports whether a column belongs to comment granularity.
func IsCommentField(name string) bool {
	return strings.Contains(strings.ToLower(name), "comment") || strings.Contains(name, "评论")
}

func commentFields(row Record) Record {
	frag := Record{}
	for k, v := range row {
		if IsCommentField(k) {
			frag[k] = v
		}
	}
	return frag
}

// RenderGroupedNotes writes one compact JSON object per line so the
// line-oriented extraction stage can read the notes back.
func RenderGroupedNotes(notes []GroupedNote) string {
	var sb strings.Builder
	for _, n := range notes {
		b, err := json.Marshal(n)
		if err != nil {
			continue
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return sb.String()
}
