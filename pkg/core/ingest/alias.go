package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one note or comment as found in crawler output or a spreadsheet row.
// Field names vary across crawler versions and exporters.
type Record map[string]any

// Aliases lists the accepted keys for each canonical field, in lookup order.
// Spider_XHS uses snake_case, spreadsheet exports prefix columns with "Note_".
var Aliases = struct {
	Likes    []string
	Collects []string
	Comments []string
	Shares   []string
	NoteID   []string
	Title    []string
	NoteType []string
}{
	Likes:    []string{"liked_count", "likes", "Likes", "Note_liked_count"},
	Collects: []string{"collected_count", "collects", "Collects", "Note_collected_count"},
	Comments: []string{"comment_count", "comments_count", "Comments", "Note_comment_count"},
	Shares:   []string{"share_count", "shares", "Shares", "Note_share_count"},
	NoteID:   []string{"note_id", "Note_note_id", "id"},
	Title:    []string{"title", "display_title", "Note_title", "Title", "Note_Title"},
	NoteType: []string{"note_type", "type", "Note_type"},
}

// groupKeyAliases is the key preference used by GroupRows. Spreadsheet exports
// spell the same column several ways depending on the tool and its locale.
var groupKeyAliases = [][]string{
	{"note_id", "Note_note_id", "noteId", "Note ID", "笔记ID"},
	{"id", "ID", "Id"},
	{"title", "Title", "Note_title", "Note_Title", "display_title", "标题"},
}

// markerFields gate the brace-scan fallback: a fragment without any of them is
// assumed to be unrelated JSON (config snippets and the like).
var markerFields = []string{"liked_count", "note_id", "display_title"}

// Lookup returns the value of the first key in keys that is present and non-nil.
func Lookup(r Record, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// LookupString returns the first non-blank string form among keys.
func LookupString(r Record, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func hasAnyField(r Record, keys []string) bool {
	for _, k := range keys {
		if _, ok := r[k]; ok {
			return true
		}
	}
	return false
}

// stringify gives scalars their natural text form so that 123 and "123"
// compare equal as identifiers.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
