package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

// flatObjectRe matches a {...} run with no braces outside string literals.
// String literals (with escapes) may contain anything, braces included.
var flatObjectRe = regexp.MustCompile(`(?s)\{(?:[^{}"]|"(?:[^"\\]|\\.)*")*\}`)

// Strategy is one parse attempt over raw input. An empty result means "try the next one".
type Strategy func(text string) []Record

// DefaultStrategies is the extraction chain in priority order.
var DefaultStrategies = []Strategy{
	ParseWholeDocument,
	ParseLines,
	ScanBraces,
}

// ExtractRecords pulls candidate note records out of free-form input and
// deduplicates them by note id. It never fails; unusable input yields nil.
func ExtractRecords(text string) []Record {
	return Dedup(FirstNonEmpty(text, DefaultStrategies...))
}

// FirstNonEmpty runs strategies in order and returns the first non-empty result.
func FirstNonEmpty(text string, strategies ...Strategy) []Record {
	for _, s := range strategies {
		if recs := s(text); len(recs) > 0 {
			return recs
		}
	}
	return nil
}

// ParseWholeDocument treats the entire input as a single JSON value.
// Arrays yield their objects, {"data": [...]} yields the data array, and any
// other object is one record.
func ParseWholeDocument(text string) []Record {
	v, err := decodeStrict(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		return objectsOf(t)
	case map[string]any:
		if data, ok := t["data"].([]any); ok {
			return objectsOf(data)
		}
		return []Record{Record(t)}
	}
	return nil
}

// ParseLines parses NDJSON-like input one line at a time. A single trailing
// comma is tolerated so lines copied out of an array literal still parse.
// Lines that fail to parse are skipped.
func ParseLines(text string) []Record {
	var out []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, ",")
		if !strings.HasPrefix(line, "{") && !strings.HasPrefix(line, "[") {
			continue
		}
		v, err := decodeStrict(line)
		if err != nil {
			continue
		}
		switch t := v.(type) {
		case []any:
			out = append(out, objectsOf(t)...)
		case map[string]any:
			out = append(out, Record(t))
		}
	}
	return out
}

// ScanBraces is the last resort: it finds flat {...} fragments anywhere in the
// text and keeps those that parse and carry at least one marker field.
func ScanBraces(text string) []Record {
	var out []Record
	for _, m := range flatObjectRe.FindAllString(text, -1) {
		v, err := decodeStrict(m)
		if err != nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if hasAnyField(Record(obj), markerFields) {
			out = append(out, Record(obj))
		}
	}
	return out
}

// Dedup collapses records sharing a note id, keeping the first occurrence.
// Records without an id are always kept.
func Dedup(recs []Record) []Record {
	if len(recs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(recs))
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		id, ok := LookupString(r, Aliases.NoteID)
		if !ok {
			out = append(out, r)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}

func objectsOf(items []any) []Record {
	var out []Record
	for _, it := range items {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, Record(obj))
		}
	}
	return out
}

var errTrailingData = errors.New("trailing data after JSON value")

// decodeStrict decodes exactly one JSON value. Numbers stay json.Number so long
// numeric ids survive intact.
func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}
