package ingest

import (
	"strings"
)

// FileKind classifies an uploaded file by how it feeds the input text.
type FileKind string

const (
	KindSpiderData  FileKind = "spider_data" // crawler JSON / NDJSON / raw text exports
	KindSpreadsheet FileKind = "spreadsheet"
	KindNote        FileKind = "note" // saved pages and other prose
	KindImage       FileKind = "image"
)

// Section banners. They only organise the text for the model; extraction
// works around them.
const (
	BannerSpiderData  = "--- IMPORTED SPIDER_XHS DATA ---"
	BannerSpreadsheet = "--- IMPORTED EXCEL DATA (All Columns) ---"
)

// FileResult is the decoded form of one uploaded file.
type FileResult struct {
	Name      string   `json:"name"`
	Kind      FileKind `json:"kind"`
	Content   string   `json:"-"`
	ValidJSON bool     `json:"valid_json,omitempty"`
	DataURI   string   `json:"-"`
	Sheet     *Sheet   `json:"-"`
	Records   int      `json:"records"`
}

// MergeBatch folds a completed batch into the current input text. It is the
// only place input text changes after an upload and must be called once every
// file in the batch has been decoded.
func MergeBatch(current string, results []FileResult) string {
	var spider, sheets, notes strings.Builder

	for _, r := range results {
		switch r.Kind {
		case KindSpiderData:
			if r.ValidJSON {
				spider.WriteString("\n\n--- FILE: " + r.Name + " ---\n" + r.Content)
			} else {
				spider.WriteString("\n\n--- FILE: " + r.Name + " (Raw Text) ---\n" + r.Content)
			}
		case KindSpreadsheet:
			sheets.WriteString("\n\n--- FILE: " + r.Name + " ---\n" + r.Content)
		case KindNote:
			notes.WriteString("\n\n--- NOTE: " + r.Name + " ---\n" + r.Content)
		}
	}

	var sections []string
	if spider.Len() > 0 {
		sections = append(sections, BannerSpiderData+spider.String())
	}
	if sheets.Len() > 0 {
		sections = append(sections, BannerSpreadsheet+sheets.String())
	}
	if notes.Len() > 0 {
		sections = append(sections, strings.TrimPrefix(notes.String(), "\n\n"))
	}
	if len(sections) == 0 {
		return current
	}

	sep := ""
	if strings.TrimSpace(current) != "" {
		sep = "\n\n"
	}
	return current + sep + strings.Join(sections, "\n\n")
}

// ImageURIs returns the data URIs of every image in the batch, in upload order.
func ImageURIs(results []FileResult) []string {
	var out []string
	for _, r := range results {
		if r.Kind == KindImage && r.DataURI != "" {
			out = append(out, r.DataURI)
		}
	}
	return out
}
