package ingest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMergeBatch(t *testing.T) {
	results := []FileResult{
		{Name: "info.json", Kind: KindSpiderData, Content: `[{"note_id":"1"}]`, ValidJSON: true},
		{Name: "dump.txt", Kind: KindSpiderData, Content: "not json"},
		{Name: "shot.png", Kind: KindImage, DataURI: "data:image/png;base64,AAAA"},
	}

	tests := []struct {
		name    string
		current string
		want    string
	}{
		{
			name:    "Empty current text",
			current: "   ",
			want: "   " + BannerSpiderData +
				"\n\n--- FILE: info.json ---\n" + `[{"note_id":"1"}]` +
				"\n\n--- FILE: dump.txt (Raw Text) ---\nnot json",
		},
		{
			name:    "Appends after existing text",
			current: "my bio",
			want: "my bio\n\n" + BannerSpiderData +
				"\n\n--- FILE: info.json ---\n" + `[{"note_id":"1"}]` +
				"\n\n--- FILE: dump.txt (Raw Text) ---\nnot json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeBatch(tt.current, results); got != tt.want {
				t.Errorf("MergeBatch() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestMergeBatch_SectionsAndImagesOnly(t *testing.T) {
	if got := MergeBatch("keep", []FileResult{{Kind: KindImage, DataURI: "data:image/png;base64,AA"}}); got != "keep" {
		t.Errorf("image-only batch changed text: %q", got)
	}

	got := MergeBatch("", []FileResult{
		{Name: "page.html", Kind: KindNote, Content: "profile page"},
		{Name: "rows.xlsx", Kind: KindSpreadsheet, Content: "{\"note_id\":\"1\"}\n"},
	})
	want := BannerSpreadsheet + "\n\n--- FILE: rows.xlsx ---\n{\"note_id\":\"1\"}\n\n\n--- NOTE: page.html ---\nprofile page"
	if got != want {
		t.Errorf("MergeBatch() =\n%q\nwant\n%q", got, want)
	}
}

func TestDecodeFiles_KeepsUploadOrder(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	files := []UploadedFile{
		{Name: "a.json", Data: []byte(`{"note_id":"1","liked_count":3}`)},
		{Name: "b.png", ContentType: "image/png", Data: png},
		{Name: "c.csv", Data: []byte("note_id,title,comment_text\nn1,T,c1\nn1,,c2\n")},
		{Name: "d.html", Data: []byte("<html><head><title>Me</title><style>p{}</style></head><body><p>Hello   world</p></body></html>")},
	}

	got, err := DecodeFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("DecodeFiles: %v", err)
	}
	wantKinds := []FileKind{KindSpiderData, KindImage, KindSpreadsheet, KindNote}
	for i, k := range wantKinds {
		if got[i].Kind != k || got[i].Name != files[i].Name {
			t.Errorf("result %d = %s/%s, want %s/%s", i, got[i].Name, got[i].Kind, files[i].Name, k)
		}
	}
	if !got[0].ValidJSON || got[0].Records != 1 {
		t.Errorf("json result = %+v", got[0])
	}
	if !strings.HasPrefix(got[1].DataURI, "data:image/png;base64,") {
		t.Errorf("image data uri = %q", got[1].DataURI)
	}
	if got[2].Records != 1 || got[2].Sheet == nil || len(got[2].Sheet.Grid) != 2 {
		t.Errorf("spreadsheet result = %+v", got[2])
	}
	if !strings.Contains(got[3].Content, "Hello world") || strings.Contains(got[3].Content, "p{}") {
		t.Errorf("html text = %q", got[3].Content)
	}
	if uris := ImageURIs(got); len(uris) != 1 {
		t.Errorf("ImageURIs() = %v, want 1 uri", uris)
	}
}

func TestDecodeFiles_FailsWholeBatch(t *testing.T) {
	files := []UploadedFile{
		{Name: "ok.json", Data: []byte(`{}`)},
		{Name: "broken.xlsx", Data: []byte("definitely not a zip")},
	}
	_, err := DecodeFiles(context.Background(), files)
	if err == nil {
		t.Fatal("expected an error for a corrupt workbook")
	}
	var fe *FileError
	if !errors.As(err, &fe) || fe.Name != "broken.xlsx" {
		t.Errorf("error = %v, want FileError for broken.xlsx", err)
	}
	if !errors.Is(err, ErrUnreadableFile) {
		t.Errorf("errors.Is(err, ErrUnreadableFile) = false")
	}
}

func TestDecodeFile_RejectsFakeImage(t *testing.T) {
	_, err := DecodeFile(UploadedFile{Name: "x.png", Data: []byte("hello")})
	if err == nil {
		t.Error("expected error for non-image bytes with .png name")
	}
}

func TestSpreadsheet_XLSXRoundTrip(t *testing.T) {
	sheet := &Sheet{
		Name:   "notes",
		Header: []string{"note_id", "Note_Title", "comment_text"},
		Grid: [][]string{
			{"n1", "T", "c1"},
			{"n1", "", "c2"},
		},
	}
	data, err := WriteXLSX(sheet)
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	back, err := ReadSpreadsheet(bytes.NewReader(data), "notes.xlsx")
	if err != nil {
		t.Fatalf("ReadSpreadsheet: %v", err)
	}
	if back.Name != "notes" || strings.Join(back.Header, "|") != "note_id|Note_Title|comment_text" {
		t.Errorf("sheet header = %s %v", back.Name, back.Header)
	}
	if len(back.Grid) != 2 || back.Grid[1][0] != "n1" || back.Grid[1][2] != "c2" {
		t.Errorf("grid = %v", back.Grid)
	}

	recs := back.Records()
	if _, ok := recs[1]["Note_Title"]; ok {
		t.Errorf("empty cells should be omitted: %v", recs[1])
	}
}

func TestSheetRecords_UnnamedColumns(t *testing.T) {
	s := &Sheet{Header: []string{"title"}, Grid: [][]string{{"A", "extra"}, {"", ""}}}
	recs := s.Records()
	if len(recs) != 1 {
		t.Fatalf("Records() returned %d, want 1 (blank row dropped)", len(recs))
	}
	if recs[0]["__EMPTY_B"] != "extra" {
		t.Errorf("unnamed column = %v", recs[0])
	}
}
