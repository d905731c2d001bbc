package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// maxParallelDecodes bounds how many files of one batch are decoded at once.
const maxParallelDecodes = 4

// UploadedFile is a file as received from the client.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ErrUnreadableFile marks files that could not be decoded.
var ErrUnreadableFile = errors.New("unreadable file")

// FileError reports which file of a batch failed to decode.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() []error { return []error{ErrUnreadableFile, e.Err} }

// DecodeFiles decodes every file of a batch concurrently. Results keep upload
// order regardless of completion order, and nothing is returned until every
// file has finished. The first failure fails the whole batch.
func DecodeFiles(ctx context.Context, files []UploadedFile) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDecodes)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := DecodeFile(f)
			if err != nil {
				return &FileError{Name: f.Name, Err: err}
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DecodeFile classifies and decodes a single file.
func DecodeFile(f UploadedFile) (FileResult, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	ct := strings.ToLower(f.ContentType)

	switch {
	case isImage(ext, ct):
		return decodeImage(f)
	case ext == ".xlsx" || ext == ".xlsm" || ext == ".csv":
		return decodeSpreadsheet(f)
	case ext == ".html" || ext == ".htm" || strings.HasPrefix(ct, "text/html"):
		text, err := HTMLToText(bytes.NewReader(f.Data))
		if err != nil {
			return FileResult{}, err
		}
		return FileResult{Name: f.Name, Kind: KindNote, Content: text, Records: len(ExtractRecords(text))}, nil
	default:
		if !utf8.Valid(f.Data) {
			return FileResult{}, errors.New("not valid UTF-8 text")
		}
		content := string(f.Data)
		return FileResult{
			Name:      f.Name,
			Kind:      KindSpiderData,
			Content:   content,
			ValidJSON: json.Valid(bytes.TrimSpace(f.Data)),
			Records:   len(ExtractRecords(content)),
		}, nil
	}
}

func isImage(ext, ct string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	}
	return strings.HasPrefix(ct, "image/")
}

func decodeImage(f UploadedFile) (FileResult, error) {
	detected := http.DetectContentType(f.Data)
	if !strings.HasPrefix(detected, "image/") {
		return FileResult{}, fmt.Errorf("not an image (detected %s)", detected)
	}
	return FileResult{
		Name:    f.Name,
		Kind:    KindImage,
		DataURI: "data:" + detected + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
	}, nil
}

func decodeSpreadsheet(f UploadedFile) (FileResult, error) {
	sheet, err := ReadSpreadsheet(bytes.NewReader(f.Data), f.Name)
	if err != nil {
		return FileResult{}, err
	}
	grouped := GroupRows(sheet.Records())
	return FileResult{
		Name:    f.Name,
		Kind:    KindSpreadsheet,
		Content: RenderGroupedNotes(grouped),
		Sheet:   sheet,
		Records: len(grouped),
	}, nil
}
