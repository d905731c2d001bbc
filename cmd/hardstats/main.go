// Command hardstats prints the hard stats of exported note data without
// calling a model.
//
//	hardstats notes.json comments.xlsx
//	cat dump.ndjson | hardstats
//	hardstats -grouped rows.csv    # print grouped notes as NDJSON instead
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"creator_mind/pkg/core/ingest"
	"creator_mind/pkg/core/stats"
)

func main() {
	grouped := flag.Bool("grouped", false, "print spreadsheet rows grouped into notes (NDJSON) and exit")
	flag.Parse()

	text, err := readInput(context.Background(), flag.Args(), *grouped)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hardstats: %v\n", err)
		os.Exit(1)
	}
	if *grouped {
		fmt.Print(text)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats.FromText(text)); err != nil {
		fmt.Fprintf(os.Stderr, "hardstats: %v\n", err)
		os.Exit(1)
	}
}

func readInput(ctx context.Context, paths []string, groupedOnly bool) (string, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	files := make([]ingest.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		files = append(files, ingest.UploadedFile{Name: filepath.Base(p), Data: data})
	}
	results, err := ingest.DecodeFiles(ctx, files)
	if err != nil {
		return "", err
	}

	if groupedOnly {
		var out string
		for _, r := range results {
			if r.Kind == ingest.KindSpreadsheet {
				out += r.Content
			}
		}
		if out == "" {
			return "", errors.New("-grouped needs at least one .csv or .xlsx file")
		}
		return out, nil
	}
	return ingest.MergeBatch("", results), nil
}
