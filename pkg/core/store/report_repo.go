package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"creator_mind/pkg/core/ingest"
	"creator_mind/pkg/core/report"
)

var ErrNotFound = errors.New("not found")

// StoredReport is one saved audit.
type StoredReport struct {
	ID        string                 `json:"id"`
	BatchID   string                 `json:"batch_id,omitempty"`
	Provider  string                 `json:"provider"`
	Goal      string                 `json:"goal,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Result    *report.AnalysisResult `json:"result"`
}

// ReportSummary is the listing view of a StoredReport.
type ReportSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Provider   string    `json:"provider"`
	TotalNotes int       `json:"total_notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// BatchSheet is a spreadsheet uploaded as part of an ingest batch, kept so
// the exact original rows can be exported again.
type BatchSheet struct {
	File  string        `json:"file"`
	Sheet *ingest.Sheet `json:"sheet"`
}

// ReportRepo stores reports and batch sheets.
// Hybrid vault: DB (primary) + file system (fallback/local). Writes go to
// every configured backend; reads use the DB when a pool is set.
type ReportRepo struct {
	pool    *pgxpool.Pool
	fileDir string
	log     *zap.Logger
}

// NewReportRepo creates a repository. If pool is nil and dir is empty the
// files go under .cache.
func NewReportRepo(pool *pgxpool.Pool, dir string) (*ReportRepo, error) {
	if pool == nil && dir == "" {
		dir = ".cache"
	}
	if dir != "" {
		for _, sub := range []string{"reports", "sheets"} {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
	}
	return &ReportRepo{pool: pool, fileDir: dir, log: zap.L()}, nil
}

// Save assigns an id and timestamp when missing and persists rep.
func (r *ReportRepo) Save(ctx context.Context, rep *StoredReport) error {
	if rep.Result == nil {
		return fmt.Errorf("report has no result")
	}
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	if r.pool != nil {
		resultJSON, err := json.Marshal(rep.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		query := `
			INSERT INTO creator_reports (id, batch_id, provider, goal, title, total_notes, result, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id)
			DO UPDATE SET
				result = EXCLUDED.result,
				title = EXCLUDED.title,
				total_notes = EXCLUDED.total_notes
		`
		_, err = r.pool.Exec(ctx, query,
			rep.ID, rep.BatchID, rep.Provider, rep.Goal,
			rep.Result.CreatorDNA.Title, rep.Result.HardStats.TotalNotes,
			resultJSON, rep.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save report to db: %w", err)
		}
	}

	if r.fileDir != "" {
		if err := r.mirror(r.reportPath(rep.ID), "report", rep); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the report with the given id, or ErrNotFound.
func (r *ReportRepo) Load(ctx context.Context, id string) (*StoredReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if r.pool != nil {
		query := `
			SELECT id::text, batch_id, provider, goal, result, created_at
			FROM creator_reports
			WHERE id = $1
		`
		var rep StoredReport
		var resultJSON []byte
		err := r.pool.QueryRow(ctx, query, id).Scan(
			&rep.ID, &rep.BatchID, &rep.Provider, &rep.Goal, &resultJSON, &rep.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
		rep.Result = new(report.AnalysisResult)
		if err := json.Unmarshal(resultJSON, rep.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
		}
		return &rep, nil
	}

	var rep StoredReport
	if err := readJSONFile(r.reportPath(id), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns up to limit summaries, newest first.
func (r *ReportRepo) List(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	if r.pool != nil {
		query := `
			SELECT id::text, title, provider, total_notes, created_at
			FROM creator_reports
			ORDER BY created_at DESC
			LIMIT $1
		`
		rows, err := r.pool.Query(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}
		defer rows.Close()

		out := []ReportSummary{}
		for rows.Next() {
			var s ReportSummary
			if err := rows.Scan(&s.ID, &s.Title, &s.Provider, &s.TotalNotes, &s.CreatedAt); err != nil {
				return nil, fmt.Errorf("failed to scan report row: %w", err)
			}
			out = append(out, s)
		}
		return out, rows.Err()
	}

	entries, err := os.ReadDir(filepath.Join(r.fileDir, "reports"))
	if err != nil {
		return nil, fmt.Errorf("failed to read report dir: %w", err)
	}
	out := []ReportSummary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var rep StoredReport
		if err := readJSONFile(filepath.Join(r.fileDir, "reports", e.Name()), &rep); err != nil || rep.Result == nil {
			continue // skip corrupt or partially written entries
		}
		out = append(out, summarize(&rep))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveSheets stores the spreadsheets of one batch, in upload order.
func (r *ReportRepo) SaveSheets(ctx context.Context, batchID string, sheets []BatchSheet) error {
	if len(sheets) == 0 {
		return nil
	}
	if _, err := uuid.Parse(batchID); err != nil {
		return fmt.Errorf("invalid batch id %q", batchID)
	}

	if r.pool != nil {
		batch := &pgx.Batch{}
		for i, s := range sheets {
			sheetJSON, err := json.Marshal(s.Sheet)
			if err != nil {
				return fmt.Errorf("failed to marshal sheet %s: %w", s.File, err)
			}
			batch.Queue(`
				INSERT INTO batch_sheets (batch_id, file_name, position, sheet)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (batch_id, file_name) DO UPDATE SET sheet = EXCLUDED.sheet, position = EXCLUDED.position
			`, batchID, s.File, i, sheetJSON)
		}
		if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save sheets to db: %w", err)
		}
	}

	if r.fileDir != "" {
		if err := r.mirror(r.sheetPath(batchID), "sheets", sheets); err != nil {
			return err
		}
	}
	return nil
}

// LoadSheet returns the sheet uploaded as file in the batch. An empty file
// name selects the first spreadsheet of the batch.
func (r *ReportRepo) LoadSheet(ctx context.Context, batchID, file string) (*BatchSheet, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, ErrNotFound
	}

	if r.pool != nil {
		query := `
			SELECT file_name, sheet
			FROM batch_sheets
			WHERE batch_id = $1 AND ($2 = '' OR file_name = $2)
			ORDER BY position
			LIMIT 1
		`
		var bs BatchSheet
		var sheetJSON []byte
		err := r.pool.QueryRow(ctx, query, batchID, file).Scan(&bs.File, &sheetJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load sheet: %w", err)
		}
		bs.Sheet = new(ingest.Sheet)
		if err := json.Unmarshal(sheetJSON, bs.Sheet); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sheet: %w", err)
		}
		return &bs, nil
	}

	var sheets []BatchSheet
	if err := readJSONFile(r.sheetPath(batchID), &sheets); err != nil {
		return nil, err
	}
	for i := range sheets {
		if file == "" || sheets[i].File == file {
			return &sheets[i], nil
		}
	}
	return nil, ErrNotFound
}

func summarize(rep *StoredReport) ReportSummary {
	return ReportSummary{
		ID:         rep.ID,
		Title:      rep.Result.CreatorDNA.Title,
		Provider:   rep.Provider,
		TotalNotes: rep.Result.HardStats.TotalNotes,
		CreatedAt:  rep.CreatedAt,
	}
}

func (r *ReportRepo) reportPath(id string) string {
	return filepath.Join(r.fileDir, "reports", id+".json")
}

func (r *ReportRepo) sheetPath(batchID string) string {
	return filepath.Join(r.fileDir, "sheets", batchID+".json")
}

// mirror writes v to the file vault. When a pool is set the DB row is the
// record of truth, so a failed file write is logged and not returned.
func (r *ReportRepo) mirror(path, what string, v any) error {
	err := writeJSONFile(path, v)
	if err == nil {
		return nil
	}
	if r.pool != nil {
		r.log.Warn("store: file mirror failed", zap.String("kind", what), zap.String("path", path), zap.Error(err))
		return nil
	}
	return fmt.Errorf("failed to save %s file: %w", what, err)
}

// writeJSONFile writes through a temp file so readers never see half a report.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), ".json")+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("corrupt cache file %s: %w", filepath.Base(path), err)
	}
	return nil
}
