package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Run is one generation run. FinishedAt is zero while the run is in progress.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	MainSiteURL string
	OutputDir   string
	Keywords    int // keyword lines loaded
	Photos      int // photo lines loaded
	Pages       int // pages recorded so far
	Status      string
	Error       string
}

// Page is one page file written by a run.
type Page struct {
	RunID      string
	Index      int
	Keyword    string
	Slug       string
	PhotoIndex int
	URL        string
	FilePath   string
	WrittenAt  time.Time
}

// Summary is the outcome of a run as reported to FinishRun.
type Summary struct {
	Keywords int
	Photos   int
	Err      error
}

// BeginRun inserts a new run in the running state and returns it.
func (s *Store) BeginRun(ctx context.Context, mainSiteURL, outputDir string) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		StartedAt:   s.now().UTC().Truncate(time.Millisecond),
		MainSiteURL: mainSiteURL,
		OutputDir:   outputDir,
		Status:      StatusRunning,
	}
	if _, err := s.stmtInsertRun.ExecContext(ctx, run.ID, run.StartedAt.UnixMilli(), mainSiteURL, outputDir, run.Status); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	s.logger.Debug("Run started", slog.String("run_id", run.ID))
	return run, nil
}

// RecordPage stores page under runID and bumps the run's page count. Both
// happen in one transaction.
func (s *Store) RecordPage(ctx context.Context, runID string, page Page) error {
	if page.WrittenAt.IsZero() {
		page.WrittenAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	res, err := tx.StmtContext(ctx, s.stmtCountPage).ExecContext(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if _, err = tx.StmtContext(ctx, s.stmtInsertPage).ExecContext(ctx,
		runID, page.Index, page.Keyword, page.Slug, page.PhotoIndex, page.URL, page.FilePath, page.WrittenAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("failed to insert page %d of run %s: %w", page.Index, runID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// FinishRun marks runID as completed, or as failed when summary.Err is set.
func (s *Store) FinishRun(ctx context.Context, runID string, summary Summary) error {
	status, errText := StatusCompleted, ""
	if summary.Err != nil {
		status, errText = StatusFailed, summary.Err.Error()
	}

	res, err := s.stmtFinishRun.ExecContext(ctx, s.now().UnixMilli(), summary.Keywords, summary.Photos, status, errText, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	s.logger.Debug("Run finished", slog.String("run_id", runID), slog.String("status", status))
	return nil
}

// GetRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run, err := scanRun(s.stmtGetRun.QueryRowContext(ctx, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.stmtListRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListPages returns the pages recorded for runID in keyword order.
func (s *Store) ListPages(ctx context.Context, runID string) ([]Page, error) {
	rows, err := s.stmtListPages.QueryContext(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var pages []Page
	for rows.Next() {
		var page Page
		var writtenAt int64
		if err = rows.Scan(&page.RunID, &page.Index, &page.Keyword, &page.Slug, &page.PhotoIndex, &page.URL, &page.FilePath, &writtenAt); err != nil {
			return nil, err
		}
		page.WrittenAt = time.UnixMilli(writtenAt).UTC()
		pages = append(pages, page)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt int64
	var finishedAt sql.NullInt64
	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.MainSiteURL, &run.OutputDir,
		&run.Keywords, &run.Photos, &run.Pages, &run.Status, &run.Error); err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		run.FinishedAt = time.UnixMilli(finishedAt.Int64).UTC()
	}
	return &run, nil
}
