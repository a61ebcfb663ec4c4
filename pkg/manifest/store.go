package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// StatusRunning marks a run that has begun and not yet finished.
	StatusRunning = "running"
	// StatusCompleted marks a run that wrote every page and the sitemap.
	StatusCompleted = "completed"
	// StatusFailed marks a run that stopped early.
	StatusFailed = "failed"
)

// ErrRunNotFound is returned when a run ID is not in the manifest.
var ErrRunNotFound = errors.New("run not found")

// SetupSchema creates the manifest tables. It is idempotent and safe to call
// on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS manifest_runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER,
    main_site_url TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    keywords INTEGER NOT NULL DEFAULT 0,
    photos INTEGER NOT NULL DEFAULT 0,
    pages INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT ''
);
`
		schemaPages = `
CREATE TABLE IF NOT EXISTS manifest_pages (
    run_id TEXT NOT NULL,
    page_index INTEGER NOT NULL,
    keyword TEXT NOT NULL,
    slug TEXT NOT NULL,
    photo_index INTEGER NOT NULL,
    url TEXT NOT NULL,
    file_path TEXT NOT NULL,
    written_at INTEGER NOT NULL,
    PRIMARY KEY (run_id, page_index)
);
`
		indexPagesSlug = `CREATE INDEX IF NOT EXISTS idx_manifest_pages_slug ON manifest_pages (slug);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}

	if _, err = tx.Exec(schemaPages); err != nil {
		return fmt.Errorf("could not create pages schema: %w", err)
	}

	if _, err = tx.Exec(indexPagesSlug); err != nil {
		return fmt.Errorf("could not create pages index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store records runs and pages. It holds prepared statements for every
// query it issues; call Close when done.
type Store struct {
	db             *sql.DB
	stmtInsertRun  *sql.Stmt
	stmtFinishRun  *sql.Stmt
	stmtGetRun     *sql.Stmt
	stmtListRuns   *sql.Stmt
	stmtInsertPage *sql.Stmt
	stmtCountPage  *sql.Stmt
	stmtListPages  *sql.Stmt
	logger         *slog.Logger
	now            func() time.Time
}

// NewStore prepares the manifest statements against db. SetupSchema must
// have been called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsertRun, err := db.Prepare(`INSERT INTO manifest_runs (run_id, started_at, main_site_url, output_dir, status) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtFinishRun, err := db.Prepare(`UPDATE manifest_runs SET finished_at = ?, keywords = ?, photos = ?, status = ?, error = ? WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetRun, err := db.Prepare(`SELECT run_id, started_at, finished_at, main_site_url, output_dir, keywords, photos, pages, status, error FROM manifest_runs WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtListRuns, err := db.Prepare(`SELECT run_id, started_at, finished_at, main_site_url, output_dir, keywords, photos, pages, status, error FROM manifest_runs ORDER BY started_at DESC, rowid DESC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertPage, err := db.Prepare(`INSERT INTO manifest_pages (run_id, page_index, keyword, slug, photo_index, url, file_path, written_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtCountPage, err := db.Prepare(`UPDATE manifest_runs SET pages = pages + 1 WHERE run_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtListPages, err := db.Prepare(`SELECT run_id, page_index, keyword, slug, photo_index, url, file_path, written_at FROM manifest_pages WHERE run_id = ? ORDER BY page_index;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		stmtInsertRun:  stmtInsertRun,
		stmtFinishRun:  stmtFinishRun,
		stmtGetRun:     stmtGetRun,
		stmtListRuns:   stmtListRuns,
		stmtInsertPage: stmtInsertPage,
		stmtCountPage:  stmtCountPage,
		stmtListPages:  stmtListPages,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
	}, nil
}

// Close releases the prepared statements. It does not close the database.
func (s *Store) Close() {
	_ = s.stmtInsertRun.Close()
	_ = s.stmtFinishRun.Close()
	_ = s.stmtGetRun.Close()
	_ = s.stmtListRuns.Close()
	_ = s.stmtInsertPage.Close()
	_ = s.stmtCountPage.Close()
	_ = s.stmtListPages.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}
