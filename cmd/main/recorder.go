package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/CTAG07/funnelgen/pkg/landing"
	"github.com/CTAG07/funnelgen/pkg/manifest"
)

// manifestRecorder records each page the generator writes under one run.
type manifestRecorder struct {
	store *manifest.Store
	runID string
}

func (r *manifestRecorder) PageWritten(ctx context.Context, page *landing.PageRecord) error {
	return r.store.RecordPage(ctx, r.runID, manifest.Page{
		Index:      page.Index,
		Keyword:    page.Keyword,
		Slug:       page.Slug,
		PhotoIndex: page.PhotoIndex,
		URL:        page.PageURL,
		FilePath:   page.FilePath,
	})
}

// openManifest opens the manifest database and prepares a store on it.
// The caller closes both.
func openManifest(dataSource string) (*sql.DB, *manifest.Store, error) {
	db, err := initDB(dataSource)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open manifest database: %w", err)
	}
	if err = manifest.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup manifest schema: %w", err)
	}
	store, err := manifest.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare manifest store: %w", err)
	}
	return db, store, nil
}

// printHistory writes the limit most recent runs as a table.
func printHistory(ctx context.Context, w io.Writer, store *manifest.Store, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tKEYWORDS\tPHOTOS\tPAGES\tOUTPUT\tERROR")
	for _, run := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Status,
			run.Keywords, run.Photos, run.Pages, run.OutputDir, run.Error)
	}
	return tw.Flush()
}

// printRun writes one run and the pages it recorded.
func printRun(ctx context.Context, w io.Writer, store *manifest.Store, runID string) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	pages, err := store.ListPages(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list pages of run %s: %w", runID, err)
	}

	finished := "-"
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Format(time.RFC3339)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Run:\t%s\n", run.ID)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", run.Status)
	_, _ = fmt.Fprintf(tw, "Started:\t%s\n", run.StartedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(tw, "Finished:\t%s\n", finished)
	_, _ = fmt.Fprintf(tw, "Site:\t%s\n", run.MainSiteURL)
	_, _ = fmt.Fprintf(tw, "Output:\t%s\n", run.OutputDir)
	_, _ = fmt.Fprintf(tw, "Counts:\t%d keywords, %d photos, %d pages\n", run.Keywords, run.Photos, run.Pages)
	if run.Error != "" {
		_, _ = fmt.Fprintf(tw, "Error:\t%s\n", run.Error)
	}
	if err = tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\n#\tKEYWORD\tSLUG\tPHOTO\tURL")
	for _, p := range pages {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.Index+1, p.Keyword, p.Slug, p.PhotoIndex, p.URL)
	}
	return tw.Flush()
}
