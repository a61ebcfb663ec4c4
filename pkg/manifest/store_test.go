package manifest

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestStore creates a file-backed SQLite database in a temp dir and a
// Store on top of it. It uses t.Cleanup to release resources.
func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "manifest.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)
	return db, s
}

// fixedClock makes the store's clock return t0, t0+1s, t0+2s, ...
func fixedClock(s *Store, t0 time.Time) {
	var n int
	s.now = func() time.Time {
		n++
		return t0.Add(time.Duration(n-1) * time.Second)
	}
}

func TestSetupSchema_Idempotent(t *testing.T) {
	db, _ := setupTestStore(t)
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}
}

func TestStore_RunLifecycle(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	fixedClock(s, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))

	run, err := s.BeginRun(ctx, "https://laptop.com", "output")
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID, err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Status != StatusRunning || !got.FinishedAt.IsZero() {
		t.Errorf("new run should be running and unfinished, got %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at mismatch: %v vs %v", got.StartedAt, run.StartedAt)
	}

	pages := []Page{
		{Index: 0, Keyword: "Dell XPS 13!", Slug: "dell-xps-13", PhotoIndex: 0, URL: "https://laptop.com/dell-xps-13", FilePath: "output/dell-xps-13.html"},
		{Index: 1, Keyword: "HP Envy", Slug: "hp-envy", PhotoIndex: -1, URL: "https://laptop.com/hp-envy", FilePath: "output/hp-envy.html"},
	}
	for _, p := range pages {
		if err := s.RecordPage(ctx, run.ID, p); err != nil {
			t.Fatalf("RecordPage(%d) failed: %v", p.Index, err)
		}
	}

	if err := s.FinishRun(ctx, run.ID, Summary{Keywords: 2, Photos: 1}); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	got, err = s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Status != StatusCompleted || got.Error != "" {
		t.Errorf("expected completed run without error, got status %q error %q", got.Status, got.Error)
	}
	if got.Keywords != 2 || got.Photos != 1 || got.Pages != 2 {
		t.Errorf("unexpected counts: keywords %d photos %d pages %d", got.Keywords, got.Photos, got.Pages)
	}
	if !got.FinishedAt.After(got.StartedAt) {
		t.Errorf("finished_at %v should be after started_at %v", got.FinishedAt, got.StartedAt)
	}

	stored, err := s.ListPages(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListPages() failed: %v", err)
	}
	if len(stored) != len(pages) {
		t.Fatalf("expected %d pages, got %d", len(pages), len(stored))
	}
	for i, p := range stored {
		if p.RunID != run.ID || p.Slug != pages[i].Slug || p.PhotoIndex != pages[i].PhotoIndex || p.URL != pages[i].URL {
			t.Errorf("page %d mismatch: got %+v", i, p)
		}
		if p.WrittenAt.IsZero() {
			t.Errorf("page %d has no written_at", i)
		}
	}
}

func TestStore_FinishRunFailed(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, "https://laptop.com", "output")
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	if err := s.FinishRun(ctx, run.ID, Summary{Keywords: 3, Err: errors.New("write failed: output/dell.html")}); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Status != StatusFailed || got.Error != "write failed: output/dell.html" {
		t.Errorf("expected failed run with error text, got status %q error %q", got.Status, got.Error)
	}
}

func TestStore_UnknownRun(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	missing := uuid.NewString()

	if _, err := s.GetRun(ctx, missing); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun: expected ErrRunNotFound, got %v", err)
	}
	if err := s.FinishRun(ctx, missing, Summary{}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun: expected ErrRunNotFound, got %v", err)
	}
	if err := s.RecordPage(ctx, missing, Page{Slug: "dell"}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RecordPage: expected ErrRunNotFound, got %v", err)
	}
	pages, err := s.ListPages(ctx, missing)
	if err != nil || len(pages) != 0 {
		t.Errorf("ListPages: expected no pages and no error, got %v, %v", pages, err)
	}
}

func TestStore_RecordPageDuplicateIndex(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, "https://laptop.com", "output")
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	page := Page{Index: 0, Keyword: "Dell", Slug: "dell"}
	if err := s.RecordPage(ctx, run.ID, page); err != nil {
		t.Fatalf("RecordPage() failed: %v", err)
	}
	if err := s.RecordPage(ctx, run.ID, page); err == nil {
		t.Fatal("expected an error recording the same index twice")
	}

	// The failed insert must not have bumped the page count.
	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Pages != 1 {
		t.Errorf("expected page count 1 after a rolled back insert, got %d", got.Pages)
	}
}

func TestStore_ListRuns(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	fixedClock(s, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.BeginRun(ctx, "https://laptop.com", "output")
		if err != nil {
			t.Fatalf("BeginRun() failed: %v", err)
		}
		ids = append(ids, run.ID)
	}

	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{"all, newest first", 10, []string{ids[2], ids[1], ids[0]}},
		{"limited", 2, []string{ids[2], ids[1]}},
		{"zero", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.limit)
			if err != nil {
				t.Fatalf("ListRuns() failed: %v", err)
			}
			if len(runs) != len(tt.expected) {
				t.Fatalf("expected %d runs, got %d", len(tt.expected), len(runs))
			}
			for i, run := range runs {
				if run.ID != tt.expected[i] {
					t.Errorf("run %d: expected %s, got %s", i, tt.expected[i], run.ID)
				}
			}
		})
	}
}
