package landing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/CTAG07/funnelgen/pkg/sitemap"
	"github.com/natefinch/atomic"
)

// SitemapFileName is the name of the sitemap written to the output directory.
const SitemapFileName = "sitemap.xml"

// outputFileMode is applied to every written file; atomic writes start out
// with the temp file's private mode.
const outputFileMode = 0644

// Recorder is notified after each page file has been written.
type Recorder interface {
	PageWritten(ctx context.Context, page *PageRecord) error
}

// Result summarizes a run. Pages holds the written pages in keyword order.
// SitemapPath is empty when the sitemap was not written.
type Result struct {
	Keywords    int
	Photos      int
	Pages       []PageRecord
	SitemapPath string
}

// Generator runs the keyword -> page -> sitemap pipeline for one Config.
type Generator struct {
	config   *Config
	tm       *TemplateManager
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// NewGenerator validates config and returns a Generator that renders pages
// with tm. Logging is discarded until SetLogger is called.
func NewGenerator(config *Config, tm *TemplateManager) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !tm.HasTemplate(config.PageTemplate) {
		return nil, fmt.Errorf("page template %q is not loaded (available: %v)", config.PageTemplate, tm.GetTemplateNames())
	}
	return &Generator{
		config: config,
		tm:     tm,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}, nil
}

// SetLogger sets the logger for the Generator.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// SetRecorder registers a Recorder that is told about every written page.
func (g *Generator) SetRecorder(recorder Recorder) {
	g.recorder = recorder
}

// Run loads the inputs, writes one page per keyword and finally the sitemap.
//
// Input errors (ErrMissingInputFile, ErrEmptyInputFile, ErrLengthMismatch)
// are returned before anything is written. The first page that fails to
// write aborts the run with ErrWriteFailure; pages written before it are
// kept, but the sitemap is not written. A cancelled ctx aborts the run the
// same way. The returned Result is non-nil whenever the inputs were loaded.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	keywords, photos, err := LoadInputs(g.config, g.logger)
	if err != nil {
		return nil, err
	}
	result := &Result{Keywords: len(keywords), Photos: len(photos)}

	if err = os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("%w: failed to create output directory %s: %v", ErrWriteFailure, g.config.OutputDir, err)
	}

	sm := sitemap.NewBuilder()
	if g.config.SitemapLastMod {
		sm.SetLastMod(g.now().Format("2006-01-02"))
	}

	seen := make(map[string]int, len(keywords))
	var buf bytes.Buffer
	for i, keyword := range keywords {
		if err = ctx.Err(); err != nil {
			return result, fmt.Errorf("generation stopped after %d pages: %w", len(result.Pages), err)
		}

		page := g.pageFor(i, keyword, photos)

		if prev, ok := seen[page.Slug]; ok {
			g.logger.Debug("Slug already generated, overwriting", "slug", page.Slug, "previous_line", prev+1, "line", i+1)
		}
		seen[page.Slug] = i

		if err = g.writePage(&buf, &page); err != nil {
			return result, err
		}
		result.Pages = append(result.Pages, page)
		sm.Add(page.PageURL)
		g.logger.Info("Generated page", "file", page.FilePath, "keyword", keyword)

		if g.recorder != nil {
			if err = g.recorder.PageWritten(ctx, &page); err != nil {
				g.logger.Error("Failed to record page", "slug", page.Slug, "error", err)
			}
		}
	}

	if sm.Len() > sitemap.MaxURLs {
		g.logger.Warn("Sitemap exceeds the protocol limit of URLs per file", "urls", sm.Len(), "limit", sitemap.MaxURLs)
	}

	doc, err := sm.Marshal()
	if err != nil {
		return result, err
	}
	sitemapPath := filepath.Join(g.config.OutputDir, SitemapFileName)
	if err = writeFile(sitemapPath, doc); err != nil {
		return result, err
	}
	result.SitemapPath = sitemapPath
	g.logger.Info("Sitemap generated", "file", sitemapPath, "urls", sm.Len())

	return result, nil
}

// Preview renders the template source content against the page of the first
// keyword and writes the result to w. Nothing is written to the output
// directory.
func (g *Generator) Preview(w io.Writer, content string) error {
	keywords, photos, err := LoadInputs(g.config, g.logger)
	if err != nil {
		return err
	}
	page := g.pageFor(0, keywords[0], photos)
	if err = g.tm.ExecuteTemplateString(w, content, &page); err != nil {
		return fmt.Errorf("failed to render preview for %q: %w", page.Slug, err)
	}
	return nil
}

// pageFor builds the record of the keyword at position i with its paired photo.
func (g *Generator) pageFor(i int, keyword string, photos []string) PageRecord {
	photoIndex := PhotoIndex(i, len(photos), g.config.Pairing)
	photo := ""
	if photoIndex >= 0 {
		photo = photos[photoIndex]
	}
	return NewPageRecord(g.config, i, keyword, photo, photoIndex)
}

// writePage renders page into buf and writes it to page.FilePath.
func (g *Generator) writePage(buf *bytes.Buffer, page *PageRecord) error {
	buf.Reset()
	if err := g.tm.Render(buf, g.config.PageTemplate, page); err != nil {
		return err
	}
	return writeFile(page.FilePath, buf.Bytes())
}

// writeFile replaces the file at path with data in a single atomic step.
func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	if err := os.Chmod(path, outputFileMode); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailure, path, err)
	}
	return nil
}
