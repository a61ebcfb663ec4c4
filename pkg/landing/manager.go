package landing

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPageTemplate is the name of the built-in landing page template.
const DefaultPageTemplate = "landing.tmpl.html"

//go:embed templates/*.tmpl.html
var builtinTemplates embed.FS

// TemplateManager owns the parsed page templates. The built-in templates are
// always loaded; when a template directory is configured, its "*.tmpl.html"
// and "*.part.html" files are parsed on top, so a file named like a built-in
// template replaces it.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	templateDir    string
	mu             sync.RWMutex
}

// NewTemplateManager creates a TemplateManager and performs an initial
// Refresh. templateDir may be empty to use only the built-in templates.
func NewTemplateManager(logger *slog.Logger, templateDir string) (*TemplateManager, error) {
	tm := &TemplateManager{
		logger:      logger,
		templateDir: templateDir,
		funcMap:     makeFuncMap(),
	}

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Debug("Template manager initialized", "template_dir", templateDir)
	return tm, nil
}

// Refresh reparses the built-in templates and, if configured, the templates
// in the template directory.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	parsed, err := template.New("").Funcs(tm.funcMap).ParseFS(builtinTemplates, "templates/*.tmpl.html")
	if err != nil {
		return fmt.Errorf("failed to parse built-in templates: %w", err)
	}

	if tm.templateDir != "" {
		for _, pattern := range []string{"*.tmpl.html", "*.part.html"} {
			filePattern := filepath.Join(tm.templateDir, pattern)
			tm.logger.Debug("Loading template files...", "pattern", filePattern)

			var next *template.Template
			next, err = parsed.ParseGlob(filePattern)
			if err != nil {
				if !strings.Contains(err.Error(), "pattern matches no files") {
					tm.logger.Error("failed to parse template files", "pattern", filePattern, "error", err)
					return err
				}
				tm.logger.Debug("No template files found matching pattern", "pattern", filePattern)
				continue
			}
			parsed = next
		}
	}

	var names []string
	for _, t := range parsed.Templates() {
		// The root template has no name and is never executed directly.
		if strings.HasSuffix(t.Name(), ".tmpl.html") {
			names = append(names, t.Name())
		}
	}

	tm.templates = parsed
	tm.templateNames = names

	// Create a clean clone for string executions after all parsing is complete.
	tm.cleanTemplates, err = tm.templates.Clone()
	if err != nil {
		tm.logger.Error("failed to create a clean clone of templates", "error", err)
		return err
	}

	tm.logger.Debug("Loaded page templates", "count", len(names))
	return nil
}

// Execute renders the template called name with data into w.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// Render renders page with the template called name into w.
func (tm *TemplateManager) Render(w io.Writer, name string, page *PageRecord) error {
	if err := tm.Execute(w, name, page); err != nil {
		return fmt.Errorf("failed to render page %q with template %q: %w", page.Slug, name, err)
	}
	return nil
}

// HasTemplate reports whether a full page template called name is loaded.
func (tm *TemplateManager) HasTemplate(name string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, n := range tm.templateNames {
		if n == name {
			return true
		}
	}
	return false
}

// GetTemplateNames returns the names of the loaded full page templates.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	names := make([]string, len(tm.templateNames))
	copy(names, tm.templateNames)
	return names
}

// ExecuteTemplateString parses and executes a raw template string using the
// manager's function map and partials, leaving the loaded templates untouched.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data any) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	// Clone the clean, unexecuted template set to avoid execution state issues.
	tempSet, err := tm.cleanTemplates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}

	return t.Execute(w, data)
}
