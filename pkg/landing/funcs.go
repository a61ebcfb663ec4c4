package landing

import (
	"html/template"
	"net/url"
	"strings"
	"time"
)

func makeFuncMap() template.FuncMap {
	return template.FuncMap{
		"slugify":      Slugify,
		"truncateHTML": truncateHTML,
		"pathEscape":   url.PathEscape,
		"upper":        strings.ToUpper,
		"lower":        strings.ToLower,
		"add":          add,
		"inc":          inc,
		"mod":          mod,
		"year":         year,
	}
}

// truncateHTML is TruncateHTML for trusted fragments inside templates.
func truncateHTML(fragment template.HTML, limit int) template.HTML {
	return template.HTML(TruncateHTML(string(fragment), limit))
}

// add returns a + b.
func add(a, b int) int {
	return a + b
}

// inc returns i + 1.
func inc(i int) int {
	return i + 1
}

// mod returns a % b. Returns 0 if b is 0.
func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	return a % b
}

// year returns the current year, for copyright lines.
func year() int {
	return time.Now().Year()
}
