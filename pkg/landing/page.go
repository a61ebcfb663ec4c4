package landing

import (
	"fmt"
	"html"
	"html/template"
	"path/filepath"

	"github.com/CTAG07/funnelgen/pkg/sitemap"
)

// PageRecord holds everything needed to render and write one landing page.
// Title and Description are trusted HTML fragments with the keyword already
// escaped; every other field is escaped by html/template where it is used.
type PageRecord struct {
	Index       int
	Keyword     string
	Slug        string
	Title       template.HTML
	Description template.HTML
	Image       template.URL
	PhotoIndex  int
	AltText     string
	MainURL     string
	PageURL     string
	FilePath    string
}

// NewPageRecord builds the record for the keyword at position index, paired
// with photo (the photo at photoIndex, or -1 if none).
func NewPageRecord(config *Config, index int, keyword, photo string, photoIndex int) PageRecord {
	safeKeyword := html.EscapeString(keyword)
	safeTarget := html.EscapeString(config.TargetSiteURL)
	slug := Slugify(keyword)

	title := fmt.Sprintf(`Buy NOW <a href="#" rel="nofollow">%s</a> with special price this month`, safeKeyword)
	description := fmt.Sprintf(
		`With <a href="%[1]s" rel="sponsored">%[2]s</a> you can purchase with special price `+
			`and this good offers only valid for this month. `+
			`Grab your <a href="%[1]s" rel="sponsored">%[2]s</a> %[3]s now!`,
		safeTarget, safeKeyword, html.EscapeString(config.ProductNoun))

	if photoIndex < 0 {
		photo = config.PlaceholderImage
	}

	return PageRecord{
		Index:       index,
		Keyword:     keyword,
		Slug:        slug,
		Title:       template.HTML(title),
		Description: template.HTML(TruncateHTML(description, config.MaxDescriptionLength)),
		Image:       template.URL(photo),
		PhotoIndex:  photoIndex,
		AltText:     keyword + " " + config.ProductNoun + " special offer",
		MainURL:     config.MainSiteURL,
		PageURL:     sitemap.Location(config.MainSiteURL, slug),
		FilePath:    filepath.Join(config.OutputDir, slug+".html"),
	}
}
