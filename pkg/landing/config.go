package landing

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// PairingWrap reuses photos from the start of the list when there are
	// fewer photos than keywords (photo index = keyword index mod photo count).
	PairingWrap = "wrap"

	// PairingStrict requires exactly one photo per keyword.
	PairingStrict = "strict"
)

// Config holds all configuration options for a generation run.
type Config struct {
	// MainSiteURL is the origin used for canonical links, call-to-action links
	// and sitemap locations.
	MainSiteURL string `json:"main_site_url"`

	// TargetSiteURL is the external site that sponsored links point to.
	TargetSiteURL string `json:"target_site_url"`

	// KeywordListPath is the file with one keyword per line. It is mandatory.
	KeywordListPath string `json:"keyword_list_path"`

	// PhotoListPath is the file with one image URL per line. It is optional;
	// a missing or empty list only produces a warning.
	PhotoListPath string `json:"photo_list_path"`

	// OutputDir is the directory the pages and the sitemap are written to.
	OutputDir string `json:"output_dir"`

	// MaxDescriptionLength caps the visible length of the description, in characters.
	MaxDescriptionLength int `json:"max_description_length"`

	// Pairing selects how keywords are matched with photos, PairingWrap or PairingStrict.
	Pairing string `json:"pairing"`

	// ProductNoun is the product word used in the description and the alt text.
	ProductNoun string `json:"product_noun"`

	// PageTemplate is the name of the template every page is rendered with.
	PageTemplate string `json:"page_template"`

	// PlaceholderImage is used as the image of every page when there are no photos.
	PlaceholderImage string `json:"placeholder_image"`

	// SitemapLastMod adds a <lastmod> element with the run date to every sitemap entry.
	SitemapLastMod bool `json:"sitemap_lastmod"`
}

// DefaultConfig returns a Config with the default values. The site URLs are
// placeholders and are expected to be overridden.
func DefaultConfig() *Config {
	return &Config{
		MainSiteURL:          "https://laptop.com",
		TargetSiteURL:        "https://target.com",
		KeywordListPath:      "brandlist.txt",
		PhotoListPath:        "photolist.txt",
		OutputDir:            "output",
		MaxDescriptionLength: 320,
		Pairing:              PairingWrap,
		ProductNoun:          "laptop",
		PageTemplate:         DefaultPageTemplate,
		PlaceholderImage:     "",
		SitemapLastMod:       false,
	}
}

// Validate checks that the configuration can be used for a run.
func (c *Config) Validate() error {
	if err := validateSiteURL(c.MainSiteURL); err != nil {
		return fmt.Errorf("invalid main_site_url: %w", err)
	}
	if err := validateSiteURL(c.TargetSiteURL); err != nil {
		return fmt.Errorf("invalid target_site_url: %w", err)
	}
	if strings.TrimSpace(c.KeywordListPath) == "" {
		return fmt.Errorf("keyword_list_path must not be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.MaxDescriptionLength <= 0 {
		return fmt.Errorf("max_description_length must be positive, got %d", c.MaxDescriptionLength)
	}
	if c.Pairing != PairingWrap && c.Pairing != PairingStrict {
		return fmt.Errorf("unknown pairing policy %q (expected %q or %q)", c.Pairing, PairingWrap, PairingStrict)
	}
	if c.PageTemplate == "" {
		return fmt.Errorf("page_template must not be empty")
	}
	return nil
}

// validateSiteURL accepts absolute http and https URLs with a host.
func validateSiteURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
