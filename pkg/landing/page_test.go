package landing

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNewPageRecord(t *testing.T) {
	config := DefaultConfig()
	page := NewPageRecord(config, 4, "Dell XPS 13!", "https://img.example.com/1.jpg", 1)

	if page.Index != 4 || page.PhotoIndex != 1 {
		t.Errorf("unexpected positions: index %d, photo index %d", page.Index, page.PhotoIndex)
	}
	if page.Slug != "dell-xps-13" {
		t.Errorf("expected slug 'dell-xps-13', got '%s'", page.Slug)
	}
	if page.FilePath != filepath.Join("output", "dell-xps-13.html") {
		t.Errorf("unexpected file path '%s'", page.FilePath)
	}
	if page.PageURL != "https://laptop.com/dell-xps-13" {
		t.Errorf("unexpected page URL '%s'", page.PageURL)
	}
	expectedTitle := `Buy NOW <a href="#" rel="nofollow">Dell XPS 13!</a> with special price this month`
	if string(page.Title) != expectedTitle {
		t.Errorf("title mismatch:\n got: %s\nwant: %s", page.Title, expectedTitle)
	}
	if got := strings.Count(string(page.Description), `<a href="https://target.com" rel="sponsored">Dell XPS 13!</a>`); got != 2 {
		t.Errorf("expected the keyword linked twice in the description, found %d: %s", got, page.Description)
	}
	if !strings.HasSuffix(string(page.Description), " laptop now!") {
		t.Errorf("description should end with the product noun: %s", page.Description)
	}
	if page.AltText != "Dell XPS 13! laptop special offer" {
		t.Errorf("unexpected alt text '%s'", page.AltText)
	}
	if string(page.Image) != "https://img.example.com/1.jpg" {
		t.Errorf("unexpected image '%s'", page.Image)
	}
}

func TestNewPageRecord_EscapesKeyword(t *testing.T) {
	page := NewPageRecord(DefaultConfig(), 0, `AT&T <Pro> "x" 'y'`, "", -1)
	escaped := `AT&amp;T &lt;Pro&gt; &#34;x&#34; &#39;y&#39;`

	if !strings.Contains(string(page.Title), escaped) {
		t.Errorf("title does not contain the escaped keyword: %s", page.Title)
	}
	if strings.Count(string(page.Description), escaped) != 2 {
		t.Errorf("description does not contain the escaped keyword twice: %s", page.Description)
	}
	if strings.Contains(string(page.Title), "<Pro>") {
		t.Errorf("raw markup leaked into the title: %s", page.Title)
	}
}

func TestNewPageRecord_Placeholder(t *testing.T) {
	config := DefaultConfig()
	config.PlaceholderImage = "https://img.example.com/none.png"

	page := NewPageRecord(config, 0, "Dell", "", -1)
	if string(page.Image) != config.PlaceholderImage {
		t.Errorf("expected placeholder image, got '%s'", page.Image)
	}
}

func TestNewPageRecord_ProductNoun(t *testing.T) {
	config := DefaultConfig()
	config.ProductNoun = "phone"

	page := NewPageRecord(config, 0, "Pixel", "", -1)
	if page.AltText != "Pixel phone special offer" {
		t.Errorf("unexpected alt text '%s'", page.AltText)
	}
	if !strings.Contains(string(page.Description), "</a> phone now!") {
		t.Errorf("description does not use the product noun: %s", page.Description)
	}
}

func TestRender_DefaultTemplate(t *testing.T) {
	tm := setupTestManager(t, "")
	page := NewPageRecord(DefaultConfig(), 0, "AT&T Pro", "https://img.example.com/1.jpg?w=300&h=200", 0)

	var buf bytes.Buffer
	if err := tm.Render(&buf, DefaultPageTemplate, &page); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("failed to parse rendered page: %v", err)
	}

	title := doc.Find("title").Text()
	if !strings.HasPrefix(title, "Buy NOW ") || !strings.Contains(title, "AT&T Pro") || !strings.HasSuffix(title, " with special price this month") {
		t.Errorf("unexpected <title>: %q", title)
	}
	if got, _ := doc.Find(`meta[name="description"]`).Attr("content"); !strings.HasPrefix(got, "With AT&T Pro you can purchase") {
		t.Errorf("unexpected meta description: %q", got)
	}
	if got, _ := doc.Find(`link[rel="canonical"]`).Attr("href"); got != "https://laptop.com/att-pro" {
		t.Errorf("unexpected canonical link: %q", got)
	}
	if got := doc.Find("h1 a[rel=nofollow]").Text(); got != "AT&T Pro" {
		t.Errorf("unexpected heading link text: %q", got)
	}

	sponsored := doc.Find(`p a[rel="sponsored"]`)
	if sponsored.Length() != 2 {
		t.Fatalf("expected 2 sponsored links, got %d", sponsored.Length())
	}
	sponsored.Each(func(i int, s *goquery.Selection) {
		if href, _ := s.Attr("href"); href != "https://target.com" {
			t.Errorf("sponsored link %d points to %q", i, href)
		}
	})

	cta := doc.Find("a.cta")
	if href, _ := cta.Attr("href"); href != "https://laptop.com/att-pro" {
		t.Errorf("unexpected call-to-action link: %q", href)
	}
	if cta.Text() != "Buy AT&T Pro Now" {
		t.Errorf("unexpected call-to-action text: %q", cta.Text())
	}

	img := doc.Find("aside img")
	if src, _ := img.Attr("src"); src != "https://img.example.com/1.jpg?w=300&h=200" {
		t.Errorf("unexpected image src: %q", src)
	}
	if alt, _ := img.Attr("alt"); alt != "AT&T Pro laptop special offer" {
		t.Errorf("unexpected image alt: %q", alt)
	}
}
