package landing

import "strings"

// FallbackSlug is used for keywords that contain no usable characters.
const FallbackSlug = "keyword"

// Slugify maps a keyword to a lowercase identifier made of ASCII letters,
// digits and hyphens that is safe as both a file name stem and a URL path
// segment. Runs of whitespace become a single hyphen, every other character
// outside [a-z0-9-] is dropped and consecutive hyphens are collapsed.
// Leading and trailing hyphens are kept. An empty result becomes FallbackSlug.
//
// Slugify is idempotent.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-':
			if !lastHyphen {
				b.WriteByte('-')
			}
			lastHyphen = true
		}
	}

	if b.Len() == 0 {
		return FallbackSlug
	}
	return b.String()
}
