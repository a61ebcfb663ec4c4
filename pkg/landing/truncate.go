package landing

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Ellipsis is appended to text that was shortened by TruncateHTML.
const Ellipsis = "..."

// voidElements never have a closing tag.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// VisibleLength returns the number of characters of text in an HTML fragment,
// ignoring tags and counting each character reference as one character.
func VisibleLength(fragment string) int {
	n := 0
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return n
		}
		if tt == html.TextToken {
			n += utf8.RuneCountInString(string(z.Text()))
		}
	}
}

// TruncateHTML shortens an HTML fragment so that its visible text is at most
// limit characters. When the fragment is longer, the text is cut at a
// character boundary and Ellipsis is appended, with the ellipsis counted
// against the limit. Elements left open by the cut are closed. Fragments that
// already fit are returned unchanged.
func TruncateHTML(fragment string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if VisibleLength(fragment) <= limit {
		return fragment
	}

	suffix := Ellipsis
	budget := limit - utf8.RuneCountInString(suffix)
	if budget < 0 {
		suffix = string([]rune(Ellipsis)[:limit])
		budget = 0
	}

	var out strings.Builder
	var open []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	used := 0
	for used < budget {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			runes := []rune(tok.Data)
			if used+len(runes) > budget {
				runes = runes[:budget-used]
			}
			out.WriteString(html.EscapeString(string(runes)))
			used += len(runes)
		case html.StartTagToken:
			out.WriteString(tok.String())
			if _, void := voidElements[tok.Data]; !void {
				open = append(open, tok.Data)
			}
		case html.EndTagToken:
			out.WriteString(tok.String())
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tok.Data {
					open = open[:i]
					break
				}
			}
		default:
			out.WriteString(tok.String())
		}
	}

	for i := len(open) - 1; i >= 0; i-- {
		out.WriteString("</" + open[i] + ">")
	}
	out.WriteString(suffix)
	return out.String()
}
