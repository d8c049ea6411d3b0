package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

var urlPattern = xurls.Strict()

// Linkify wraps bare URLs found in text nodes with anchors. Text inside a,
// code and pre elements is left alone. Input is expected to be sanitized HTML.
func Linkify(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	b.Grow(len(src))
	// open counts per skipped tag; a stray end tag of one kind must not
	// close another.
	open := map[string]int{}
	inside := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or a truncated tail the tokenizer could not finish.
			if raw := z.Raw(); len(raw) > 0 {
				b.Write(raw)
			}
			return b.String()
		}
		raw := bytes.Clone(z.Raw())
		switch tt {
		case html.TextToken:
			if inside > 0 {
				b.Write(raw)
				continue
			}
			b.WriteString(linkText(string(z.Text())))
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipped(name) {
				open[string(name)]++
				inside++
			}
			b.Write(raw)
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipped(name) && open[string(name)] > 0 {
				open[string(name)]--
				inside--
			}
			b.Write(raw)
		default:
			b.Write(raw)
		}
	}
}

func skipped(tag []byte) bool {
	switch string(tag) {
	case "a", "code", "pre":
		return true
	}
	return false
}

// linkText escapes text and turns every allowed URL in it into a link.
func linkText(text string) string {
	locs := urlPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return html.EscapeString(text)
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		u := text[loc[0]:loc[1]]
		if !allowedScheme(u) {
			continue
		}
		b.WriteString(html.EscapeString(text[prev:loc[0]]))
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(u))
		b.WriteString(`" rel="nofollow">`)
		b.WriteString(html.EscapeString(u))
		b.WriteString(`</a>`)
		prev = loc[1]
	}
	b.WriteString(html.EscapeString(text[prev:]))
	return b.String()
}

func allowedScheme(u string) bool {
	i := strings.IndexByte(u, ':')
	if i <= 0 {
		return false
	}
	scheme := strings.ToLower(u[:i])
	for _, s := range AllowedSchemes {
		if scheme == s {
			return true
		}
	}
	return false
}
