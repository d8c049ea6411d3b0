package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_Basics(t *testing.T) {
	out := Markdown("# Title\n\nSome *text* and **bold**.")
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>text</em>")
	assert.Contains(t, out, "<strong>bold</strong>")

	out = Markdown("- one\n- two\n\n1. first\n2. second")
	assert.Contains(t, out, "<ul>")
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, "<li>one</li>")

	out = Markdown("> quoted")
	assert.Contains(t, out, "<blockquote>")
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", Markdown(""))
}

func TestMarkdown_StripsScripts(t *testing.T) {
	out := Markdown("Hi <script>alert(1)</script> there")
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "Hi")
	assert.Contains(t, out, "there")

	out = Markdown("<script>\nalert(1)\n</script>")
	assert.NotContains(t, out, "<script")
}

func TestMarkdown_DisallowedSchemes(t *testing.T) {
	out := Markdown("[click](javascript:alert(1))")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "click")

	out = Markdown(`<a href="data:text/html;base64,PHNjcmlwdD4=">x</a>`)
	assert.NotContains(t, out, "data:")
}

func TestMarkdown_AllowedLink(t *testing.T) {
	out := Markdown(`[site](https://example.com "Example")`)
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `title="Example"`)
	assert.Equal(t, 1, strings.Count(out, "<a "))
}

func TestMarkdown_StripsAttributesAndElements(t *testing.T) {
	out := Markdown(`<p class="x" onclick="steal()">hi</p>`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "class")
	assert.Contains(t, out, "hi")

	out = Markdown("![alt](https://example.com/y.png)")
	assert.NotContains(t, out, "<img")

	out = Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.NotContains(t, out, "<table")
	assert.NotContains(t, out, "<td")
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "2")
}

func TestMarkdown_FencedCode(t *testing.T) {
	out := Markdown("```go\nfmt.Println(\"https://example.com\")\n```")
	assert.Contains(t, out, "<pre><code>")
	assert.NotContains(t, out, "<a ")
	assert.NotContains(t, out, "language-go")
}

func TestMarkdown_Linkify(t *testing.T) {
	out := Markdown("See https://example.com/docs today")
	assert.Contains(t, out, `<a href="https://example.com/docs" rel="nofollow">https://example.com/docs</a>`)

	out = Markdown("inline `https://example.com` code")
	assert.NotContains(t, out, "<a ")

	out = Markdown("[https://example.com](https://example.com)")
	assert.Equal(t, 1, strings.Count(out, "<a "))

	out = Markdown("fetch ftp://example.com/file")
	assert.NotContains(t, out, "<a ")
}

func TestMarkdown_Malformed(t *testing.T) {
	in := "<<<>>> **unclosed <div <p <a href=\"https://x.example"
	require.NotPanics(t, func() { Markdown(in) })
	out := Markdown(in)
	assert.NotContains(t, out, "<div")
}

func TestMarkdown_Deterministic(t *testing.T) {
	in := "# Doc\n\nVisit https://example.com and `code`.\n\n```\npre\n```"
	want := Markdown(in)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Markdown(in))
		}()
	}
	wg.Wait()
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "x", Sanitize("<div><b>x</b></div>"))
	assert.Equal(t, "<p>ok</p>", Sanitize(`<p style="color:red">ok</p>`))
	assert.Equal(t, "<h4>h</h4>", Sanitize("<h4>h</h4>"))
	assert.Equal(t, "h", Sanitize("<h5>h</h5>"))
	assert.NotContains(t, Sanitize(`<a href="/relative">r</a>`), "href")
	assert.Contains(t, Sanitize(`<a href="mailto:me@example.com">m</a>`), `href="mailto:me@example.com"`)
}

func TestLinkify(t *testing.T) {
	assert.Equal(t,
		`<p>go to <a href="https://example.com/path?q=1" rel="nofollow">https://example.com/path?q=1</a></p>`,
		Linkify(`<p>go to https://example.com/path?q=1</p>`))

	assert.Contains(t, Linkify("<p>mail mailto:me@example.com</p>"), `href="mailto:me@example.com"`)

	in := `<pre>https://example.com</pre><a href="https://a.example.com">https://b.example.com</a>`
	assert.Equal(t, in, Linkify(in))

	assert.Equal(t, "<p>a &amp; b</p>", Linkify("<p>a &amp; b</p>"))

	// a stray end tag of another kind does not end the code region
	in = `<code>a</a> https://inside.example</code>`
	assert.Equal(t, in, Linkify(in))
	assert.NotContains(t, Markdown("<code>a</a> https://inside.example</code>"), "<a ")
	assert.Contains(t,
		Linkify(`<pre>x</code> y</pre> https://after.example`),
		`<a href="https://after.example" rel="nofollow">`)
	assert.Equal(t, "", Linkify(""))
}

func TestParse(t *testing.T) {
	out := Parse("```python\nprint(1)\n```")
	assert.Contains(t, out, `class="language-python"`)

	out = Parse("<b>raw</b>")
	assert.Contains(t, out, "<b>raw</b>")
}
