package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadePriority(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		html   string
		text   string
		method Method
	}{
		{
			name:   "article wins",
			html:   `<html><body><main>main text</main><article><p>Article</p><p>body</p></article></body></html>`,
			text:   "Article body",
			method: MethodArticle,
		},
		{
			name:   "main beats larger div",
			html:   `<html><body><div>` + strings.Repeat("filler ", 100) + `</div><main>short main</main></body></html>`,
			text:   "short main",
			method: MethodMain,
		},
		{
			name:   "largest block",
			html:   `<html><body><div>small</div><section>the biggest section here</section><div>mid sized div</div></body></html>`,
			text:   "the biggest section here",
			method: MethodBlock,
		},
		{
			name:   "first block wins tie",
			html:   `<html><body><div>aaaa</div><div>bbbb</div></body></html>`,
			text:   "aaaa",
			method: MethodBlock,
		},
		{
			name:   "whole document",
			html:   `<html><head><title>T</title></head><body><p>just a paragraph</p></body></html>`,
			text:   "just a paragraph",
			method: MethodDocument,
		},
		{
			name:   "empty article falls through",
			html:   `<html><body><article>  <script>var x=1</script> </article><main>fallback</main></body></html>`,
			text:   "fallback",
			method: MethodMain,
		},
		{
			name:   "nothing readable",
			html:   `<html><head><style>p{}</style></head><body><script>alert(1)</script></body></html>`,
			text:   "",
			method: MethodNone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Extract(tc.html, "https://example.com/page", 0)
			require.NoError(t, err)
			assert.Equal(t, tc.text, res.Text)
			assert.Equal(t, tc.method, res.Method)
		})
	}
}

func TestVisibleTextSkipsHiddenElements(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div>Hello<script>bad()</script> <style>.x{}</style><noscript>no</noscript><template>tpl</template><!-- c --><b>world</b>
		<p>again</p></div>`))
	require.NoError(t, err)
	assert.Equal(t, "Hello world again", VisibleText(doc.Find("div")))
}

func TestTruncation(t *testing.T) {
	t.Parallel()
	html := `<article>` + strings.Repeat("é", 6000) + `</article>`
	res, err := Extract(html, "https://example.com", 5000)
	require.NoError(t, err)
	assert.Equal(t, 5000, len([]rune(res.Text)))
}

func TestTitleFallbacks(t *testing.T) {
	t.Parallel()
	res, err := Extract(`<html><head><title>  Page
	Title </title></head><body>x</body></html>`, "https://example.com/a", 0)
	require.NoError(t, err)
	assert.Equal(t, "Page Title", res.Title)

	res, err = Extract(`<html><body>no title at all</body></html>`, "https://example.com/b", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Title)
}
