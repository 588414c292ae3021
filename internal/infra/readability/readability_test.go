package readability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenArticle(t *testing.T) {
	got := Flatten("<article><h1>Title</h1><p>Body text.</p></article>")
	assert.Equal(t, "Title\n\nBody text.", got)
}

func TestFlattenNormalizesWhitespace(t *testing.T) {
	got := Flatten("<p>  a \n\t b   c </p><p>d</p>")
	assert.Equal(t, "a b c\n\nd", got)
}

func TestFlattenWithoutBlockElements(t *testing.T) {
	got := Flatten("<div>plain  text</div>")
	assert.Equal(t, "plain text", got)
}

func TestFlattenDropsScriptsAndStyles(t *testing.T) {
	got := Flatten(`<p>visible</p><script>var hidden = 1;</script><style>p{color:red}</style>`)
	assert.Equal(t, "visible", got)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Equal(t, "", Flatten(""))
	assert.Equal(t, "", Flatten("<html><body></body></html>"))
}

func TestParseArticle(t *testing.T) {
	html := `<html><head><title>Title</title></head><body>` +
		`<article><h1>Title</h1><p>Body text.</p></article></body></html>`

	article, err := Parse(html, "https://example.com/article")
	require.NoError(t, err)
	assert.Equal(t, "Title", article.Title)
	assert.Equal(t, "Title\n\nBody text.", article.TextContent)
	assert.Equal(t, "https://example.com/article", article.Url)
	assert.NotEmpty(t, article.Content)
}

func TestParseTitleFromHeading(t *testing.T) {
	// 没有<title>时退回首个h1
	html := `<html><body><article><h1>Heading Only</h1><p>Some body.</p></article></body></html>`

	article, err := Parse(html, "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "Heading Only", article.Title)
	assert.Equal(t, "Heading Only\n\nSome body.", article.TextContent)
}

func TestParseTitleNotDuplicated(t *testing.T) {
	html := `<html><head><title>Same</title></head><body><h1>Same</h1><p>Body.</p></body></html>`

	article, err := Parse(html, "https://example.com/y")
	require.NoError(t, err)
	assert.Equal(t, "Same\n\nBody.", article.TextContent)
}

func TestParseNoContent(t *testing.T) {
	_, err := Parse("<html><body></body></html>", "https://example.com/empty")
	require.ErrorIs(t, err, ErrNoContent)
}

func TestParseBadPageURL(t *testing.T) {
	// URL解析失败不阻断提取
	article, err := Parse("<article><h1>T</h1><p>B.</p></article>", "::not-a-url::")
	require.NoError(t, err)
	assert.Equal(t, "T\n\nB.", article.TextContent)
}
