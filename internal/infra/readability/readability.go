package readability

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/domain/model"
	readability "github.com/go-shiori/go-readability"
)

// ErrNoContent DOM中没有可提取的文章内容
var ErrNoContent = errors.New("未提取到文章内容")

// blockSelector 扁平化时按块级元素切段
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, figcaption"

// Parse 对渲染后的HTML做可读性变换,剥离导航/广告等样板内容
// 产出标题和两种正文形态:保留段落的HTML与扁平化纯文本,标题作为首段
func Parse(html, pageURL string) (*model.Article, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}

	title := ""
	content := ""
	text := ""
	article, rerr := readability.FromReader(strings.NewReader(html), parsedURL)
	if rerr == nil {
		title = normalizeSpace(article.Title)
		content = article.Content
		text = Flatten(article.Content)
	}

	doc, derr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if derr != nil && rerr != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", derr)
	}
	if title == "" && doc != nil {
		title = fallbackTitle(doc)
	}
	// 可读性算法没有产出时退回到扁平化原始DOM
	if text == "" {
		text = Flatten(html)
		content = html
	}
	if text == "" {
		return nil, ErrNoContent
	}

	return &model.Article{
		Url:         pageURL,
		Title:       title,
		Content:     content,
		TextContent: withTitleBlock(title, text),
	}, nil
}

// Flatten 把HTML压成纯文本:块级元素为段,段内空白归一,段间以空行分隔
func Flatten(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	blocks := make([]string, 0, 16)
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if block := normalizeSpace(s.Text()); block != "" {
			blocks = append(blocks, block)
		}
	})
	if len(blocks) == 0 {
		// 没有块级结构时整个文档算一段
		if block := normalizeSpace(doc.Text()); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// withTitleBlock 确保标题是扁平文本的第一段,已在首段时不重复
func withTitleBlock(title, text string) string {
	if title == "" {
		return text
	}
	if first, _, _ := strings.Cut(text, "\n\n"); first == title {
		return text
	}
	return title + "\n\n" + text
}

func fallbackTitle(doc *goquery.Document) string {
	if t := normalizeSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return normalizeSpace(doc.Find("h1").First().Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
