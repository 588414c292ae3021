package model

// Article 提取结果
// Content保留段落结构(可读性变换后的HTML),TextContent为扁平化纯文本
type Article struct {
	Url         string
	Title       string
	Content     string
	TextContent string
}
