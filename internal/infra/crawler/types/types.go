package types

import (
	"context"
	"errors"
)

// ErrStartup 浏览器启动失败(如缺少sandbox能力),属于环境配置错误
// 进程级致命,不应按请求重试
var ErrStartup = errors.New("浏览器启动失败")

// ErrNavigationTimeout 页面导航超时,按请求级错误处理
var ErrNavigationTimeout = errors.New("页面导航超时")

// Crawler 页面爬取器,共享一个浏览器进程,每个请求打开独立页面
type Crawler interface {
	OpenPage(ctx context.Context) (PageSession, error)
	Close()
}

// PageSession 单次请求的页面会话,用完必须Close,与成败无关
type PageSession interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	Close()
}
