package chrome

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

type chromedpCrawler struct {
	allocCtx      context.Context
	allocCtxFuc   context.CancelFunc
	browserCtx    context.Context
	browserCtxFuc context.CancelFunc
}

// InitChromedpCrawler 启动共享浏览器进程
// 启动失败(常见为缺少sandbox能力)包装为types.ErrStartup,由上层决定进程退出
func InitChromedpCrawler(ctx context.Context, cfg *config.Config) (types.Crawler, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Chromedp.Headless),
		chromedp.Flag("disable-blink-features", cfg.Chromedp.DisableBlinkFeatures),
		chromedp.Flag("incognito", cfg.Chromedp.Incognito),
		chromedp.Flag("disable-dev-shm-usage", cfg.Chromedp.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", cfg.Chromedp.NoSandbox),
	)
	if cfg.Chromedp.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.Chromedp.UserDataDir))
	}
	if cfg.Chromedp.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Chromedp.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// 空跑一次,立刻把浏览器进程拉起来,尽早暴露环境问题
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", types.ErrStartup, err)
	}
	log.Printf("chromedp浏览器已启动, headless: %v, no_sandbox: %v", cfg.Chromedp.Headless, cfg.Chromedp.NoSandbox)

	return &chromedpCrawler{
		allocCtx:      allocCtx,
		allocCtxFuc:   cancelAlloc,
		browserCtx:    browserCtx,
		browserCtxFuc: cancelBrowser,
	}, nil
}

func (cc *chromedpCrawler) Close() {
	cc.browserCtxFuc()
	cc.allocCtxFuc()
}

// OpenPage 在共享浏览器上新开一个tab,互不串DOM状态
func (cc *chromedpCrawler) OpenPage(ctx context.Context) (types.PageSession, error) {
	tabCtx, cancelTab := chromedp.NewContext(cc.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		return nil, fmt.Errorf("创建页面失败: %w", err)
	}
	return &chromedpPage{tabCtx: tabCtx, tabCtxFuc: cancelTab}, nil
}

type chromedpPage struct {
	tabCtx    context.Context
	tabCtxFuc context.CancelFunc
}

func (cp *chromedpPage) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := withCallerDeadline(cp.tabCtx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", types.ErrNavigationTimeout, url)
		}
		return fmt.Errorf("导航失败: %w", err)
	}
	return nil
}

func (cp *chromedpPage) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := withCallerDeadline(cp.tabCtx, ctx)
	defer cancel()
	var html string
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("序列化DOM失败: %w", err)
	}
	return html, nil
}

func (cp *chromedpPage) Close() {
	cp.tabCtxFuc()
}

// withCallerDeadline 把调用方的截止时间并入tab上下文
// chromedp.Run只认tab上下文链,调用方ctx的超时需要显式转移
func withCallerDeadline(tabCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := callerCtx.Deadline(); ok {
		return context.WithDeadline(tabCtx, deadline)
	}
	return context.WithCancel(tabCtx)
}
