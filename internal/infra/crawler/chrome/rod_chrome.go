package chrome

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type rodCrawler struct {
	browser *rod.Browser
}

// InitRodCrawler 启动rod后端的共享浏览器
func InitRodCrawler(cfg *config.Config) (types.Crawler, error) {
	l := launcher.New().
		Headless(cfg.Rod.Headless).
		Leakless(cfg.Rod.Leakless)
	if cfg.Rod.Bin != "" {
		l = l.Bin(cfg.Rod.Bin)
	}
	if cfg.Rod.UserDataDir != "" {
		l = l.UserDataDir(cfg.Rod.UserDataDir)
	}
	if cfg.Rod.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.Rod.Incognito {
		l = l.Set("incognito")
	}
	if cfg.Rod.DisableDevShmUsage {
		l = l.Set("disable-dev-shm-usage")
	}
	if cfg.Rod.DisableBlinkFeatures != "" {
		l = l.Set("disable-blink-features", cfg.Rod.DisableBlinkFeatures)
	}
	if cfg.Rod.UserAgent != "" {
		l = l.Set("user-agent", cfg.Rod.UserAgent)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStartup, err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStartup, err)
	}
	log.Printf("rod浏览器已启动: %s", url)
	return &rodCrawler{browser: browser}, nil
}

func (rc *rodCrawler) Close() {
	if err := rc.browser.Close(); err != nil {
		log.Printf("关闭浏览器失败: %v", err)
	}
}

func (rc *rodCrawler) OpenPage(ctx context.Context) (types.PageSession, error) {
	page, err := stealth.Page(rc.browser)
	if err != nil {
		return nil, fmt.Errorf("创建页面失败: %w", err)
	}
	return &rodPage{page: page}, nil
}

type rodPage struct {
	page *rod.Page
}

func (rp *rodPage) Navigate(ctx context.Context, url string) error {
	page := rp.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return classifyNavErr(err, url)
	}
	if err := page.WaitLoad(); err != nil {
		return classifyNavErr(err, url)
	}
	return nil
}

func (rp *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := rp.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("序列化DOM失败: %w", err)
	}
	return html, nil
}

func (rp *rodPage) Close() {
	if err := rp.page.Close(); err != nil {
		log.Printf("关闭页面失败: %v", err)
	}
}

func classifyNavErr(err error, url string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", types.ErrNavigationTimeout, url)
	}
	return fmt.Errorf("导航失败: %w", err)
}
