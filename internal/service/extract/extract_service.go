package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/domain/model"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/chrome"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/collector"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/readability"
	"golang.org/x/sync/singleflight"
)

type extractService struct {
	initCrawler func() (types.Crawler, error)
	navTimeout  time.Duration

	mu      sync.Mutex
	inited  bool
	crawler types.Crawler
	initErr error

	group singleflight.Group
}

func InitExtractService(ctx context.Context, cfg *config.Config) ExtractService {
	initCrawler := func() (types.Crawler, error) {
		if cfg.Extractor.Backend == "colly" {
			return collector.InitCollyCrawler(cfg)
		}
		return chrome.InitChromeCrawler(ctx, cfg)
	}
	return &extractService{
		initCrawler: initCrawler,
		navTimeout:  cfg.NavigationTimeout(),
	}
}

// browser 首次调用时拉起浏览器,启动失败会被记住且不再重试
// 启动错误是环境配置问题,重试没有意义
func (es *extractService) browser() (types.Crawler, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if !es.inited {
		es.inited = true
		es.crawler, es.initErr = es.initCrawler()
	}
	return es.crawler, es.initErr
}

// Extract 同一URL的并发请求合并为一次提取,共享结果
func (es *extractService) Extract(ctx context.Context, url string) (*model.Article, error) {
	v, err, _ := es.group.Do(url, func() (any, error) {
		return es.extract(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Article), nil
}

func (es *extractService) extract(ctx context.Context, url string) (*model.Article, error) {
	crawler, err := es.browser()
	if err != nil {
		return nil, err
	}

	if es.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, es.navTimeout)
		defer cancel()
	}

	page, err := crawler.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("打开页面失败: %w", err)
	}
	// 无论成败都关闭页面,失败路径不能泄漏浏览器资源
	defer page.Close()

	log.Printf("开始提取: %s", url)
	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}

	article, err := readability.Parse(html, url)
	if err != nil {
		return nil, err
	}
	log.Printf("提取完成: %s, 标题: %s", url, article.Title)
	return article, nil
}

func (es *extractService) Close() {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.inited && es.crawler != nil {
		es.crawler.Close()
		es.crawler = nil
	}
}
