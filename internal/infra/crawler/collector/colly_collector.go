package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
	"github.com/gocolly/colly/v2"
)

// collyCrawler 无浏览器的静态抓取后端
// 拿不到JS渲染后的DOM,适合静态页面和无Chrome环境的一次性提取
type collyCrawler struct {
	cfg *config.Config
}

func InitCollyCrawler(cfg *config.Config) (types.Crawler, error) {
	return &collyCrawler{cfg: cfg}, nil
}

func (c *collyCrawler) Close() {}

// OpenPage 每个会话一个独立collector,请求间不共享cookie等状态
func (c *collyCrawler) OpenPage(ctx context.Context) (types.PageSession, error) {
	var opts []colly.CollectorOption
	if c.cfg.Colly.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.cfg.Colly.UserAgent))
	}
	if c.cfg.Colly.IgnoreRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	collector := colly.NewCollector(opts...)
	if c.cfg.Colly.TimeoutSeconds > 0 {
		collector.SetRequestTimeout(time.Duration(c.cfg.Colly.TimeoutSeconds) * time.Second)
	}
	return &collyPage{collector: collector}, nil
}

type collyPage struct {
	collector *colly.Collector
	html      []byte
}

func (cp *collyPage) Navigate(ctx context.Context, url string) error {
	if deadline, ok := ctx.Deadline(); ok {
		cp.collector.SetRequestTimeout(time.Until(deadline))
	}

	var respErr error
	cp.collector.OnResponse(func(r *colly.Response) {
		cp.html = r.Body
	})
	cp.collector.OnError(func(r *colly.Response, err error) {
		respErr = err
	})

	if err := cp.collector.Visit(url); err != nil {
		return fmt.Errorf("访问URL失败: %w", err)
	}
	cp.collector.Wait()
	if respErr != nil {
		return fmt.Errorf("访问URL失败: %w", respErr)
	}
	return nil
}

func (cp *collyPage) HTML(ctx context.Context) (string, error) {
	if len(cp.html) == 0 {
		return "", errors.New("页面内容为空")
	}
	return string(cp.html), nil
}

func (cp *collyPage) Close() {}
