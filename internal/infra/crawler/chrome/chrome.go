package chrome

import (
	"context"
	"fmt"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
)

// InitChromeCrawler 根据配置选择chromedp或rod后端
// 两个后端共用同一套接口:一个浏览器进程,按请求开页
func InitChromeCrawler(ctx context.Context, cfg *config.Config) (types.Crawler, error) {
	switch cfg.Extractor.Backend {
	case "rod":
		return InitRodCrawler(cfg)
	case "chromedp", "":
		return InitChromedpCrawler(ctx, cfg)
	default:
		return nil, fmt.Errorf("未知的浏览器后端: %s", cfg.Extractor.Backend)
	}
}
