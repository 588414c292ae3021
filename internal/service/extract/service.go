package service

import (
	"context"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/domain/model"
)

// ExtractService 文章提取服务
// 懒加载共享浏览器,按请求开独立页面,输出可读性变换后的结果
type ExtractService interface {
	Extract(ctx context.Context, url string) (*model.Article, error)
	Close()
}
