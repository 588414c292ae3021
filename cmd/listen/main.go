package main

import (
	"context"
	_ "embed"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/cache"
	extractservice "github.com/Rishi-Dabhi/TrustIt-AI/internal/service/extract"
	socketservice "github.com/Rishi-Dabhi/TrustIt-AI/internal/service/socket"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 长驻监听: listen [port]
// 收到中断信号后关闭共享浏览器与监听器再退出
func main() {
	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	port := appcfg.Server.Port
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil {
			log.Fatalf("无效的端口: %s", os.Args[1])
		}
		port = p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urlCache := cache.InitUrlCache(appcfg.CacheTTL(), appcfg.Server.IgnoredUrls)
	urlCache.StartSweeper(ctx, appcfg.CacheSweepInterval())

	extractor := extractservice.InitExtractService(ctx, appcfg)
	server := socketservice.InitSocketServer(urlCache, extractor)

	runErr := server.Run(ctx, port)
	extractor.Close()
	if runErr != nil {
		log.Fatalf("服务端异常退出: %v", runErr)
	}
	log.Printf("服务端已退出")
}
