package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	service "github.com/Rishi-Dabhi/TrustIt-AI/internal/service/extract"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 一次性提取: extract <url>
// 打印标题与扁平化正文后退出
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("用法: extract <url>")
	}
	url := os.Args[1]

	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	ctx := context.Background()
	extractor := service.InitExtractService(ctx, appcfg)

	article, err := extractor.Extract(ctx, url)
	if err != nil {
		extractor.Close()
		log.Fatalf("提取失败: %v", err)
	}
	extractor.Close()

	fmt.Println(article.Title)
	fmt.Println()
	fmt.Println(article.TextContent)
}
