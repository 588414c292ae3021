package main

import (
	"bufio"
	"context"
	_ "embed"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	service "github.com/Rishi-Dabhi/TrustIt-AI/internal/service/agent"
	"github.com/Rishi-Dabhi/TrustIt-AI/param"
)

//go:embed appconfig/appconfig.json
var appConfig []byte

// 客户端代理,替代浏览器扩展后台进程的本地形态
// 标准输入每行一个导航事件: <url> [tabId] [type]
func main() {
	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent := service.InitAgentService(appcfg)
	go agent.Run(ctx)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			url := fields[0]
			tabId := 0
			eventType := param.EventNav
			if len(fields) > 1 {
				tabId, _ = strconv.Atoi(fields[1])
			}
			if len(fields) > 2 {
				eventType = param.EventType(fields[2])
			}
			agent.Forward(ctx, url, tabId, eventType)
		}
		stop()
	}()

	<-ctx.Done()
	log.Printf("代理已退出")
}
