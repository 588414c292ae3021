package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/cache"
	"github.com/Rishi-Dabhi/TrustIt-AI/internal/infra/crawler/types"
	extract "github.com/Rishi-Dabhi/TrustIt-AI/internal/service/extract"
	"github.com/Rishi-Dabhi/TrustIt-AI/param"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/xid"
)

const shutdownTimeout = 5 * time.Second

// SocketServer WebSocket提取服务端
// 每条消息独立处理,同一连接上的多个请求并发执行,响应只回给请求方连接
type SocketServer interface {
	http.Handler
	Run(ctx context.Context, port int) error
}

type socketServer struct {
	urlCache  *cache.UrlCache
	extractor extract.ExtractService
	fatalCh   chan error
}

func InitSocketServer(urlCache *cache.UrlCache, extractor extract.ExtractService) SocketServer {
	return &socketServer{
		urlCache:  urlCache,
		extractor: extractor,
		fatalCh:   make(chan error, 1),
	}
}

// Run 监听直到ctx取消或出现进程级致命错误(如浏览器启动失败)
func (ss *socketServer) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: ss,
	}
	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- srv.ListenAndServe()
	}()
	log.Printf("提取服务已监听端口: %d", port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = srv.Close()
		return nil
	case err := <-serveErrCh:
		return err
	case err := <-ss.fatalCh:
		_ = srv.Close()
		return err
	}
}

func (ss *socketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// 浏览器扩展的Origin五花八门,放开校验
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("接受连接失败: %v", err)
		return
	}
	defer conn.CloseNow()
	log.Printf("客户端已连接: %s", r.RemoteAddr)

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Printf("客户端断开: %s: %v", r.RemoteAddr, err)
			return
		}
		go ss.handleMessage(ctx, conn, data)
	}
}

// handleMessage 单条消息的完整处理
// 任何按消息的错误都转成{error}响应,绝不让单条消息拖垮连接或进程
func (ss *socketServer) handleMessage(ctx context.Context, conn *websocket.Conn, data []byte) {
	// 裸字符串ping是协议的兼容形态,不走JSON解析
	if bytes.Equal(bytes.TrimSpace(data), []byte("ping")) {
		ss.send(ctx, conn, param.PongResponse(""))
		return
	}

	var req param.ExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		ss.send(ctx, conn, param.ErrorResponse("", "无法解析请求: "+err.Error()))
		return
	}
	if req.Ping {
		ss.send(ctx, conn, param.PongResponse(req.Id))
		if req.Url == "" {
			return
		}
	}
	id := req.Id
	if id == "" {
		id = xid.New().String()
	}
	log.Printf("收到提取请求: %s, 事件: %s, tab: %d", req.Url, req.Type, req.TabId)

	// 空URL等占位地址由缓存的永久忽略条目兜住,先查缓存再校验
	if ss.urlCache.ShouldIgnore(req.Url) {
		log.Printf("缓存命中,跳过提取: %s", req.Url)
		ss.send(ctx, conn, param.IgnoredResponse(id))
		return
	}
	if req.Url == "" {
		ss.send(ctx, conn, param.ErrorResponse(id, "请求缺少url"))
		return
	}

	// 提取一旦开始就跑到终态,连接中断不取消在途工作
	article, err := ss.extractor.Extract(context.WithoutCancel(ctx), req.Url)
	if err != nil {
		ss.send(ctx, conn, param.ErrorResponse(id, err.Error()))
		if errors.Is(err, types.ErrStartup) {
			ss.fatal(err)
		}
		return
	}
	ss.send(ctx, conn, param.SuccessResponse(id, article.TextContent, article.Title))
}

func (ss *socketServer) send(ctx context.Context, conn *websocket.Conn, resp *param.ExtractResponse) {
	if err := wsjson.Write(ctx, conn, resp); err != nil {
		log.Printf("发送响应失败: %v", err)
	}
}

// fatal 上报进程级致命错误,只记第一条
func (ss *socketServer) fatal(err error) {
	select {
	case ss.fatalCh <- err:
	default:
	}
}
