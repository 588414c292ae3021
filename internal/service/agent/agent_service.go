package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Rishi-Dabhi/TrustIt-AI/internal/config"
	"github.com/Rishi-Dabhi/TrustIt-AI/param"
	"github.com/coder/websocket"
	"github.com/rs/xid"
)

// AgentService 客户端代理,对应浏览器扩展的后台进程
// 维持到提取服务端的长连接:定时心跳,断开后固定间隔无限重连
type AgentService interface {
	Run(ctx context.Context)
	Forward(ctx context.Context, url string, tabId int, eventType param.EventType)
}

// agentConn 收窄的连接接口,便于测试替身
type agentConn interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	Close()
}

type agentService struct {
	serverUrl      string
	heartbeat      time.Duration
	reconnectDelay time.Duration
	dial           func(ctx context.Context) (agentConn, error)

	mu   sync.Mutex
	conn agentConn // 非nil表示CONNECTED
}

func InitAgentService(cfg *config.Config) AgentService {
	as := &agentService{
		serverUrl:      cfg.Agent.ServerUrl,
		heartbeat:      cfg.Heartbeat(),
		reconnectDelay: cfg.ReconnectDelay(),
	}
	as.dial = func(ctx context.Context) (agentConn, error) {
		conn, _, err := websocket.Dial(ctx, as.serverUrl, nil)
		if err != nil {
			return nil, err
		}
		return &websocketConn{conn: conn}, nil
	}
	return as
}

// Run 连接状态机,ctx取消前不会退出
// 重连间隔固定,失败多少次都不增长
func (as *agentService) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := as.dial(ctx)
		if err != nil {
			log.Printf("连接服务端失败: %v, %s后重连", err, as.reconnectDelay)
			if !sleepCtx(ctx, as.reconnectDelay) {
				return
			}
			continue
		}
		log.Printf("已连接服务端: %s", as.serverUrl)
		as.setConn(conn)
		as.readLoop(ctx, conn)
		as.setConn(nil)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Printf("连接断开, %s后重连", as.reconnectDelay)
		if !sleepCtx(ctx, as.reconnectDelay) {
			return
		}
	}
}

// Forward 把一次导航/建标签事件转成提取请求
// 连接未就绪时直接丢弃,只记警告,不排队不补发
func (as *agentService) Forward(ctx context.Context, url string, tabId int, eventType param.EventType) {
	conn := as.currentConn()
	if conn == nil {
		log.Printf("警告: 连接未就绪,丢弃事件: %s (%s)", url, eventType)
		return
	}
	req := &param.ExtractRequest{
		Id:    xid.New().String(),
		Url:   url,
		TabId: tabId,
		Type:  eventType,
	}
	data, err := json.Marshal(req)
	if err != nil {
		log.Printf("编码请求失败: %v", err)
		return
	}
	if err := conn.Write(ctx, data); err != nil {
		log.Printf("发送事件失败: %s: %v", url, err)
	}
}

// readLoop 读服务端响应直到连接断开,期间维持心跳
func (as *agentService) readLoop(ctx context.Context, conn agentConn) {
	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go as.heartbeatLoop(hbCtx)

	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("读取响应失败: %v", err)
			}
			return
		}
		as.logResponse(data)
	}
}

func (as *agentService) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(as.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			as.sendPing(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sendPing 仅在socket打开时发心跳,关闭状态下跳过而非排队
func (as *agentService) sendPing(ctx context.Context) {
	conn := as.currentConn()
	if conn == nil {
		return
	}
	if err := conn.Write(ctx, []byte("ping")); err != nil {
		log.Printf("心跳发送失败: %v", err)
	}
}

// logResponse 提取结果仅作诊断日志,不上抛到用户界面
func (as *agentService) logResponse(data []byte) {
	var resp param.ExtractResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Printf("无法解析响应: %v", err)
		return
	}
	switch {
	case resp.Error != "":
		log.Printf("提取失败 (id: %s): %s", resp.Id, resp.Error)
	case resp.Data == nil:
		log.Printf("空响应 (id: %s)", resp.Id)
	case resp.Data.Pong:
		// 心跳应答不刷日志
	case resp.Data.Ignored != "":
		log.Printf("提取被跳过 (id: %s): %s", resp.Id, resp.Data.Ignored)
	default:
		log.Printf("提取成功 (id: %s): %s, 正文%d字", resp.Id, resp.Data.Title, len(resp.Data.Content))
	}
}

func (as *agentService) setConn(conn agentConn) {
	as.mu.Lock()
	as.conn = conn
	as.mu.Unlock()
}

func (as *agentService) currentConn() agentConn {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.conn
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

type websocketConn struct {
	conn *websocket.Conn
}

func (wc *websocketConn) Write(ctx context.Context, data []byte) error {
	return wc.conn.Write(ctx, websocket.MessageText, data)
}

func (wc *websocketConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := wc.conn.Read(ctx)
	return data, err
}

func (wc *websocketConn) Close() {
	_ = wc.conn.Close(websocket.StatusNormalClosure, "")
}
