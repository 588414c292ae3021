package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rishi-Dabhi/TrustIt-AI/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgentConn 连接替身,记录写出的帧
type fakeAgentConn struct {
	mu        sync.Mutex
	writes    [][]byte
	readCh    chan []byte
	closeOnce sync.Once
}

func newFakeAgentConn() *fakeAgentConn {
	return &fakeAgentConn{readCh: make(chan []byte, 8)}
}

func (fc *fakeAgentConn) Write(ctx context.Context, data []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.writes = append(fc.writes, append([]byte(nil), data...))
	return nil
}

func (fc *fakeAgentConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-fc.readCh:
		if !ok {
			return nil, errors.New("连接已关闭")
		}
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (fc *fakeAgentConn) Close() {
	fc.closeOnce.Do(func() { close(fc.readCh) })
}

func (fc *fakeAgentConn) written() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make([][]byte, len(fc.writes))
	copy(out, fc.writes)
	return out
}

func TestHeartbeatOnlyWhileConnected(t *testing.T) {
	as := &agentService{heartbeat: time.Minute, reconnectDelay: time.Minute}

	// 未连接时心跳跳过,不排队不报错
	as.sendPing(context.Background())

	conn := newFakeAgentConn()
	as.setConn(conn)
	as.sendPing(context.Background())
	require.Len(t, conn.written(), 1)
	assert.Equal(t, "ping", string(conn.written()[0]))

	// 断开后再次心跳不应有新的发送
	as.setConn(nil)
	as.sendPing(context.Background())
	assert.Len(t, conn.written(), 1)
}

func TestForwardDropsEventWhenDisconnected(t *testing.T) {
	as := &agentService{heartbeat: time.Minute, reconnectDelay: time.Minute}

	// 不应panic,事件被丢弃
	as.Forward(context.Background(), "https://example.com/a", 3, param.EventNav)

	conn := newFakeAgentConn()
	as.setConn(conn)
	as.Forward(context.Background(), "https://example.com/a", 3, param.EventNav)

	writes := conn.written()
	require.Len(t, writes, 1)
	var req param.ExtractRequest
	require.NoError(t, json.Unmarshal(writes[0], &req))
	assert.Equal(t, "https://example.com/a", req.Url)
	assert.Equal(t, 3, req.TabId)
	assert.Equal(t, param.EventNav, req.Type)
	assert.NotEmpty(t, req.Id, "每个请求都应带可回传的id")
}

func TestReconnectFixedDelay(t *testing.T) {
	const delay = 20 * time.Millisecond

	var mu sync.Mutex
	var attempts []time.Time
	as := &agentService{
		heartbeat:      time.Minute,
		reconnectDelay: delay,
		dial: func(ctx context.Context) (agentConn, error) {
			mu.Lock()
			attempts = append(attempts, time.Now())
			mu.Unlock()
			return nil, errors.New("连接被拒绝")
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	as.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(attempts), 3)
	for i := 1; i < len(attempts); i++ {
		gap := attempts[i].Sub(attempts[i-1])
		assert.GreaterOrEqual(t, gap, delay, "重连间隔不应小于固定延迟")
		assert.Less(t, gap, 4*delay, "重连间隔不应随失败次数增长")
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	const delay = 10 * time.Millisecond

	var mu sync.Mutex
	dials := 0
	conns := []*fakeAgentConn{newFakeAgentConn(), newFakeAgentConn()}
	as := &agentService{
		heartbeat:      time.Minute,
		reconnectDelay: delay,
	}
	as.dial = func(ctx context.Context) (agentConn, error) {
		mu.Lock()
		defer mu.Unlock()
		if dials < len(conns) {
			conn := conns[dials]
			dials++
			return conn, nil
		}
		dials++
		return nil, errors.New("连接被拒绝")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		as.Run(ctx)
		close(done)
	}()

	// 第一条连接建立后模拟断开
	require.Eventually(t, func() bool { return as.currentConn() != nil }, time.Second, time.Millisecond)
	conns[0].Close()

	// 固定延迟后应重连上第二条
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials >= 2
	}, time.Second, time.Millisecond)

	cancel()
	conns[1].Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("取消后Run应退出")
	}
}

func TestResponseLoggingDoesNotPanic(t *testing.T) {
	as := &agentService{heartbeat: time.Minute, reconnectDelay: time.Minute}
	as.logResponse([]byte(`{"id":"r1","data":{"title":"T","content":"C"}}`))
	as.logResponse([]byte(`{"id":"r2","data":{"ignored":"cache"}}`))
	as.logResponse([]byte(`{"id":"r3","error":"导航失败"}`))
	as.logResponse([]byte(`{"id":"r4","data":{"pong":true}}`))
	as.logResponse([]byte(`not json`))
}
