package param

type EventType string

// 浏览器侧事件类型,仅用于日志与排查,不参与正确性判断
const (
	EventNav        EventType = "nav"
	EventNew        EventType = "new"
	EventNavigation EventType = "navigation"
	EventNewTab     EventType = "new_tab"
)

// IgnoredByCache 缓存短路的原因码
const IgnoredByCache = "cache"

// ExtractRequest 客户端到服务端的请求信封
// Id由客户端生成并在响应中原样回传,缺省时由服务端补发
type ExtractRequest struct {
	Id     string    `json:"id,omitempty"`
	Url    string    `json:"url,omitempty"`
	TabId  int       `json:"tabId,omitempty"`
	Type   EventType `json:"type,omitempty"`
	Origin string    `json:"origin,omitempty"`
	Ping   bool      `json:"ping,omitempty"`
}

// ExtractResponse 服务端到客户端的响应信封,Data与Error二选一
type ExtractResponse struct {
	Id    string        `json:"id,omitempty"`
	Data  *ResponseData `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ResponseData 载荷为以下互斥形态之一:
// 成功(Content+Title), 缓存忽略(Ignored), 心跳应答(Pong)
type ResponseData struct {
	Content string `json:"content,omitempty"`
	Title   string `json:"title,omitempty"`
	Ignored string `json:"ignored,omitempty"`
	Pong    bool   `json:"pong,omitempty"`
}

func SuccessResponse(id, content, title string) *ExtractResponse {
	return &ExtractResponse{Id: id, Data: &ResponseData{Content: content, Title: title}}
}

func IgnoredResponse(id string) *ExtractResponse {
	return &ExtractResponse{Id: id, Data: &ResponseData{Ignored: IgnoredByCache}}
}

func ErrorResponse(id, message string) *ExtractResponse {
	return &ExtractResponse{Id: id, Error: message}
}

func PongResponse(id string) *ExtractResponse {
	return &ExtractResponse{Id: id, Data: &ResponseData{Pong: true}}
}
