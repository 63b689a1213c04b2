package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second

	// ActionAuthorization first message a client must send: "Authorization|<token>"
	ActionAuthorization = "Authorization"
)

// WebSocketMessage "Type|Data" text frame
type WebSocketMessage struct {
	Type string
	Data []byte
}

// ResResult websocket reply body
type ResResult struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Tokens       TokenManager
	Logger       *zap.Logger
}

// WebsocketClient one connection and its state
// WebsocketClient 存储每个 WebSocket 连接及其状态
type WebsocketClient struct {
	conn   *gws.Conn
	done   chan struct{}
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	User   *UserEntity
	// SF collapses concurrent identical requests from the same client
	SF *singleflight.Group
}

// Shared runs fn once for concurrent calls with the same key on this connection
// Shared 同一连接上相同 key 的并发请求只执行一次
func (c *WebsocketClient) Shared(key string, fn func() (any, error)) (any, error) {
	if c.SF == nil {
		return fn()
	}
	v, err, _ := c.SF.Do(key, fn)
	return v, err
}

// Context lives until the connection closes
func (c *WebsocketClient) Context() context.Context {
	return c.ctx
}

// Decode 解析消息体
func (c *WebsocketClient) Decode(msg *WebSocketMessage, obj any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	return sonic.Unmarshal(msg.Data, obj)
}

// pingLoop keeps the connection alive after authorization
func (c *WebsocketClient) pingLoop(interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				logger.Warn("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse sends "action|{json}" to this client
// ToResponse 将结果发送给当前客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action string) {
	_ = c.conn.WriteMessage(gws.OpcodeText, encodeFrame(action, codeObj))
}

func (c *WebsocketClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
	})
}

func encodeFrame(action string, codeObj *code.Code) []byte {
	res := ResResult{
		Code:   codeObj.Code(),
		Status: codeObj.Status(),
		Msg:    codeObj.Msg(),
		Data:   codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		res.Details = strings.Join(codeObj.Details(), ",")
	}
	body, err := sonic.Marshal(res)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"code":%d,"status":false,"msg":%q}`, code.ErrorServerInternal.Code(), err.Error()))
	}
	if action == "" {
		return body
	}
	return append([]byte(action+"|"), body...)
}

// ------------------------------------> WebsocketServer

// WebsocketHandler handles one message type of an authorized client
type WebsocketHandler func(c *WebsocketClient, msg *WebSocketMessage)

type WebsocketServer struct {
	handlers     map[string]WebsocketHandler
	userVerifier func(ctx context.Context, uid int64) error
	onAuthorized func(c *WebsocketClient)
	clients      map[*gws.Conn]*WebsocketClient
	userClients  map[int64]map[*gws.Conn]*WebsocketClient
	mu           sync.RWMutex
	up           *gws.Upgrader
	config       WebsocketServerConfig
	logger       *zap.Logger
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval <= 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait <= 0 {
		c.PingWait = WebSocketServerPingWait
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &WebsocketServer{
		handlers:    make(map[string]WebsocketHandler),
		clients:     make(map[*gws.Conn]*WebsocketClient),
		userClients: make(map[int64]map[*gws.Conn]*WebsocketClient),
		config:      c,
		logger:      logger,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// Run 升级 HTTP 连接为 WebSocket
func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), ctx: ctx, cancel: cancel, SF: new(singleflight.Group)}
		w.addClient(client)
		go socket.ReadLoop()
	}
}

// Use registers the handler of a message type
func (w *WebsocketServer) Use(action string, handler WebsocketHandler) {
	w.handlers[action] = handler
}

// UserVerifierUse checks that the token's user still exists
func (w *WebsocketServer) UserVerifierUse(fn func(ctx context.Context, uid int64) error) {
	w.userVerifier = fn
}

// OnAuthorizedUse runs after a client authorizes
func (w *WebsocketServer) OnAuthorizedUse(fn func(c *WebsocketClient)) {
	w.onAuthorized = fn
}

func (w *WebsocketServer) authorize(c *WebsocketClient, msg *WebSocketMessage) {
	reject := func(err error) {
		w.logger.Warn("websocket authorization failed", zap.Error(err))
		c.ToResponse(code.ErrorInvalidUserAuthToken, ActionAuthorization)
		_ = c.conn.WriteClose(1000, []byte("AuthorizationFailed"))
	}

	if w.config.Tokens == nil {
		reject(fmt.Errorf("no token manager"))
		return
	}
	user, err := w.config.Tokens.Parse(strings.TrimSpace(string(msg.Data)))
	if err != nil {
		reject(err)
		return
	}
	if w.userVerifier != nil {
		if err := w.userVerifier(c.ctx, user.UID); err != nil {
			reject(err)
			return
		}
	}

	w.mu.Lock()
	first := c.User == nil
	// re-authorization moves the connection to the new user
	if prev := c.User; prev != nil && prev.UID != user.UID {
		delete(w.userClients[prev.UID], c.conn)
		if len(w.userClients[prev.UID]) == 0 {
			delete(w.userClients, prev.UID)
		}
	}
	c.User = user
	if w.userClients[user.UID] == nil {
		w.userClients[user.UID] = make(map[*gws.Conn]*WebsocketClient)
	}
	w.userClients[user.UID][c.conn] = c
	count := len(w.userClients[user.UID])
	w.mu.Unlock()

	c.ToResponse(code.Success, ActionAuthorization)
	w.logger.Info("websocket user enters", zap.Int64("uid", user.UID), zap.Int("count", count))
	if first {
		go c.pingLoop(w.config.PingInterval, w.logger)
	}

	if w.onAuthorized != nil {
		w.onAuthorized(c)
	}
}

// BroadcastToUser sends "action|{json}" to every authorized connection of uid
// BroadcastToUser 向用户的所有连接广播
func (w *WebsocketServer) BroadcastToUser(uid int64, action string, codeObj *code.Code) {
	w.mu.RLock()
	conns := make([]*gws.Conn, 0, len(w.userClients[uid]))
	for conn := range w.userClients[uid] {
		conns = append(conns, conn)
	}
	w.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b := gws.NewBroadcaster(gws.OpcodeText, encodeFrame(action, codeObj))
	defer b.Close()
	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}

// UserConnCount 用户在线连接数
func (w *WebsocketServer) UserConnCount(uid int64) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.userClients[uid])
}

func (w *WebsocketServer) getClient(conn *gws.Conn) *WebsocketClient {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.clients[conn]
}

func (w *WebsocketServer) addClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	w.mu.Lock()
	c := w.clients[conn]
	delete(w.clients, conn)
	if c != nil && c.User != nil {
		delete(w.userClients[c.User.UID], conn)
		if len(w.userClients[c.User.UID]) == 0 {
			delete(w.userClients, c.User.UID)
		}
	}
	w.mu.Unlock()

	if c != nil {
		c.close()
	}
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))

	raw := message.Data.String()
	if raw == "close" {
		_ = conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.getClient(conn)
	if c == nil {
		return
	}

	index := strings.Index(raw, "|")
	if index == -1 {
		w.logger.Warn("websocket illegal message", zap.String("data", raw))
		return
	}
	msg := &WebSocketMessage{Type: raw[:index], Data: []byte(raw[index+1:])}

	if msg.Type == ActionAuthorization {
		w.authorize(c, msg)
		return
	}
	if c.User == nil {
		c.ToResponse(code.ErrorNotUserAuthToken, msg.Type)
		return
	}

	handler, exists := w.handlers[msg.Type]
	if !exists {
		w.logger.Warn("websocket unknown message type", zap.String("type", msg.Type))
		return
	}
	handler(c, msg)
}
