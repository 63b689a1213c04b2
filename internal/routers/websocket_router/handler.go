// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
type WSHandler struct {
	App *app.App
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App) *WSHandler {
	return &WSHandler{App: a}
}

func clientUID(c *pkgapp.WebsocketClient) int64 {
	if c == nil || c.User == nil {
		return 0
	}
	return c.User.UID
}

// logError 连接已关闭时降级为 Debug
func (h *WSHandler) logError(c *pkgapp.WebsocketClient, method string, err error) {
	if c != nil && c.Context().Err() != nil {
		h.App.Logger().Debug(method, zap.Int64(logger.FieldUID, clientUID(c)), zap.Error(err))
		return
	}
	h.App.Logger().Error(method, zap.Int64(logger.FieldUID, clientUID(c)), zap.Error(err))
}

// respondError 记录错误日志并发送错误响应给客户端
func (h *WSHandler) respondError(c *pkgapp.WebsocketClient, action string, err error, method string) {
	h.logError(c, method, err)
	if codeErr, ok := err.(*code.Code); ok {
		c.ToResponse(codeErr, action)
		return
	}
	c.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()), action)
}
