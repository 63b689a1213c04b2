package websocket_router

import (
	"context"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

// NoteWSHandler note feed: the current list is pushed on authorization and after every change
// NoteWSHandler 笔记推送，认证后及每次变更后推送最新列表
type NoteWSHandler struct {
	*WSHandler
	wss *pkgapp.WebsocketServer
}

// NewNoteWSHandler 创建 NoteWSHandler 实例
func NewNoteWSHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteWSHandler {
	return &NoteWSHandler{WSHandler: NewWSHandler(a), wss: wss}
}

// Register wires the feed into the server and the note service
func (h *NoteWSHandler) Register() {
	h.wss.Use(dto.WsNoteList, h.NoteList)
	h.wss.UserVerifierUse(h.App.UserService.Exists)
	h.wss.OnAuthorizedUse(h.pushInitial)
	h.App.NoteService.OnChange(h.broadcast)
}

// NoteList answers "NoteList|{"keyword":"..."}"
func (h *NoteWSHandler) NoteList(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteListRequest{}
	if err := c.Decode(msg, params); err != nil {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()), dto.WsNoteList)
		return
	}

	// parallel frames with the same keyword share one query
	v, err := c.Shared(dto.WsNoteList+"|"+params.Keyword, func() (any, error) {
		return h.App.NoteService.List(c.Context(), clientUID(c), params.Keyword)
	})
	if err != nil {
		h.respondError(c, dto.WsNoteList, err, "NoteWSHandler.NoteList")
		return
	}
	notes, _ := v.([]*dto.NoteDTO)
	c.ToResponse(code.Success.WithData(&dto.NoteListDTO{List: notes, Count: len(notes)}), dto.WsNoteList)
}

func (h *NoteWSHandler) pushInitial(c *pkgapp.WebsocketClient) {
	h.NoteList(c, &pkgapp.WebSocketMessage{Type: dto.WsNoteList})
}

// broadcast runs on the writer's goroutine; skipped when the user has no open feed
func (h *NoteWSHandler) broadcast(uid int64) {
	if h.wss.UserConnCount(uid) == 0 {
		return
	}
	notes, err := h.App.NoteService.List(context.Background(), uid, "")
	if err != nil {
		h.logError(nil, "NoteWSHandler.broadcast", err)
		return
	}
	h.wss.BroadcastToUser(uid, dto.WsNoteList, code.Success.WithData(&dto.NoteListDTO{List: notes, Count: len(notes)}))
}
