package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-ai-service/pkg/errors"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Save 创建或修改笔记
// @Summary 保存笔记
// @Description id 为空时创建，否则修改。originalDescription 为空时创建使用 description，修改保留原值
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteSaveRequest true "笔记参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/note [post]
func (h *NoteHandler) Save(c *gin.Context) {
	params := &dto.NoteSaveRequest{}
	if !h.bind(c, "NoteHandler.Save", params) {
		return
	}
	uid, ok := h.uid(c, "NoteHandler.Save")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Save(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Save", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Get 获取单条笔记详情
// @Summary 获取笔记详情
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteGetRequest true "获取参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/note [get]
func (h *NoteHandler) Get(c *gin.Context) {
	params := &dto.NoteGetRequest{}
	if !h.bind(c, "NoteHandler.Get", params) {
		return
	}
	uid, ok := h.uid(c, "NoteHandler.Get")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Get(ctx, uid, params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteGetRequest true "删除参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	params := &dto.NoteGetRequest{}
	if !h.bind(c, "NoteHandler.Delete", params) {
		return
	}
	uid, ok := h.uid(c, "NoteHandler.Delete")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, uid, params.ID); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// List 笔记列表，按创建时间倒序
// @Summary 笔记列表
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteListRequest false "标题关键词"
// @Success 200 {object} pkgapp.Res{data=dto.NoteListDTO} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	params := &dto.NoteListRequest{}
	if !h.bind(c, "NoteHandler.List", params) {
		return
	}
	uid, ok := h.uid(c, "NoteHandler.List")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	notes, err := h.App.NoteService.List(ctx, uid, params.Keyword)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(&dto.NoteListDTO{List: notes, Count: len(notes)}))
}

// GrammarCheck 语法检查，不保存
// @Summary 语法检查
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.GrammarCheckRequest true "待检查文本"
// @Success 200 {object} pkgapp.Res{data=dto.GrammarCheckDTO} "成功"
// @Router /api/note/grammar [post]
func (h *NoteHandler) GrammarCheck(c *gin.Context) {
	params := &dto.GrammarCheckRequest{}
	if !h.bind(c, "NoteHandler.GrammarCheck", params) {
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.GrammarService.Check(ctx, params.Text)
	if err != nil {
		h.logError(ctx, "NoteHandler.GrammarCheck", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}

// Export 导出当前用户的笔记快照
// @Summary 导出笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ExportDTO} "成功"
// @Router /api/note/export [post]
func (h *NoteHandler) Export(c *gin.Context) {
	uid, ok := h.uid(c, "NoteHandler.Export")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.ExportService.Export(ctx, uid)
	if err != nil {
		h.logError(ctx, "NoteHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}
