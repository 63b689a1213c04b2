package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-ai-service/pkg/errors"
)

// ImportHandler 视频导入处理器
type ImportHandler struct {
	*Handler
}

// NewImportHandler 创建 ImportHandler 实例
func NewImportHandler(a *app.App) *ImportHandler {
	return &ImportHandler{Handler: NewHandler(a)}
}

// Import converts a YouTube video into a note and waits for the result.
// A second import while one is running returns ErrorImportInFlight immediately.
// @Summary 视频导入
// @Tags 导入
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteImportRequest true "视频链接"
// @Success 200 {object} pkgapp.Res{data=dto.NoteImportDTO} "成功"
// @Router /api/note/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	params := &dto.NoteImportRequest{}
	if !h.bind(c, "ImportHandler.Import", params) {
		return
	}
	uid, ok := h.uid(c, "ImportHandler.Import")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.ImportService.Import(ctx, uid, params.URL)
	if err != nil {
		h.logError(ctx, "ImportHandler.Import", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}

// Runs 导入记录，分页
// @Summary 导入记录
// @Tags 导入
// @Security UserAuthToken
// @Produce json
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.ImportRunDTO}} "成功"
// @Router /api/note/imports [get]
func (h *ImportHandler) Runs(c *gin.Context) {
	uid, ok := h.uid(c, "ImportHandler.Runs")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	runs, count, err := h.App.ImportService.Runs(ctx, uid, pkgapp.GetPage(c), pkgapp.GetPageSize(c))
	if err != nil {
		h.logError(ctx, "ImportHandler.Runs", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, runs, int(count))
}

// Status 当前是否有导入在进行
// @Summary 导入状态
// @Tags 导入
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note/import/status [get]
func (h *ImportHandler) Status(c *gin.Context) {
	uid, ok := h.uid(c, "ImportHandler.Status")
	if !ok {
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(gin.H{"busy": h.App.ImportService.Busy(uid)}))
}
