// Package errors maps service errors to the unified JSON error body
// Package errors 将服务层错误转换为统一的 JSON 错误响应
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/fast-note-ai-service/internal/middleware"
	"github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

// AppError 统一应用错误结构体
type AppError struct {
	Code    int      `json:"code"`
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	// Data optional payload, e.g. the failing import run id
	Data      interface{} `json:"data,omitempty"`
	TraceID   string      `json:"traceId,omitempty"`
	Cause     error       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Message:   c.Msg(),
		Details:   c.Details(),
		Data:      c.Data(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// WithDetails 设置详情并返回自身
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse writes err as an AppError carrying the request trace id.
// Unknown errors become ErrorServerInternal without leaking their text.
// ErrorResponse 统一错误响应，未知错误按服务器内部错误处理
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)

	var appErr *AppError
	if errors.As(err, &appErr) {
		out := *appErr
		out.TraceID = traceID
		if out.Timestamp.IsZero() {
			out.Timestamp = time.Now()
		}
		c.JSON(http.StatusOK, &out)
		return
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.JSON(http.StatusOK, fromCode(c, codeErr, traceID))
		return
	}

	c.JSON(http.StatusOK, fromCode(c, code.ErrorServerInternal, traceID))
}

func fromCode(c *gin.Context, codeErr *code.Code, traceID string) *AppError {
	return &AppError{
		Code:      codeErr.Code(),
		Message:   app.Message(c, codeErr),
		Details:   codeErr.Details(),
		Data:      codeErr.Data(),
		TraceID:   traceID,
		Timestamp: time.Now(),
	}
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
