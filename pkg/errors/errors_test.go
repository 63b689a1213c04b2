package errors

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/fast-note-ai-service/internal/middleware"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

func respond(t *testing.T, err error) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set(middleware.TraceIDKey, "trace-1")

	ErrorResponse(c, err)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorResponse_Code(t *testing.T) {
	body := respond(t, fmt.Errorf("wrapped: %w", code.ErrorNoteNotFound.WithDetails("id=1")))
	assert.EqualValues(t, 2001, body["code"])
	assert.Equal(t, "trace-1", body["traceId"])
	assert.Equal(t, []any{"id=1"}, body["details"])
}

func TestErrorResponse_AppError(t *testing.T) {
	appErr := NewAppError(code.ErrorImportTranscriptUnavailable.WithData(map[string]string{"runId": "r"}), nil)
	body := respond(t, appErr)
	assert.EqualValues(t, 3003, body["code"])
	assert.Equal(t, map[string]any{"runId": "r"}, body["data"])
	assert.Empty(t, appErr.TraceID, "the original error is not mutated")
}

func TestErrorResponse_Unknown(t *testing.T) {
	body := respond(t, fmt.Errorf("db exploded"))
	assert.EqualValues(t, 500, body["code"])
	assert.NotContains(t, body["message"], "exploded")
}
