package limiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodLimiter_LongestPrefix(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/user", FillInterval: time.Second, Capacity: 10, Quantum: 10},
		BucketRule{Key: "/api/note/import", FillInterval: time.Minute, Capacity: 2, Quantum: 2},
		BucketRule{Key: "/api/note", FillInterval: time.Second, Capacity: 50, Quantum: 50},
	)

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/note/import", nil)

	key := l.Key(c)
	assert.Equal(t, "/api/note/import", key)

	bucket, ok := l.GetBucket(key)
	require.True(t, ok)
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))

	c.Request = httptest.NewRequest("GET", "/api/health", nil)
	_, ok = l.GetBucket(l.Key(c))
	assert.False(t, ok)
}

func TestMethodLimiter_ExactRule(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api", FillInterval: time.Second, Capacity: 100, Quantum: 100},
		BucketRule{Key: "/api/note/import", Method: "POST", Exact: true, FillInterval: time.Minute, Capacity: 1, Quantum: 1},
	)

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/api/note/import", "=POST /api/note/import"},
		{"GET", "/api/note/import", "/api"},
		{"GET", "/api/note/imports", "/api"},
		{"GET", "/api/note/import/status", "/api"},
		{"GET", "/health", ""},
	}
	for _, tt := range tests {
		c.Request = httptest.NewRequest(tt.method, tt.path, nil)
		assert.Equal(t, tt.want, l.Key(c), tt.method+" "+tt.path)
	}

	c.Request = httptest.NewRequest("POST", "/api/note/import", nil)
	imports, ok := l.GetBucket(l.Key(c))
	require.True(t, ok)
	assert.Equal(t, int64(1), imports.TakeAvailable(1))
	assert.Equal(t, int64(0), imports.TakeAvailable(1))

	// status polling keeps drawing from the general bucket
	c.Request = httptest.NewRequest("GET", "/api/note/import/status", nil)
	general, ok := l.GetBucket(l.Key(c))
	require.True(t, ok)
	assert.Equal(t, int64(1), general.TakeAvailable(1))
}
