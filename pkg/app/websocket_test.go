package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/singleflight"

	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

type wsRecorder struct {
	gws.BuiltinEventHandler
	msgs chan string
}

func (r *wsRecorder) OnMessage(_ *gws.Conn, m *gws.Message) {
	defer m.Close()
	r.msgs <- m.Data.String()
}

func (r *wsRecorder) expect(t *testing.T, prefix string) string {
	t.Helper()
	select {
	case m := <-r.msgs:
		require.True(t, strings.HasPrefix(m, prefix), "got %q, want prefix %q", m, prefix)
		return m
	case <-time.After(5 * time.Second):
		t.Fatalf("no message with prefix %q", prefix)
	}
	return ""
}

func newTestWebsocket(t *testing.T) (*WebsocketServer, TokenManager, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := NewTokenManager(TokenConfig{SecretKey: "ws-secret"})
	wss := NewWebsocketServer(WebsocketServerConfig{Tokens: tokens})
	wss.UserVerifierUse(func(_ context.Context, uid int64) error {
		if uid == 404 {
			return errors.New("user not found")
		}
		return nil
	})
	wss.Use("NoteList", func(c *WebsocketClient, msg *WebSocketMessage) {
		var req struct {
			Keyword string `json:"keyword"`
		}
		if err := c.Decode(msg, &req); err != nil {
			c.ToResponse(code.ErrorInvalidParams, "NoteList")
			return
		}
		c.ToResponse(code.Success.WithData(map[string]any{"uid": c.User.UID, "keyword": req.Keyword}), "NoteList")
	})
	wss.OnAuthorizedUse(func(c *WebsocketClient) {
		c.ToResponse(code.Success.WithData("hello"), "NoteList")
	})

	r := gin.New()
	r.GET("/ws", wss.Run())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return wss, tokens, "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/ws"
}

func dial(t *testing.T, addr string) (*gws.Conn, *wsRecorder) {
	t.Helper()
	rec := &wsRecorder{msgs: make(chan string, 16)}
	conn, _, err := gws.NewClient(rec, &gws.ClientOption{Addr: addr})
	require.NoError(t, err)
	go conn.ReadLoop()
	t.Cleanup(func() { _ = conn.WriteClose(1000, nil) })
	return conn, rec
}

func TestWebsocket_AuthorizeAndList(t *testing.T) {
	wss, tokens, addr := newTestWebsocket(t)
	conn, rec := dial(t, addr)

	require.NoError(t, conn.WriteString("NoteList|"))
	msg := rec.expect(t, "NoteList|")
	assert.Contains(t, msg, `"code":401`)

	token, err := tokens.Generate(7, "u", "")
	require.NoError(t, err)
	require.NoError(t, conn.WriteString("Authorization|"+token))
	assert.Contains(t, rec.expect(t, "Authorization|"), `"status":true`)
	assert.Contains(t, rec.expect(t, "NoteList|"), `"hello"`)
	assert.Equal(t, 1, wss.UserConnCount(7))

	require.NoError(t, conn.WriteString(`NoteList|{"keyword":"go"}`))
	msg = rec.expect(t, "NoteList|")
	assert.Contains(t, msg, `"keyword":"go"`)
	assert.Contains(t, msg, `"uid":7`)

	wss.BroadcastToUser(7, "NoteList", code.Success.WithData("pushed"))
	assert.Contains(t, rec.expect(t, "NoteList|"), `"pushed"`)

	// 其他用户不会收到
	wss.BroadcastToUser(8, "NoteList", code.Success.WithData("other"))
	select {
	case m := <-rec.msgs:
		t.Fatalf("unexpected message %q", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebsocket_RejectsBadToken(t *testing.T) {
	_, tokens, addr := newTestWebsocket(t)

	conn, rec := dial(t, addr)
	require.NoError(t, conn.WriteString("Authorization|garbage"))
	assert.Contains(t, rec.expect(t, "Authorization|"), `"code":402`)

	conn2, rec2 := dial(t, addr)
	token, err := tokens.Generate(404, "gone", "")
	require.NoError(t, err)
	require.NoError(t, conn2.WriteString("Authorization|"+token))
	assert.Contains(t, rec2.expect(t, "Authorization|"), `"code":402`)
}

func TestWebsocket_Disconnect(t *testing.T) {
	wss, tokens, addr := newTestWebsocket(t)
	conn, rec := dial(t, addr)

	token, err := tokens.Generate(3, "u", "")
	require.NoError(t, err)
	require.NoError(t, conn.WriteString("Authorization|"+token))
	rec.expect(t, "Authorization|")
	require.Equal(t, 1, wss.UserConnCount(3))

	require.NoError(t, conn.WriteClose(1000, nil))
	assert.Eventually(t, func() bool { return wss.UserConnCount(3) == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestWebsocket_ReauthorizeMovesConnection(t *testing.T) {
	wss, tokens, addr := newTestWebsocket(t)
	conn, rec := dial(t, addr)

	first, err := tokens.Generate(7, "u", "")
	require.NoError(t, err)
	require.NoError(t, conn.WriteString("Authorization|"+first))
	assert.Contains(t, rec.expect(t, "Authorization|"), `"status":true`)
	rec.expect(t, "NoteList|")
	require.Equal(t, 1, wss.UserConnCount(7))

	second, err := tokens.Generate(8, "v", "")
	require.NoError(t, err)
	require.NoError(t, conn.WriteString("Authorization|"+second))
	assert.Contains(t, rec.expect(t, "Authorization|"), `"status":true`)
	rec.expect(t, "NoteList|")

	assert.Equal(t, 0, wss.UserConnCount(7))
	assert.Equal(t, 1, wss.UserConnCount(8))

	wss.BroadcastToUser(7, "NoteList", code.Success.WithData("stale"))
	select {
	case m := <-rec.msgs:
		t.Fatalf("unexpected message %q", m)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, conn.WriteClose(1000, nil))
	assert.Eventually(t, func() bool { return wss.UserConnCount(8) == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestWebsocketClient_SharedCollapsesConcurrentCalls(t *testing.T) {
	c := &WebsocketClient{SF: new(singleflight.Group)}

	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})
	fn := func() (any, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return "notes", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Shared("NoteList|go", fn)
	}()
	<-entered
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Shared("NoteList|go", fn)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "notes", r)
	}

	v, err := c.Shared("NoteList|other", func() (any, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
