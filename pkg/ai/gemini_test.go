package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini answers generateContent with the given candidate parts
func fakeGemini(t *testing.T, status int, parts ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, r.URL.Path+" "+string(b))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
			return
		}
		quoted := make([]string, 0, len(parts))
		for _, p := range parts {
			quoted = append(quoted, `{"text":`+jsonString(p)+`}`)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[`+strings.Join(quoted, ",")+`]}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func jsonString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func TestClient_Generate(t *testing.T) {
	srv, bodies := fakeGemini(t, http.StatusOK, "Hello ", "world")

	c, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "gemini-2.0-flash-001", "say hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	require.Len(t, *bodies, 1)
	assert.Contains(t, (*bodies)[0], "gemini-2.0-flash-001:generateContent")
	assert.Contains(t, (*bodies)[0], "say hi")
}

func TestClient_GenerateEmpty(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK)

	c, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, RateLimit: 10, Burst: 1}, nil)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "m", "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_GenerateRemoteError(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusInternalServerError)

	c, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "m", "p")
	assert.Error(t, err)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: "  "}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
