package webdav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebDAV_SendContent(t *testing.T) {
	var (
		mu   sync.Mutex
		puts = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "MKCOL":
			w.WriteHeader(http.StatusCreated)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			puts[r.URL.Path] = string(b)
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Endpoint: srv.URL, CustomPath: "backup"})
	require.NoError(t, err)

	key, err := client.SendContent(context.Background(), "notes/u_2/b.json", []byte("{}"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "backup/notes/u_2/b.json", key)

	mu.Lock()
	assert.Equal(t, "{}", puts["/backup/notes/u_2/b.json"])
	mu.Unlock()

	assert.NoError(t, client.Delete(context.Background(), "notes/u_2/b.json"))
}
