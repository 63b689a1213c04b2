package importer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/fast-note-ai-service/pkg/ai"
)

type createdNote struct {
	uid                 int64
	title               string
	description         string
	originalDescription string
}

type fakeCreator struct {
	mu    sync.Mutex
	notes []createdNote
	err   error
}

func (c *fakeCreator) CreateImported(_ context.Context, uid int64, title, description, originalDescription string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.notes = append(c.notes, createdNote{uid, title, description, originalDescription})
	return "note-" + title, nil
}

func (c *fakeCreator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes)
}

// geminiServer fakes the generateContent endpoint, replying with text
func geminiServer(t *testing.T, text string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	quoted, err := sonic.MarshalString(text)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":`+quoted+`}]}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type recorder struct {
	mu          sync.Mutex
	transitions []Transition
}

func (r *recorder) OnTransition(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.transitions))
	for _, t := range r.transitions {
		out = append(out, t.To)
	}
	return out
}

func newTestPipeline(t *testing.T, transcriptURL, geminiURL string, creator NoteCreator, obs Observer) *Pipeline {
	t.Helper()
	client, err := ai.New(context.Background(), ai.Config{APIKey: "gemini-key", BaseURL: geminiURL}, nil)
	require.NoError(t, err)

	return New(
		NewHTTPFetcher(TranscriptConfig{BaseURL: transcriptURL, APIKey: "secret"}),
		NewRequester(client, "gemini-2.0-flash-001", 0),
		NewWriter(creator),
		WithObserver(obs, MetricsObserver()),
	)
}

func TestPipeline_EndToEnd(t *testing.T) {
	transcript, transcriptCalls := transcriptServer(t, http.StatusOK,
		`{"content":[{"text":"Welcome to the course."},{"text":"First we install Go."},{"text":"Then we write hello world."}]}`)
	gemini, geminiCalls := geminiServer(t, "Here are your notes:\n```json\n{\"title\":\"Getting Started with Go\",\"notes\":\"- Welcome\\n- Install Go\\n  - hello world\"}\n```")

	creator := &fakeCreator{}
	rec := &recorder{}
	surface := newTestPipeline(t, transcript.URL, gemini.URL, creator, rec).NewSurface()

	run, err := surface.Acquire()
	require.NoError(t, err)
	assert.True(t, surface.Busy())

	const url = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	out := run.Start(context.Background(), 7, url)

	require.Equal(t, Done, out.State, out.Message)
	assert.Equal(t, run.ID(), out.RunID)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, "note-Getting Started with Go", out.NoteID)
	assert.Empty(t, out.Message)
	assert.False(t, surface.Busy())

	require.Equal(t, 1, creator.count())
	n := creator.notes[0]
	assert.Equal(t, int64(7), n.uid)
	assert.Equal(t, "Getting Started with Go", n.title)
	assert.Equal(t, "- Welcome\n- Install Go\n  - hello world", n.description)
	assert.Equal(t, "Imported from YouTube: "+url, n.originalDescription)

	assert.EqualValues(t, 1, transcriptCalls.Load())
	assert.EqualValues(t, 1, geminiCalls.Load())
	assert.Equal(t, []State{FetchingTranscript, RequestingTransform, ExtractingResult, Persisting, Done}, rec.states())
}

func TestPipeline_TranscriptUnavailable(t *testing.T) {
	transcript, _ := transcriptServer(t, http.StatusForbidden, `{"error":"forbidden"}`)
	gemini, geminiCalls := geminiServer(t, `{"title":"x","notes":"y"}`)

	creator := &fakeCreator{}
	rec := &recorder{}
	surface := newTestPipeline(t, transcript.URL, gemini.URL, creator, rec).NewSurface()

	run, err := surface.Acquire()
	require.NoError(t, err)
	out := run.Start(context.Background(), 1, "https://youtu.be/dQw4w9WgXcQ")

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, KindTranscriptUnavailable, out.Kind())
	assert.Contains(t, out.Message, "fetching the transcript")
	assert.Contains(t, out.Message, "403")
	assert.Empty(t, out.NoteID)
	assert.Zero(t, creator.count())
	assert.Zero(t, geminiCalls.Load())
	assert.False(t, surface.Busy())

	var pe *Error
	require.True(t, errors.As(out.Err, &pe))
	assert.Equal(t, FetchingTranscript, pe.Stage)
	assert.Equal(t, []State{FetchingTranscript, Failed}, rec.states())
}

func TestPipeline_FailureKinds(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		model string
		store error
		kind  Kind
		stage State
	}{
		{"bad url", "https://vimeo.com/1", `{"title":"a","notes":"b"}`, nil, KindInvalidSourceURL, FetchingTranscript},
		{"no json", "https://youtu.be/dQw4w9WgXcQ", "I cannot help with that.", nil, KindNoJSONFound, ExtractingResult},
		{"malformed", "https://youtu.be/dQw4w9WgXcQ", `{"title": oops}`, nil, KindMalformedJSON, ExtractingResult},
		{"incomplete", "https://youtu.be/dQw4w9WgXcQ", `{"title":"a","notes":""}`, nil, KindIncompleteResult, ExtractingResult},
		{"store", "https://youtu.be/dQw4w9WgXcQ", `{"title":"a","notes":"b"}`, errors.New("disk full"), KindPersistenceError, Persisting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcript, transcriptCalls := transcriptServer(t, http.StatusOK, `{"content":[{"text":"hi"}]}`)
			gemini, _ := geminiServer(t, tt.model)
			creator := &fakeCreator{err: tt.store}
			surface := newTestPipeline(t, transcript.URL, gemini.URL, creator, &recorder{}).NewSurface()

			run, err := surface.Acquire()
			require.NoError(t, err)
			out := run.Start(context.Background(), 1, tt.url)

			assert.Equal(t, Failed, out.State)
			assert.Equal(t, tt.kind, out.Kind())
			assert.NotEmpty(t, out.Message)
			var pe *Error
			require.True(t, errors.As(out.Err, &pe))
			assert.Equal(t, tt.stage, pe.Stage)
			assert.False(t, surface.Busy())
			if tt.kind == KindInvalidSourceURL {
				assert.Zero(t, transcriptCalls.Load())
				assert.Contains(t, out.Message, "failed while checking the URL")
				assert.NotContains(t, out.Message, "fetching the transcript")
			}
		})
	}
}

type blockingFetcher struct {
	entered chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, _ string) (string, error) {
	close(f.entered)
	select {
	case <-f.release:
		return "transcript", nil
	case <-ctx.Done():
		return "", newError(KindTranscriptUnavailable, ctx.Err())
	}
}

type staticTransformer string

func (s staticTransformer) Request(context.Context, string) (string, error) {
	return string(s), nil
}

func TestSurface_RejectsWhileInFlight(t *testing.T) {
	fetcher := &blockingFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	creator := &fakeCreator{}
	p := New(fetcher, staticTransformer(`{"title":"a","notes":"b"}`), NewWriter(creator))
	surface := p.NewSurface()

	run, err := surface.Acquire()
	require.NoError(t, err)

	done := make(chan Outcome, 1)
	go func() { done <- run.Start(context.Background(), 1, "https://youtu.be/dQw4w9WgXcQ") }()
	<-fetcher.entered

	_, err = surface.Acquire()
	assert.ErrorIs(t, err, ErrRunInFlight)

	other, err := p.NewSurface().Acquire()
	require.NoError(t, err, "surfaces are independent")
	other.Release()

	close(fetcher.release)
	select {
	case out := <-done:
		assert.Equal(t, Done, out.State)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	again, err := surface.Acquire()
	require.NoError(t, err)
	again.Release()
}

func TestIdleRun_SingleUse(t *testing.T) {
	creator := &fakeCreator{}
	p := New(&blockingFetcher{entered: make(chan struct{}), release: closedChan()}, staticTransformer(`{"title":"a","notes":"b"}`), NewWriter(creator))
	surface := p.NewSurface()

	run, err := surface.Acquire()
	require.NoError(t, err)
	assert.Equal(t, Done, run.Start(context.Background(), 1, "https://youtu.be/dQw4w9WgXcQ").State)

	out := run.Start(context.Background(), 1, "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, Failed, out.State)
	assert.ErrorIs(t, out.Err, ErrRunConsumed)
	assert.Equal(t, 1, creator.count())
}

func TestIdleRun_Release(t *testing.T) {
	surface := New(nil, nil, nil).NewSurface()

	run, err := surface.Acquire()
	require.NoError(t, err)
	assert.True(t, run.Release())
	assert.False(t, run.Release())
	assert.False(t, surface.Busy())

	out := run.Start(context.Background(), 1, "https://youtu.be/dQw4w9WgXcQ")
	assert.ErrorIs(t, out.Err, ErrRunConsumed)
}

func TestPipeline_Cancelled(t *testing.T) {
	fetcher := &blockingFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	surface := New(fetcher, staticTransformer("{}"), NewWriter(&fakeCreator{})).NewSurface()

	ctx, cancel := context.WithCancel(context.Background())
	run, err := surface.Acquire()
	require.NoError(t, err)

	go func() {
		<-fetcher.entered
		cancel()
	}()
	out := run.Start(ctx, 1, "https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, Failed, out.State)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.False(t, surface.Busy())
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
