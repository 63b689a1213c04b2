package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
	models  []string
}

func (g *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	g.models = append(g.models, model)
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 8000))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "hello wo", Truncate("hello world", 8))
}

func TestTruncate_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("result is a rune prefix bounded by n", prop.ForAll(
		func(s string, n int) bool {
			out := Truncate(s, n)
			want := utf8.RuneCountInString(s)
			if n < want {
				want = n
			}
			return strings.HasPrefix(s, out) && utf8.RuneCountInString(out) == want
		},
		gen.AnyString(),
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}

func TestRequester_Request(t *testing.T) {
	g := &fakeGenerator{text: `{"title":"t","notes":"n"}`}
	r := NewRequester(g, "gemini-2.0-flash-001", 5)

	raw, err := r.Request(context.Background(), "0123456789")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t","notes":"n"}`, raw)

	require.Len(t, g.prompts, 1)
	assert.Equal(t, "gemini-2.0-flash-001", g.models[0])
	assert.True(t, strings.HasSuffix(g.prompts[0], "01234"))
	assert.NotContains(t, g.prompts[0], "012345")
	assert.Contains(t, g.prompts[0], `"title"`)
	assert.Contains(t, g.prompts[0], "running notes")
}

func TestRequester_DefaultLimit(t *testing.T) {
	g := &fakeGenerator{text: "x"}
	r := NewRequester(g, "m", 0)

	_, err := r.Request(context.Background(), strings.Repeat("a", DefaultMaxTranscriptChars+10))
	require.NoError(t, err)
	assert.Equal(t, BuildPrompt(strings.Repeat("a", DefaultMaxTranscriptChars)), g.prompts[0])
}

func TestRequester_Failures(t *testing.T) {
	_, err := NewRequester(&fakeGenerator{err: errors.New("quota")}, "m", 0).Request(context.Background(), "t")
	assert.ErrorIs(t, err, ErrGenerationFailed)

	_, err = NewRequester(&fakeGenerator{text: "  \n"}, "m", 0).Request(context.Background(), "t")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
