package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/diff"
)

type fakeGenerator struct {
	out     string
	err     error
	model   string
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	g.model = model
	g.prompts = append(g.prompts, prompt)
	return g.out, g.err
}

func TestGrammarService_Check(t *testing.T) {
	gen := &fakeGenerator{out: "  I went to the store.\n"}
	svc := NewGrammarService(gen, &ServiceConfig{Grammar: GrammarServiceConfig{Model: "gemini-test"}}, zap.NewNop())

	res, err := svc.Check(context.Background(), " i goed to the store ")
	require.NoError(t, err)
	assert.Equal(t, "i goed to the store", res.Original)
	assert.Equal(t, "I went to the store.", res.Corrected)
	assert.Equal(t, res.Original, diff.Original(res.Diff))
	assert.Equal(t, res.Corrected, diff.Corrected(res.Diff))
	assert.Positive(t, res.Stats.Inserted)
	assert.Positive(t, res.Stats.Deleted)

	assert.Equal(t, "gemini-test", gen.model)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `Raw text: "i goed to the store"`)
	assert.Contains(t, gen.prompts[0], "Only return the corrected text")
}

func TestGrammarService_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewGrammarService(nil, nil, zap.NewNop()).Check(ctx, "text")
	assert.ErrorIs(t, err, code.ErrorGrammarCheckNotConfigured)

	_, err = NewGrammarService(&fakeGenerator{err: errors.New("quota")}, nil, zap.NewNop()).Check(ctx, "text")
	assert.ErrorIs(t, err, code.ErrorGrammarCheckFailed)
	assert.Equal(t, []string{"quota"}, codeOf(t, err).Details())

	_, err = NewGrammarService(&fakeGenerator{out: " \n "}, nil, zap.NewNop()).Check(ctx, "text")
	assert.ErrorIs(t, err, code.ErrorGrammarCheckFailed)

	gen := &fakeGenerator{out: "x"}
	_, err = NewGrammarService(gen, nil, zap.NewNop()).Check(ctx, "   ")
	assert.ErrorIs(t, err, code.ErrorInvalidParams)
	assert.Empty(t, gen.prompts)
}

func TestGrammarService_Unchanged(t *testing.T) {
	svc := NewGrammarService(&fakeGenerator{out: "Already fine."}, nil, zap.NewNop())

	res, err := svc.Check(context.Background(), "Already fine.")
	require.NoError(t, err)
	assert.Equal(t, diff.Stats{}, res.Stats)
}
