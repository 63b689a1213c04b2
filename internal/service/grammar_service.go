package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	"github.com/haierkeys/fast-note-ai-service/internal/importer"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/diff"
)

const grammarPrompt = `Correct any grammar and spelling mistakes in the following text. Only return the corrected text, nothing else. Do not add any preamble.

Raw text: "%s"

Corrected text:`

// GrammarService 语法检查服务
type GrammarService interface {
	// Check returns the corrected text and its word-level diff against text
	Check(ctx context.Context, text string) (*dto.GrammarCheckDTO, error)
}

type grammarService struct {
	generator importer.Generator
	model     string
	logger    *zap.Logger
}

// NewGrammarService generator may be nil, Check then reports not configured
func NewGrammarService(generator importer.Generator, cfg *ServiceConfig, logger *zap.Logger) GrammarService {
	s := &grammarService{generator: generator, logger: logger}
	if cfg != nil {
		s.model = cfg.Grammar.Model
	}
	return s
}

func (s *grammarService) Check(ctx context.Context, text string) (*dto.GrammarCheckDTO, error) {
	if s.generator == nil {
		return nil, code.ErrorGrammarCheckNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, code.ErrorInvalidParams
	}

	out, err := s.generator.Generate(ctx, s.model, strings.Replace(grammarPrompt, "%s", text, 1))
	if err != nil {
		s.logger.Warn("GrammarService.Check generate failed", zap.Error(err))
		return nil, code.ErrorGrammarCheckFailed.WithDetails(err.Error())
	}
	corrected := strings.TrimSpace(out)
	if corrected == "" {
		return nil, code.ErrorGrammarCheckFailed
	}

	segments := diff.Segments(text, corrected)
	return &dto.GrammarCheckDTO{
		Original:  text,
		Corrected: corrected,
		Diff:      segments,
		Stats:     diff.Count(segments),
	}, nil
}
