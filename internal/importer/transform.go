package importer

import (
	"context"
	"errors"
	"strings"
)

// DefaultMaxTranscriptChars truncation limit in runes
const DefaultMaxTranscriptChars = 8000

const promptTemplate = `You are given the transcript of a video. Write detailed running notes that follow the video from start to finish.

Rules:
- Invent a new, descriptive title for the notes.
- The notes must be chronological running notes, not a summary. Keep every point in the order it appears.
- Use nested bullet points: a top-level bullet per topic and indented sub-bullets for details.
- Respond with a single JSON object and nothing else, in exactly this shape:
{"title": "<title>", "notes": "<notes as markdown bullets>"}

Transcript:
`

// Generator sends one prompt to a generative model
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Transformer turns a transcript into the raw model response
type Transformer interface {
	Request(ctx context.Context, transcript string) (string, error)
}

// Requester Transformer backed by a Generator
// Requester 生成请求器
type Requester struct {
	gen      Generator
	model    string
	maxChars int
}

// NewRequester maxChars <= 0 uses DefaultMaxTranscriptChars
func NewRequester(gen Generator, model string, maxChars int) *Requester {
	if maxChars <= 0 {
		maxChars = DefaultMaxTranscriptChars
	}
	return &Requester{gen: gen, model: model, maxChars: maxChars}
}

// Truncate keeps at most n runes of s
// Truncate 按字符数截断，不考虑单词边界
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// BuildPrompt wraps the transcript in the running-notes instruction
func BuildPrompt(transcript string) string {
	return promptTemplate + transcript
}

// Request returns the model text verbatim
func (r *Requester) Request(ctx context.Context, transcript string) (string, error) {
	prompt := BuildPrompt(Truncate(transcript, r.maxChars))

	raw, err := r.gen.Generate(ctx, r.model, prompt)
	if err != nil {
		return "", newError(KindGenerationFailed, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", newError(KindGenerationFailed, errors.New("empty response"))
	}
	return raw, nil
}
