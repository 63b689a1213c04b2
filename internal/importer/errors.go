package importer

import (
	"errors"
	"fmt"
)

// Kind failure category of an import run
// Kind 导入失败类型
type Kind string

const (
	KindInvalidSourceURL      Kind = "InvalidSourceUrl"
	KindTranscriptUnavailable Kind = "TranscriptUnavailable"
	KindEmptyTranscript       Kind = "EmptyTranscript"
	KindGenerationFailed      Kind = "GenerationFailed"
	KindNoJSONFound           Kind = "NoJsonFound"
	KindMalformedJSON         Kind = "MalformedJson"
	KindIncompleteResult      Kind = "IncompleteResult"
	KindPersistenceError      Kind = "PersistenceError"
)

var kindText = map[Kind]string{
	KindInvalidSourceURL:      "the URL is not a supported YouTube video link",
	KindTranscriptUnavailable: "the transcript could not be retrieved",
	KindEmptyTranscript:       "the video has no transcript text",
	KindGenerationFailed:      "the generative service did not return notes",
	KindNoJSONFound:           "the response contained no JSON object",
	KindMalformedJSON:         "the response JSON could not be parsed",
	KindIncompleteResult:      "the response is missing a title or notes",
	KindPersistenceError:      "the note could not be stored",
}

// Describe human readable meaning of the kind
func (k Kind) Describe() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return string(k)
}

var (
	// ErrRunInFlight the surface already has a run in progress
	// ErrRunInFlight 已有导入在进行中
	ErrRunInFlight = errors.New("an import is already in progress")
	// ErrRunConsumed an IdleRun handle was started twice
	ErrRunConsumed = errors.New("import run handle already used")
)

// Sentinels for errors.Is matching by kind
var (
	ErrInvalidSourceURL      = &Error{Kind: KindInvalidSourceURL}
	ErrTranscriptUnavailable = &Error{Kind: KindTranscriptUnavailable}
	ErrEmptyTranscript       = &Error{Kind: KindEmptyTranscript}
	ErrGenerationFailed      = &Error{Kind: KindGenerationFailed}
	ErrNoJSONFound           = &Error{Kind: KindNoJSONFound}
	ErrMalformedJSON         = &Error{Kind: KindMalformedJSON}
	ErrIncompleteResult      = &Error{Kind: KindIncompleteResult}
	ErrPersistence           = &Error{Kind: KindPersistenceError}
)

// Error typed pipeline failure
// Error 流水线错误，包含类型、阶段与底层错误
type Error struct {
	Kind  Kind
	Stage State
	Err   error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Describe()
	if e.Stage != Idle {
		msg = fmt.Sprintf("failed while %s: %s", e.action(), msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// action a bad URL fails before any fetch is attempted
func (e *Error) action() string {
	if e.Kind == KindInvalidSourceURL {
		return "checking the URL"
	}
	return e.Stage.action()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or "" when err is not a pipeline error
// KindOf 返回错误类型
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
