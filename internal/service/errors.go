package service

import (
	"errors"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
)

// noteError maps repository errors onto response codes
func noteError(err error, fallback *code.Code) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return code.ErrorNoteNotFound
	case errors.Is(err, domain.ErrNoteTitleEmpty):
		return code.ErrorNoteTitleRequired
	case errors.Is(err, domain.ErrNoteDescriptionEmpty):
		return code.ErrorNoteDescriptionRequired
	}
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	return fallback.WithDetails(err.Error())
}
