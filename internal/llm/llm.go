package llm

import (
	"context"
	"errors"
)

// Client sends one prompt as the only user turn and returns the text reply.
// No conversation history is kept between calls.
type Client interface {
	Name() string
	Close() error
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions carries per-request limits. Temperature is always left at
// the provider default.
type GenerateOptions struct {
	MaxOutputTokens int
}

var ErrEmptyResponse = errors.New("llm: empty response from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
