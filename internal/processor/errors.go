package processor

import (
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/colive/internal/composer"
	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/persona"
)

var (
	// ErrUpstream matches every failed completion call.
	ErrUpstream = errors.New("completion call failed")
	// ErrUpstreamTimeout matches completion calls that hit their deadline.
	ErrUpstreamTimeout = errors.New("completion call timed out")
)

// UpstreamError wraps a completion failure. It never reaches the extractor.
type UpstreamError struct {
	Model   string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("completion with %s timed out: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("completion with %s failed: %v", e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream || (e.Timeout && target == ErrUpstreamTimeout)
}

// Kind is the error class reported to callers next to the message.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindConfiguration  Kind = "configuration"
	KindTransport      Kind = "transport"
	KindTimeout        Kind = "timeout"
	KindInternal       Kind = "internal"
)

// KindOf classifies an error returned by Generate.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, dialogue.ErrInvalidRequest), errors.Is(err, composer.ErrUnknownVariant):
		return KindInvalidRequest
	case errors.Is(err, persona.ErrMissingPersona):
		return KindConfiguration
	case errors.Is(err, ErrUpstreamTimeout):
		return KindTimeout
	case errors.Is(err, ErrUpstream):
		return KindTransport
	default:
		return KindInternal
	}
}
