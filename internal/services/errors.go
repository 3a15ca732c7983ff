package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks caller errors: bad language, style, or limit.
	// Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks references to entities that do not exist upstream.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks a bounded wait that elapsed. Safe to retry with backoff.
	ErrTimeout = errors.New("timeout")
	// ErrUpstream marks a definite failure from an external collaborator.
	ErrUpstream = errors.New("upstream error")
)

// Wrap builds an error message that includes collaborator context while
// tagging it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an arbitrary error onto the sentinel taxonomy. Context
// deadline and cancellation errors become ErrTimeout; already-tagged errors
// keep their marker; anything else is ErrUpstream.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

// Retryable reports whether the caller may usefully retry the operation.
func Retryable(err error) bool {
	marker := Classify(err)
	return errors.Is(marker, ErrTimeout) || errors.Is(marker, ErrUpstream)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
