package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies sync failures. Only KindUnreachable changes Mode.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindUnreachable
	KindServerRejected
	KindValidationFailed
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindServerRejected:
		return "server_rejected"
	case KindValidationFailed:
		return "validation_failed"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

type SyncError struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err. Bare context deadline errors count as
// timeouts.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// MessageOf returns the human readable part of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var se *SyncError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		if se.Err != nil {
			return se.Err.Error()
		}
	}
	return err.Error()
}
