package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while driving timelines.
//
// Runtime errors include:
//   - Stale handle: the handle's generation no longer matches its slot
//   - Frame in progress: an operation that mutates records was requested
//     while the evaluate phase is running, or a frame was started from
//     inside another frame's apply pass
//   - Callback failed: a binding or listener panicked during the apply pass
//
// The Evaluator itself never fails; it is total over validated records.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Handle identifies the affected timeline, if any.
	Handle Handle

	// Timeline is the timeline's name, if it has one.
	Timeline string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeStaleHandle indicates use of a handle after its timeline was destroyed.
	ErrCodeStaleHandle RuntimeErrorCode = "STALE_HANDLE"

	// ErrCodeFrameInProgress indicates a call that is illegal at this point of a frame.
	ErrCodeFrameInProgress RuntimeErrorCode = "FRAME_IN_PROGRESS"

	// ErrCodeCallbackFailed indicates a binding or listener panicked.
	ErrCodeCallbackFailed RuntimeErrorCode = "CALLBACK_FAILED"

	// ErrCodeTraceFailed indicates the tracer rejected a frame.
	ErrCodeTraceFailed RuntimeErrorCode = "TRACE_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.Timeline != "":
		return fmt.Sprintf("%s: %s (timeline=%s, handle=%s)", e.Code, e.Message, e.Timeline, e.Handle)
	case e.Handle.Valid():
		return fmt.Sprintf("%s: %s (handle=%s)", e.Code, e.Message, e.Handle)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsStaleHandle returns true if the error is a stale handle error.
// Uses errors.As to handle wrapped errors.
func IsStaleHandle(err error) bool {
	return hasCode(err, ErrCodeStaleHandle)
}

// IsTraceFailed returns true if the tracer rejected a frame.
func IsTraceFailed(err error) bool {
	return hasCode(err, ErrCodeTraceFailed)
}

// IsCallbackError returns true if the error came from a failed binding or
// listener.
func IsCallbackError(err error) bool {
	return hasCode(err, ErrCodeCallbackFailed)
}

// IsFrameInProgress returns true if the error rejected a call made at the
// wrong point of a frame.
func IsFrameInProgress(err error) bool {
	return hasCode(err, ErrCodeFrameInProgress)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewStaleHandleError creates a RuntimeError for a handle whose slot has
// been reclaimed or never existed.
func NewStaleHandleError(h Handle) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStaleHandle,
		Message: "handle does not refer to a live timeline",
		Handle:  h,
	}
}

// NewCallbackError wraps a recovered panic from the apply pass.
func NewCallbackError(h Handle, timeline, phase string, recovered any) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeCallbackFailed,
		Message:  fmt.Sprintf("%s panicked: %v", phase, recovered),
		Handle:   h,
		Timeline: timeline,
		Details: map[string]string{
			"phase": phase,
		},
	}
}

func newFrameInProgressError(op string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeFrameInProgress,
		Message: fmt.Sprintf("%s is not allowed during the evaluate phase or a nested frame", op),
	}
}
