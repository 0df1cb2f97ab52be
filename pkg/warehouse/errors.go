package warehouse

import (
	"errors"
	"fmt"
)

// Sentinel errors for categorization with errors.Is.
var (
	// ErrResourceLimit indicates the document exceeds a hard cap.
	// Raised before any index is built; callers must reject the document.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrReentrancy indicates DispatchAll was invoked while already
	// dispatching, or again after the instance already ran.
	ErrReentrancy = errors.New("dispatch already started")

	// ErrRegistryFrozen indicates a registration attempt after the first
	// dispatch began.
	ErrRegistryFrozen = errors.New("collector registration is frozen")

	// ErrNotDispatched indicates FinalizeAll was called before DispatchAll.
	ErrNotDispatched = errors.New("warehouse has not been dispatched")

	// ErrFinalized indicates the instance was already drained.
	ErrFinalized = errors.New("warehouse already finalized")
)

// LimitExceededError reports which document-wide cap was exceeded.
type LimitExceededError struct {
	// Limit names the violated cap ("tokens", "bytes", "nesting").
	Limit string

	// Actual is the measured value.
	Actual int

	// Max is the configured cap.
	Max int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("resource limit exceeded: %s %d > max %d", e.Limit, e.Actual, e.Max)
}

func (e *LimitExceededError) Unwrap() error { return ErrResourceLimit }

// ReentrancyError reports an invalid DispatchAll transition.
type ReentrancyError struct {
	// State is the warehouse state at the time of the call.
	State State
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("dispatch already started: warehouse is %s", e.State)
}

func (e *ReentrancyError) Unwrap() error { return ErrReentrancy }

// ErrorKind classifies a recorded collector failure.
type ErrorKind string

const (
	// ErrorKindError is an error returned from a collector callback.
	ErrorKindError ErrorKind = "error"

	// ErrorKindPanic is a recovered panic inside a collector callback.
	ErrorKindPanic ErrorKind = "panic"

	// ErrorKindTimeout is a callback that exceeded its wall-clock budget.
	ErrorKindTimeout ErrorKind = "timeout"
)

// CollectorError is one isolated collector failure recorded during dispatch.
// Dispatch continues after recording it unless strict mode is enabled.
type CollectorError struct {
	// Collector is the name of the failing collector.
	Collector string `json:"collector"`

	// TokenIndex is the token being dispatched, or -1 for Finalize.
	TokenIndex int `json:"token_index"`

	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// Err is the underlying error (a synthesized one for panics/timeouts).
	Err error `json:"-"`
}

func (e CollectorError) Error() string {
	return fmt.Sprintf("collector %s: %s at token %d: %v", e.Collector, e.Kind, e.TokenIndex, e.Err)
}

func (e CollectorError) Unwrap() error { return e.Err }
