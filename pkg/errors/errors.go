// Package errors provides structured error reporting for uikit.
//
// Collection reloads cannot meaningfully fail mid-animation, so most
// problems are reported to a global [ErrorHandler] and the operation
// degrades instead of returning an error. Programming errors that are
// unreachable in correct usage panic.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind says which part of uikit a reported error came from.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindLifecycle: a collection or scene used before Attach/Initialize or after Detach.
	KindLifecycle
	// KindRegistration: a renderer key missing from the target's registry.
	KindRegistration
	// KindRender: the render target handed back no instance.
	KindRender
	// KindMeasurement: a fitting-size query had no usable answer.
	KindMeasurement
	// KindTransition: the host could not carry out a scene change.
	KindTransition
	// KindConfig: uikit.yaml or a watched trait file failed to load.
	KindConfig
	KindPanic
)

var kindNames = [...]string{
	KindUnknown:      "unknown",
	KindLifecycle:    "lifecycle",
	KindRegistration: "registration",
	KindRender:       "render",
	KindMeasurement:  "measurement",
	KindTransition:   "transition",
	KindConfig:       "config",
	KindPanic:        "panic",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// UIError is a failure uikit recovered from and reported instead of
// returning.
type UIError struct {
	Op   string // e.g. "collection.CellForItem"
	Kind ErrorKind
	Err  error

	StackTrace string
	// Timestamp is filled in by Report when left zero.
	Timestamp time.Time
}

func (e *UIError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *UIError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a user callback.
type PanicError struct {
	Op    string
	Value any

	StackTrace string
	Timestamp  time.Time
}

func (e *PanicError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
}

// ErrorHandler is where Report and ReportPanic deliver. Implementations
// must be safe for concurrent use; the config watcher reports from its
// own goroutine.
type ErrorHandler interface {
	HandleError(err *UIError)
	HandlePanic(err *PanicError)
}

// New creates a UIError for op wrapping err.
func New(op string, kind ErrorKind, err error) *UIError {
	return &UIError{Op: op, Kind: kind, Err: err}
}

// Errorf creates a UIError for op with a formatted message.
func Errorf(op string, kind ErrorKind, format string, args ...any) *UIError {
	return &UIError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
