package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = &LogHandler{}
)

// SetHandler installs h as the global handler and returns the previous
// one. Nil restores a LogHandler on slog.Default().
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := handler
	handler = h
	return prev
}

func current() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report sends err to the global handler, stamping it when Timestamp is
// zero. A nil err is ignored.
func Report(err *UIError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	current().HandleError(err)
}

// ReportPanic sends err to the global handler. A nil err is ignored.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	current().HandlePanic(err)
}

// Recover reports a panic in progress. Defer it directly:
//
//	defer errors.Recover("config.Watcher.Run")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
	}
}

// Guard runs fn, reporting a panic instead of propagating it. It returns
// false when fn panicked. Callers use it around user callbacks whose
// failure must not abort a reload or a watcher loop.
func Guard(op string, fn func()) (ok bool) {
	if fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
			ok = false
		}
	}()
	fn()
	return true
}

// CaptureStack returns the caller's stack, one "function\n\tfile:line"
// entry per frame, without the runtime and errors package frames that
// lead to it.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

const pkgPath = "github.com/go-drift/uikit/pkg/errors"

func skipFrame(function string) bool {
	if strings.HasPrefix(function, "runtime.") {
		return true
	}
	for _, name := range []string{".Guard", ".Recover", ".CaptureStack"} {
		if strings.HasPrefix(function, pkgPath+name) {
			return true
		}
	}
	return false
}
