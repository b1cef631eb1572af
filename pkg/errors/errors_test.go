package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every report delivered while it is installed.
type recorder struct {
	errs   []*UIError
	panics []*PanicError
}

func (r *recorder) HandleError(err *UIError)    { r.errs = append(r.errs, err) }
func (r *recorder) HandlePanic(err *PanicError) { r.panics = append(r.panics, err) }

func install(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	prev := SetHandler(r)
	t.Cleanup(func() { SetHandler(prev) })
	return r
}

func TestUIError_MessageAndCause(t *testing.T) {
	cause := stderrors.New("nil cell")
	err := New("collection.CellForItem", KindRender, cause)

	assert.Equal(t, "collection.CellForItem [render]: nil cell", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *UIError
	wrapped := Errorf("scene.SetTab", KindTransition, "tab %d unavailable", 3)
	require.ErrorAs(t, error(wrapped), &target)
	assert.Equal(t, KindTransition, target.Kind)
	assert.Equal(t, "scene.SetTab [transition]: tab 3 unavailable", wrapped.Error())
}

func TestErrorKind_String(t *testing.T) {
	names := map[ErrorKind]string{
		KindUnknown:      "unknown",
		KindLifecycle:    "lifecycle",
		KindRegistration: "registration",
		KindRender:       "render",
		KindMeasurement:  "measurement",
		KindTransition:   "transition",
		KindConfig:       "config",
		KindPanic:        "panic",
		ErrorKind(-1):    "unknown",
		ErrorKind(99):    "unknown",
	}
	for kind, want := range names {
		assert.Equal(t, want, kind.String(), "kind %d", int(kind))
	}
}

func TestPanicError_Message(t *testing.T) {
	assert.Equal(t, "panic: oops", (&PanicError{Value: "oops"}).Error())
	assert.Equal(t, "panic in scene.Perform: oops", (&PanicError{Op: "scene.Perform", Value: "oops"}).Error())
}

func TestReport_StampsAndDelivers(t *testing.T) {
	r := install(t)

	Report(New("collection.Attach", KindLifecycle, stderrors.New("not attached")))
	ReportPanic(&PanicError{Op: "collection.ItemDelegate", Value: 7})
	Report(nil)
	ReportPanic(nil)

	require.Len(t, r.errs, 1)
	require.Len(t, r.panics, 1)
	assert.Equal(t, "collection.Attach", r.errs[0].Op)
	assert.False(t, r.errs[0].Timestamp.IsZero())
	assert.Equal(t, 7, r.panics[0].Value)
	assert.False(t, r.panics[0].Timestamp.IsZero())
}

func TestRecover_ReportsDeferredPanic(t *testing.T) {
	r := install(t)

	func() {
		defer Recover("config.Watcher.Run")
		panic("watch loop")
	}()

	require.Len(t, r.panics, 1)
	assert.Equal(t, "config.Watcher.Run", r.panics[0].Op)
	assert.Equal(t, "watch loop", r.panics[0].Value)
	assert.Contains(t, r.panics[0].StackTrace, "TestRecover_ReportsDeferredPanic")
}

func TestGuard(t *testing.T) {
	r := install(t)

	ran := false
	assert.True(t, Guard("config.Watcher.OnChange", func() { ran = true }))
	assert.True(t, ran)
	assert.True(t, Guard("nil", nil), "a nil fn is not a failure")
	assert.Empty(t, r.panics)

	assert.False(t, Guard("config.Watcher.OnChange", func() { panic(42) }))
	require.Len(t, r.panics, 1)
	assert.Equal(t, 42, r.panics[0].Value)
	assert.Equal(t, "config.Watcher.OnChange", r.panics[0].Op)
	assert.Contains(t, r.panics[0].StackTrace, "TestGuard")
	assert.NotContains(t, r.panics[0].StackTrace, "errors.Guard")
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	assert.Contains(t, stack, "pkg/errors.TestCaptureStack")
	assert.NotContains(t, stack, "errors.CaptureStack")
	assert.NotContains(t, stack, "\nruntime.")
}

func TestSetHandler_NilRestoresLogHandler(t *testing.T) {
	install(t)
	SetHandler(nil)
	assert.IsType(t, &LogHandler{}, current())
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleError(&UIError{Op: "collection.Attach", Kind: KindLifecycle, Err: stderrors.New("detached"), StackTrace: "frame"})
	assert.NotContains(t, buf.String(), "stack=", "stacks are verbose-only")

	h.Verbose = true
	h.HandleError(&UIError{Op: "collection.Attach", Kind: KindLifecycle, Err: stderrors.New("detached"), StackTrace: "frame"})
	h.HandlePanic(&PanicError{Op: "scene.Perform", Value: "bad"})
	h.HandleError(nil)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "op=collection.Attach", "kind=lifecycle", "err=detached", "stack=frame", "op=scene.Perform", "value=bad"} {
		assert.Contains(t, out, want)
	}
}
