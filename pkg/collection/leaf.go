package collection

import (
	"fmt"

	"github.com/go-drift/uikit/pkg/errors"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
)

// Cell is an item rendered by instances of C.
//
// New builds an instance; the render target pools instances it creates and
// the size cache keeps one more as a measuring template. Configure applies
// the item's content to an instance, whether it is about to be shown or
// measured.
type Cell[C sizing.Fitter] struct {
	ItemBase

	ID Identifier
	// Content is compared across reloads; a change reloads the cell in place.
	Content any
	New       func(frame geometry.Size) C
	Configure func(C)
	// SizeFunc overrides template measurement when set.
	SizeFunc func(c sizing.Constraints) geometry.Size

	OnWillDisplay func()
	OnSelect      func()
	OnDeselect    func()
	OnHighlight   func()
	OnUnhighlight func()
}

func (c Cell[C]) Identity() Identifier { return c.ID }
func (c Cell[C]) ReuseKey() string     { return sizing.TypeKey[C]() }
func (c Cell[C]) ContentValue() any    { return c.Content }

func (c Cell[C]) Factory() func() any {
	return factory(c.New)
}

func (c Cell[C]) Render(target RenderTarget, kind ElementKind, at IndexPath) any {
	return render(target, kind, at, c.ReuseKey(), c.Configure)
}

func (c Cell[C]) Size(sc sizing.Constraints) geometry.Size {
	return measure(sc, c.ReuseKey(), c.ID, c.New, c.Configure, c.SizeFunc)
}

func (c Cell[C]) WillDisplay()    { call(c.OnWillDisplay) }
func (c Cell[C]) DidSelect()      { call(c.OnSelect) }
func (c Cell[C]) DidDeselect()    { call(c.OnDeselect) }
func (c Cell[C]) DidHighlight()   { call(c.OnHighlight) }
func (c Cell[C]) DidUnhighlight() { call(c.OnUnhighlight) }

// View is a header or footer rendered by instances of V.
type View[V sizing.Fitter] struct {
	SupplementaryBase

	ID        Identifier
	Content   any
	New       func(frame geometry.Size) V
	Configure func(V)
	SizeFunc  func(c sizing.Constraints) geometry.Size
}

func (v View[V]) Identity() Identifier { return v.ID }
func (v View[V]) ReuseKey() string     { return sizing.TypeKey[V]() }
func (v View[V]) ContentValue() any    { return v.Content }

func (v View[V]) Factory() func() any {
	return factory(v.New)
}

func (v View[V]) Render(target RenderTarget, kind ElementKind, at IndexPath) any {
	return render(target, kind, at, v.ReuseKey(), v.Configure)
}

func (v View[V]) Size(sc sizing.Constraints) geometry.Size {
	return measure(sc, v.ReuseKey(), v.ID, v.New, v.Configure, v.SizeFunc)
}

func factory[T any](newFn func(geometry.Size) T) func() any {
	if newFn == nil {
		return nil
	}
	return func() any { return newFn(geometry.Size{}) }
}

func render[T any](target RenderTarget, kind ElementKind, at IndexPath, key string, configure func(T)) any {
	inst := target.Dequeue(kind, key, at)
	typed, ok := inst.(T)
	if !ok {
		errors.Report(&errors.UIError{
			Op:   "collection.Render",
			Kind: errors.KindRender,
			Err:  fmt.Errorf("dequeued %T for %s %s at %v", inst, kind, key, at),
		})
		return inst
	}
	if configure != nil {
		configure(typed)
	}
	return typed
}

func measure[T sizing.Fitter](
	sc sizing.Constraints,
	key string,
	id Identifier,
	newFn func(geometry.Size) T,
	configure func(T),
	override func(sizing.Constraints) geometry.Size,
) geometry.Size {
	if override != nil {
		return override(sc)
	}
	if newFn == nil {
		errors.Report(&errors.UIError{
			Op:   "collection.Size",
			Kind: errors.KindMeasurement,
			Err:  fmt.Errorf("%s has no constructor to measure with", key),
		})
		return geometry.Size{}
	}
	return sizing.Measure(sc, key, id, newFn, configure)
}

// call runs a leaf's display callback. A panicking callback is reported
// and does not interrupt the target's event delivery.
func call(fn func()) {
	errors.Guard("collection.ItemDelegate", fn)
}
