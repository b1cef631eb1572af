package collection

import "github.com/go-drift/uikit/pkg/state"

// LoadKind is the phase of a LoadState.
type LoadKind int

const (
	LoadLoading LoadKind = iota
	LoadData
	LoadEmpty
	LoadStub
	LoadError
)

func (k LoadKind) String() string {
	switch k {
	case LoadData:
		return "data"
	case LoadEmpty:
		return "empty"
	case LoadStub:
		return "stub"
	case LoadError:
		return "error"
	default:
		return "loading"
	}
}

// StubOptions is an application-defined bit set describing a placeholder.
type StubOptions uint

// Has reports whether every bit of o is set.
func (s StubOptions) Has(o StubOptions) bool {
	return s&o == o
}

// LoadState is the lifecycle of data backing a collection: loading, loaded,
// empty, a placeholder stub, or failed.
type LoadState[T any] struct {
	Kind LoadKind
	Data T
	Stub StubOptions
	Err  error
}

func Loading[T any]() LoadState[T]              { return LoadState[T]{Kind: LoadLoading} }
func Loaded[T any](data T) LoadState[T]         { return LoadState[T]{Kind: LoadData, Data: data} }
func Empty[T any]() LoadState[T]                { return LoadState[T]{Kind: LoadEmpty} }
func Stub[T any](opts StubOptions) LoadState[T] { return LoadState[T]{Kind: LoadStub, Stub: opts} }
func Failed[T any](err error) LoadState[T]      { return LoadState[T]{Kind: LoadError, Err: err} }

// Value returns the data if the state is loaded.
func (s LoadState[T]) Value() (T, bool) {
	if s.Kind != LoadData {
		var zero T
		return zero, false
	}
	return s.Data, true
}

func (s LoadState[T]) IsLoading() bool { return s.Kind == LoadLoading }
func (s LoadState[T]) IsData() bool    { return s.Kind == LoadData }
func (s LoadState[T]) IsStub() bool    { return s.Kind == LoadStub }
func (s LoadState[T]) IsError() bool   { return s.Kind == LoadError }

// Equal compares kinds only; two loaded states with different data are equal.
func (s LoadState[T]) Equal(other LoadState[T]) bool {
	return s.Kind == other.Kind
}

// NewWithState builds a collection whose sections are rebuilt from the
// current load state each time it changes.
func NewWithState[T any](src state.Source[LoadState[T]], fn func(LoadState[T]) []SectionNode, opts ...Option) *Collection {
	return New([]SectionNode{WatchSections(src, fn)}, opts...)
}

// NewBodyWithState is NewWithState for a single section with identifier 0.
func NewBodyWithState[T any](src state.Source[LoadState[T]], fn func(LoadState[T]) []BodyNode, opts ...Option) *Collection {
	return New([]SectionNode{
		WatchSections(src, func(s LoadState[T]) []SectionNode {
			return []SectionNode{Section{ID: 0, Body: fn(s)}}
		}),
	}, opts...)
}
