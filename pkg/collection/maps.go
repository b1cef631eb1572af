package collection

import "github.com/go-drift/uikit/pkg/state"

type combinedID struct{}

// CombinedID identifies every map built from whole observable values rather
// than a list of elements. It is a fixed sentinel, so such maps never change
// identity between reloads.
var CombinedID Identifier = combinedID{}

// mapCore projects a list of elements into nodes, one group per element.
type mapCore[E, N any] struct {
	id        Identifier
	elements  func() []E
	sources   []state.Subscribable
	transform func(int, E) []N
	group     func([]N) N
	sub       state.Subscription
}

// Count returns the current number of source elements.
func (m *mapCore[E, N]) Count() int {
	return len(m.elements())
}

// AllItems applies the transform to every current element, in index order,
// and returns one grouped node per element.
func (m *mapCore[E, N]) AllItems() []N {
	elems := m.elements()
	out := make([]N, 0, len(elems))
	for i, e := range elems {
		out = append(out, m.group(m.transform(i, e)))
	}
	return out
}

// SubscribeToChanges replaces any existing subscription with one that calls
// handler whenever a source changes.
func (m *mapCore[E, N]) SubscribeToChanges(handler func()) {
	if handler == nil {
		m.sub.Cancel()
		return
	}
	m.sub.Replace(state.SubscribeAll(handler, m.sources...)...)
}

// Unsubscribe releases the current subscription.
func (m *mapCore[E, N]) Unsubscribe() {
	m.sub.Cancel()
}

// Subscribed reports whether a subscription is live.
func (m *mapCore[E, N]) Subscribed() bool {
	return m.sub.Active()
}

// ID returns the map's identity: the map itself for element lists, or
// [CombinedID] for maps over whole observable values.
func (m *mapCore[E, N]) ID() Identifier {
	return m.id
}

type reactive interface {
	SubscribeToChanges(handler func())
	Unsubscribe()
}

type sectionSource interface {
	SectionNode
	reactive
	AllItems() []SectionNode
}

type itemSource interface {
	BodyNode
	reactive
	AllItems() []BodyNode
}

// SectionMap projects observable elements into section nodes.
type SectionMap[E any] struct {
	mapCore[E, SectionNode]
}

func (*SectionMap[E]) sectionNode() {}

// ItemMap projects observable elements into body nodes.
type ItemMap[E any] struct {
	mapCore[E, BodyNode]
}

func (*ItemMap[E]) bodyNode() {}

func groupSections(nodes []SectionNode) SectionNode { return SectionGroup(nodes) }
func groupBody(nodes []BodyNode) BodyNode           { return Group(nodes) }

func newSectionMap[E any](elements func() []E, transform func(int, E) []SectionNode, sources ...state.Subscribable) *SectionMap[E] {
	m := &SectionMap[E]{mapCore[E, SectionNode]{
		elements:  elements,
		sources:   sources,
		transform: transform,
		group:     groupSections,
	}}
	m.id = m
	return m
}

func newItemMap[E any](elements func() []E, transform func(int, E) []BodyNode, sources ...state.Subscribable) *ItemMap[E] {
	m := &ItemMap[E]{mapCore[E, BodyNode]{
		elements:  elements,
		sources:   sources,
		transform: transform,
		group:     groupBody,
	}}
	m.id = m
	return m
}

// NewSectionMap maps every element of src through fn.
func NewSectionMap[E any](src state.Source[[]E], fn func(int, E) []SectionNode) *SectionMap[E] {
	return newSectionMap(src.Value, fn, src)
}

// SectionMapOf maps a fixed slice through fn.
func SectionMapOf[E any](elems []E, fn func(int, E) []SectionNode) *SectionMap[E] {
	elems = append([]E(nil), elems...)
	return newSectionMap(func() []E { return elems }, fn)
}

// SectionMapFunc repeats fn once per element of src, ignoring the element.
func SectionMapFunc[E any](src state.Source[[]E], fn func() []SectionNode) *SectionMap[E] {
	return newSectionMap(src.Value, func(int, E) []SectionNode { return fn() }, src)
}

// WatchSections rebuilds fn's sections from the current value of src.
func WatchSections[T any](src state.Source[T], fn func(T) []SectionNode) *SectionMap[int] {
	m := newSectionMap(single, func(int, int) []SectionNode { return fn(src.Value()) }, src)
	m.id = CombinedID
	return m
}

// CombineSections2 rebuilds fn's sections from the latest values of a and b
// whenever either changes.
func CombineSections2[A, B any](a state.Source[A], b state.Source[B], fn func(A, B) []SectionNode) *SectionMap[int] {
	m := newSectionMap(single, func(int, int) []SectionNode {
		return fn(a.Value(), b.Value())
	}, a, b)
	m.id = CombinedID
	return m
}

// CombineSections3 is CombineSections2 over three sources.
func CombineSections3[A, B, C any](a state.Source[A], b state.Source[B], c state.Source[C], fn func(A, B, C) []SectionNode) *SectionMap[int] {
	m := newSectionMap(single, func(int, int) []SectionNode {
		return fn(a.Value(), b.Value(), c.Value())
	}, a, b, c)
	m.id = CombinedID
	return m
}

// NewItemMap maps every element of src through fn.
func NewItemMap[E any](src state.Source[[]E], fn func(int, E) []BodyNode) *ItemMap[E] {
	return newItemMap(src.Value, fn, src)
}

// ItemMapOf maps a fixed slice through fn.
func ItemMapOf[E any](elems []E, fn func(int, E) []BodyNode) *ItemMap[E] {
	elems = append([]E(nil), elems...)
	return newItemMap(func() []E { return elems }, fn)
}

// ItemMapFunc repeats fn once per element of src, ignoring the element.
func ItemMapFunc[E any](src state.Source[[]E], fn func() []BodyNode) *ItemMap[E] {
	return newItemMap(src.Value, func(int, E) []BodyNode { return fn() }, src)
}

// WatchItems rebuilds fn's body from the current value of src.
func WatchItems[T any](src state.Source[T], fn func(T) []BodyNode) *ItemMap[int] {
	m := newItemMap(single, func(int, int) []BodyNode { return fn(src.Value()) }, src)
	m.id = CombinedID
	return m
}

// CombineItems2 rebuilds fn's body from the latest values of a and b
// whenever either changes.
func CombineItems2[A, B any](a state.Source[A], b state.Source[B], fn func(A, B) []BodyNode) *ItemMap[int] {
	m := newItemMap(single, func(int, int) []BodyNode {
		return fn(a.Value(), b.Value())
	}, a, b)
	m.id = CombinedID
	return m
}

// CombineItems3 is CombineItems2 over three sources.
func CombineItems3[A, B, C any](a state.Source[A], b state.Source[B], c state.Source[C], fn func(A, B, C) []BodyNode) *ItemMap[int] {
	m := newItemMap(single, func(int, int) []BodyNode {
		return fn(a.Value(), b.Value(), c.Value())
	}, a, b, c)
	m.id = CombinedID
	return m
}

func single() []int { return []int{0} }
