package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/geometry"
)

// batchSettledMsg tells the model to finish the batches applied on an
// earlier turn of the event loop.
type batchSettledMsg struct{}

type factoryKey struct {
	kind collection.ElementKind
	key  string
}

type instanceKey struct {
	factoryKey
	at collection.IndexPath
}

// terminalTarget is a collection.RenderTarget drawn into a terminal. One
// point is one character cell. Batches apply immediately and complete on the
// next turn of the bubbletea loop.
type terminalTarget struct {
	ds        collection.DataSource
	factories map[factoryKey]func() any
	instances map[instanceKey]any

	bounds geometry.Rect
	layout collection.FlowLayout
	offset geometry.Point

	completions []func(bool)
	// shown holds the item identifiers as of the last applied update.
	shown [][]collection.Identifier
	// changed holds identifiers inserted, moved, or reloaded by the last batch.
	changed map[collection.Identifier]bool
	batches int
	reloads int
}

func newTerminalTarget(width, height int, layout collection.FlowLayout) *terminalTarget {
	return &terminalTarget{
		factories: make(map[factoryKey]func() any),
		instances: make(map[instanceKey]any),
		bounds:    geometry.RectFromXYWH(0, 0, float64(width), float64(height)),
		layout:    layout,
		changed:   make(map[collection.Identifier]bool),
	}
}

func (t *terminalTarget) SetDataSource(ds collection.DataSource) { t.ds = ds }

func (t *terminalTarget) Register(kind collection.ElementKind, key string, factory func() any) {
	t.factories[factoryKey{kind, key}] = factory
}

// Dequeue reuses the instance last shown at the same index path. The
// collection configures it again before returning it.
func (t *terminalTarget) Dequeue(kind collection.ElementKind, key string, at collection.IndexPath) any {
	k := instanceKey{factoryKey{kind, key}, at}
	if v, ok := t.instances[k]; ok {
		return v
	}
	factory, ok := t.factories[k.factoryKey]
	if !ok {
		panic(fmt.Sprintf("uikit-demo: %s %q dequeued before registration", kind, key))
	}
	v := factory()
	t.instances[k] = v
	return v
}

func (t *terminalTarget) ReloadData() {
	t.reloads++
	clear(t.changed)
	t.capture()
}

func (t *terminalTarget) capture() {
	t.shown = t.shown[:0]
	if t.ds == nil {
		return
	}
	for s := 0; s < t.ds.NumberOfSections(); s++ {
		ids := make([]collection.Identifier, t.ds.NumberOfItems(s))
		for i := range ids {
			ids[i] = t.ds.ItemIdentifier(collection.IndexPath{Section: s, Item: i})
		}
		t.shown = append(t.shown, ids)
	}
}

func (t *terminalTarget) PerformBatchUpdates(updates func(collection.BatchUpdater), completion func(bool)) {
	t.batches++
	clear(t.changed)
	if updates != nil {
		updates(&changeRecorder{t})
	}
	t.capture()
	if completion != nil {
		t.completions = append(t.completions, completion)
	}
}

// settleCmd returns a command that delivers batchSettledMsg when batches
// are waiting to complete.
func (t *terminalTarget) settleCmd() tea.Cmd {
	if len(t.completions) == 0 {
		return nil
	}
	return func() tea.Msg { return batchSettledMsg{} }
}

// settle runs the waiting completions. Completions that start follow-up
// batches queue them for the next turn.
func (t *terminalTarget) settle() {
	waiting := t.completions
	t.completions = nil
	for _, fn := range waiting {
		fn(true)
	}
}

func (t *terminalTarget) Bounds() geometry.Rect               { return t.bounds }
func (t *terminalTarget) ContentInset() geometry.EdgeInsets   { return geometry.EdgeInsets{} }
func (t *terminalTarget) SafeAreaInsets() geometry.EdgeInsets { return geometry.EdgeInsets{} }
func (t *terminalTarget) Layout() collection.FlowLayout       { return t.layout }
func (t *terminalTarget) ContentOffset() geometry.Point       { return t.offset }

func (t *terminalTarget) SetContentOffset(offset geometry.Point, animated bool) {
	t.offset = geometry.Point{X: max(0, offset.X), Y: max(0, offset.Y)}
}

func (t *terminalTarget) resize(width, height int) {
	t.bounds = geometry.RectFromXYWH(0, 0, float64(width), float64(height))
}

// ItemFrame lays the items out top to bottom to find at.
func (t *terminalTarget) ItemFrame(at collection.IndexPath) (geometry.Rect, bool) {
	if t.ds == nil || at.Section >= t.ds.NumberOfSections() || at.Item >= t.ds.NumberOfItems(at.Section) {
		return geometry.Rect{}, false
	}
	y := 0.0
	for s := 0; s <= at.Section; s++ {
		inset := t.ds.SectionInset(s)
		y += inset.Top + t.ds.HeaderSize(s).Height
		n := t.ds.NumberOfItems(s)
		for i := 0; i < n; i++ {
			p := collection.IndexPath{Section: s, Item: i}
			size := t.ds.SizeForItem(p)
			if p == at {
				return geometry.Rect{Origin: geometry.Point{X: inset.Left, Y: y}, Size: size}, true
			}
			y += size.Height + t.ds.MinimumLineSpacing(s)
		}
		y += t.ds.FooterSize(s).Height + inset.Bottom
	}
	return geometry.Rect{}, false
}

func (t *terminalTarget) ScrollToItem(at collection.IndexPath, position collection.ScrollPosition, animated bool) {
	frame, ok := t.ItemFrame(at)
	if !ok {
		return
	}
	y := t.offset.Y
	switch position {
	case collection.ScrollTop:
		y = frame.Origin.Y
	case collection.ScrollBottom:
		y = frame.Origin.Y + frame.Size.Height - t.bounds.Size.Height
	case collection.ScrollCenteredVertically:
		y = frame.Origin.Y + frame.Size.Height/2 - t.bounds.Size.Height/2
	default:
		if frame.Origin.Y < y {
			y = frame.Origin.Y
		} else if bottom := frame.Origin.Y + frame.Size.Height; bottom > y+t.bounds.Size.Height {
			y = bottom - t.bounds.Size.Height
		}
	}
	t.SetContentOffset(geometry.Point{X: t.offset.X, Y: y}, animated)
}

// changeRecorder marks rows touched by a batch so the view can flash them.
// Destination indices resolve against the data source, which already holds
// the new state; reload indices resolve against the previous capture.
type changeRecorder struct{ t *terminalTarget }

func (r *changeRecorder) mark(paths ...collection.IndexPath) {
	for _, p := range paths {
		if id := r.t.ds.ItemIdentifier(p); id != nil {
			r.t.changed[id] = true
		}
	}
}

func (r *changeRecorder) DeleteSections([]int)                     {}
func (r *changeRecorder) InsertSections([]int)                     {}
func (r *changeRecorder) MoveSection(int, int)                     {}
func (r *changeRecorder) DeleteItems([]collection.IndexPath)       {}
func (r *changeRecorder) InsertItems(paths []collection.IndexPath) { r.mark(paths...) }
func (r *changeRecorder) MoveItem(_, to collection.IndexPath)      { r.mark(to) }

func (r *changeRecorder) ReloadItems(paths []collection.IndexPath) {
	for _, p := range paths {
		if p.Section < len(r.t.shown) && p.Item < len(r.t.shown[p.Section]) {
			r.t.changed[r.t.shown[p.Section][p.Item]] = true
		}
	}
}

var _ collection.RenderTarget = (*terminalTarget)(nil)
