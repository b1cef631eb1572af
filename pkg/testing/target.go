package testing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-drift/uikit/pkg/changeset"
	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/geometry"
)

const (
	// DefaultTargetWidth is the default logical width of a RenderTarget.
	DefaultTargetWidth = 320
	// DefaultTargetHeight is the default logical height of a RenderTarget.
	DefaultTargetHeight = 480
)

// Op is one recorded call against a RenderTarget.
type Op struct {
	Op       string                 `json:"op"`
	Kind     string                 `json:"kind,omitempty"`
	Key      string                 `json:"key,omitempty"`
	Sections []int                  `json:"sections,omitempty"`
	Paths    []collection.IndexPath `json:"paths,omitempty"`
}

// SectionState is the target's view of one section.
type SectionState struct {
	ID    collection.Identifier   `json:"id"`
	Items []collection.Identifier `json:"items"`
}

type registration struct {
	kind collection.ElementKind
	key  string
}

// ScrollCall records a scroll request.
type ScrollCall struct {
	Offset   geometry.Point
	At       collection.IndexPath
	Position collection.ScrollPosition
	Animated bool
}

// RenderTarget is an in-memory collection.RenderTarget.
//
// It records every call, and checks each batch the way a real sectioned view
// does: the operations are replayed against the sections it showed before
// the batch, and the result must match what the data source reports after
// it. Batch completions are held until Settle, which models completion on a
// later turn of the event loop.
type RenderTarget struct {
	t TestingT

	mu        sync.Mutex
	ds        collection.DataSource
	factories map[registration]func() any
	created   map[registration]int
	ops       []Op
	batches   int
	reloads   int
	pending   []func(bool)
	shown     []SectionState
	errs      []error

	bounds       geometry.Rect
	contentInset geometry.EdgeInsets
	safeArea     geometry.EdgeInsets
	layout       collection.FlowLayout
	offset       geometry.Point
	frames       map[collection.IndexPath]geometry.Rect
	scrolls      []ScrollCall
}

// NewRenderTarget creates a target with the default size. Inconsistent
// batches are reported to t when it is non-nil.
func NewRenderTarget(t TestingT) *RenderTarget {
	return &RenderTarget{
		t:         t,
		factories: make(map[registration]func() any),
		created:   make(map[registration]int),
		bounds:    geometry.RectFromXYWH(0, 0, DefaultTargetWidth, DefaultTargetHeight),
		frames:    make(map[collection.IndexPath]geometry.Rect),
	}
}

// SetDataSource implements collection.RenderTarget.
func (r *RenderTarget) SetDataSource(ds collection.DataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ds = ds
	if ds == nil {
		r.shown = nil
	}
}

// Register implements collection.RenderTarget.
func (r *RenderTarget) Register(kind collection.ElementKind, key string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[registration{kind, key}] = factory
	r.ops = append(r.ops, Op{Op: "register", Kind: kind.String(), Key: key})
}

// Dequeue implements collection.RenderTarget. It panics for a pair that was
// never registered.
func (r *RenderTarget) Dequeue(kind collection.ElementKind, key string, at collection.IndexPath) any {
	r.mu.Lock()
	reg := registration{kind, key}
	factory, ok := r.factories[reg]
	if !ok {
		r.mu.Unlock()
		panic(fmt.Sprintf("uikittest: dequeue of unregistered %s %q at %v", kind, key, at))
	}
	r.created[reg]++
	r.mu.Unlock()
	return factory()
}

// ReloadData implements collection.RenderTarget.
func (r *RenderTarget) ReloadData() {
	r.mu.Lock()
	r.reloads++
	r.ops = append(r.ops, Op{Op: "reloadData"})
	ds := r.ds
	r.mu.Unlock()

	shown := capture(ds)
	r.mu.Lock()
	r.shown = shown
	r.mu.Unlock()
}

// PerformBatchUpdates implements collection.RenderTarget.
func (r *RenderTarget) PerformBatchUpdates(updates func(collection.BatchUpdater), completion func(bool)) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		r.failLocked(errors.New("batch issued while another batch is in flight"))
	}
	r.batches++
	ds := r.ds
	before := r.shown
	r.mu.Unlock()

	rec := &batchRecorder{}
	if updates != nil {
		updates(rec)
	}
	after := capture(ds)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, rec.ops...)
	if err := replay(before, after, rec.ops); err != nil {
		r.failLocked(err)
	}
	r.shown = after
	if completion != nil {
		r.pending = append(r.pending, completion)
	}
}

// Settle delivers held batch completions, including those of batches issued
// by earlier completions, and returns how many it delivered.
func (r *RenderTarget) Settle() int {
	n := 0
	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.mu.Unlock()
			return n
		}
		done := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()

		done(true)
		n++
	}
}

// InFlight returns the number of batches awaiting completion.
func (r *RenderTarget) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Ops returns the recorded operations.
func (r *RenderTarget) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// StructuralOps returns the recorded operations other than registrations.
func (r *RenderTarget) StructuralOps() []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Op != "register" {
			out = append(out, op)
		}
	}
	return out
}

// ResetOps forgets the recorded operations.
func (r *RenderTarget) ResetOps() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

// Batches returns how many batches were issued.
func (r *RenderTarget) Batches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

// Reloads returns how many full reloads were issued.
func (r *RenderTarget) Reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

// Shown returns the sections the target currently displays.
func (r *RenderTarget) Shown() []SectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SectionState(nil), r.shown...)
}

// Created returns how many instances were dequeued for (kind, key).
func (r *RenderTarget) Created(kind collection.ElementKind, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[registration{kind, key}]
}

// Err returns every consistency failure seen so far, joined.
func (r *RenderTarget) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

func (r *RenderTarget) failLocked(err error) {
	r.errs = append(r.errs, err)
	if r.t != nil {
		r.t.Errorf("uikittest: %v", err)
	}
}

// SetBounds sets the target's frame.
func (r *RenderTarget) SetBounds(bounds geometry.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bounds = bounds
}

// SetContentInset sets the content inset.
func (r *RenderTarget) SetContentInset(inset geometry.EdgeInsets) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contentInset = inset
}

// SetSafeAreaInsets sets the safe-area insets.
func (r *RenderTarget) SetSafeAreaInsets(inset geometry.EdgeInsets) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.safeArea = inset
}

// SetLayout sets the flow layout defaults.
func (r *RenderTarget) SetLayout(layout collection.FlowLayout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout = layout
}

// SetItemFrame records the laid-out frame of the item at.
func (r *RenderTarget) SetItemFrame(at collection.IndexPath, frame geometry.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[at] = frame
}

// Scrolls returns the recorded scroll requests.
func (r *RenderTarget) Scrolls() []ScrollCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScrollCall(nil), r.scrolls...)
}

func (r *RenderTarget) Bounds() geometry.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds
}

func (r *RenderTarget) ContentInset() geometry.EdgeInsets {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contentInset
}

func (r *RenderTarget) SafeAreaInsets() geometry.EdgeInsets {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.safeArea
}

func (r *RenderTarget) Layout() collection.FlowLayout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

func (r *RenderTarget) ContentOffset() geometry.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

// SetContentOffset records the request and moves the content immediately.
func (r *RenderTarget) SetContentOffset(offset geometry.Point, animated bool) {
	r.mu.Lock()
	r.offset = offset
	r.scrolls = append(r.scrolls, ScrollCall{Offset: offset, Animated: animated})
	ds := r.ds
	r.mu.Unlock()

	if s, ok := ds.(interface{ DidScroll(geometry.Point) }); ok {
		s.DidScroll(offset)
	}
}

func (r *RenderTarget) ItemFrame(at collection.IndexPath) (geometry.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame, ok := r.frames[at]
	return frame, ok
}

// ScrollToItem records the request without moving the content.
func (r *RenderTarget) ScrollToItem(at collection.IndexPath, position collection.ScrollPosition, animated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolls = append(r.scrolls, ScrollCall{At: at, Position: position, Animated: animated})
}

var _ collection.RenderTarget = (*RenderTarget)(nil)

type batchRecorder struct {
	ops []Op
}

func (b *batchRecorder) DeleteSections(sections []int) {
	b.ops = append(b.ops, Op{Op: "deleteSections", Sections: append([]int(nil), sections...)})
}

func (b *batchRecorder) InsertSections(sections []int) {
	b.ops = append(b.ops, Op{Op: "insertSections", Sections: append([]int(nil), sections...)})
}

func (b *batchRecorder) MoveSection(from, to int) {
	b.ops = append(b.ops, Op{Op: "moveSection", Sections: []int{from, to}})
}

func (b *batchRecorder) DeleteItems(paths []collection.IndexPath) {
	b.ops = append(b.ops, Op{Op: "deleteItems", Paths: append([]collection.IndexPath(nil), paths...)})
}

func (b *batchRecorder) InsertItems(paths []collection.IndexPath) {
	b.ops = append(b.ops, Op{Op: "insertItems", Paths: append([]collection.IndexPath(nil), paths...)})
}

func (b *batchRecorder) ReloadItems(paths []collection.IndexPath) {
	b.ops = append(b.ops, Op{Op: "reloadItems", Paths: append([]collection.IndexPath(nil), paths...)})
}

func (b *batchRecorder) MoveItem(from, to collection.IndexPath) {
	b.ops = append(b.ops, Op{Op: "moveItem", Paths: []collection.IndexPath{from, to}})
}

// capture reads the identifiers ds currently reports.
func capture(ds collection.DataSource) []SectionState {
	if ds == nil {
		return nil
	}
	n := ds.NumberOfSections()
	out := make([]SectionState, n)
	for s := 0; s < n; s++ {
		count := ds.NumberOfItems(s)
		items := make([]collection.Identifier, count)
		for i := 0; i < count; i++ {
			items[i] = ds.ItemIdentifier(collection.IndexPath{Section: s, Item: i})
		}
		out[s] = SectionState{ID: ds.SectionIdentifier(s), Items: items}
	}
	return out
}

// replay applies ops to before and checks the result against after.
// Section operations run first; item operations address sections by their
// index before the batch (deletes, reloads, move sources) or after it
// (inserts, move destinations).
func replay(before, after []SectionState, ops []Op) error {
	var sections changeset.Changeset
	for _, op := range ops {
		switch op.Op {
		case "deleteSections":
			sections.Removals = append(sections.Removals, op.Sections...)
		case "insertSections":
			sections.Inserts = append(sections.Inserts, op.Sections...)
		case "moveSection":
			sections.Moves = append(sections.Moves, changeset.Move{From: op.Sections[0], To: op.Sections[1]})
		}
	}

	origin := make([]int, len(before))
	for i := range origin {
		origin[i] = i
	}
	placeholder := make([]int, len(after))
	for j := range placeholder {
		placeholder[j] = -1
	}
	mapped, err := changeset.Apply(origin, placeholder, sections)
	if err != nil {
		return fmt.Errorf("invalid section updates: %w", err)
	}
	newIndex := make(map[int]int, len(mapped))
	for j, i := range mapped {
		if i >= 0 {
			newIndex[i] = j
		}
	}

	items := make(map[int]*changeset.Changeset)
	reloads := make(map[int][]int)
	itemsOf := func(j int) *changeset.Changeset {
		if items[j] == nil {
			items[j] = &changeset.Changeset{}
		}
		return items[j]
	}
	retained := func(old int) (int, error) {
		j, ok := newIndex[old]
		if !ok {
			return 0, fmt.Errorf("item update in section %d, which is deleted or out of range", old)
		}
		return j, nil
	}
	for _, op := range ops {
		switch op.Op {
		case "deleteItems":
			for _, p := range op.Paths {
				j, err := retained(p.Section)
				if err != nil {
					return err
				}
				cs := itemsOf(j)
				cs.Removals = append(cs.Removals, p.Item)
			}
		case "reloadItems":
			for _, p := range op.Paths {
				j, err := retained(p.Section)
				if err != nil {
					return err
				}
				reloads[j] = append(reloads[j], p.Item)
			}
		case "insertItems":
			for _, p := range op.Paths {
				if p.Section < 0 || p.Section >= len(mapped) || mapped[p.Section] < 0 {
					return fmt.Errorf("item insert into section %d, which is inserted or out of range", p.Section)
				}
				cs := itemsOf(p.Section)
				cs.Inserts = append(cs.Inserts, p.Item)
			}
		case "moveItem":
			from, to := op.Paths[0], op.Paths[1]
			j, err := retained(from.Section)
			if err != nil {
				return err
			}
			if j != to.Section {
				return fmt.Errorf("item move %v -> %v crosses sections", from, to)
			}
			cs := itemsOf(j)
			cs.Moves = append(cs.Moves, changeset.Move{From: from.Item, To: to.Item})
		}
	}

	for j, i := range mapped {
		if i < 0 {
			continue
		}
		cs := items[j]
		if cs == nil {
			cs = &changeset.Changeset{}
		}
		got, err := changeset.Apply(before[i].Items, after[j].Items, *cs)
		if err != nil {
			return fmt.Errorf("invalid item updates in section %d: %w", j, err)
		}
		for n, id := range got {
			if id != after[j].Items[n] {
				return fmt.Errorf("section %d after batch shows %v, data source has %v", j, got, after[j].Items)
			}
		}
		if err := checkReloads(before[i].Items, reloads[j], *cs); err != nil {
			return fmt.Errorf("section %d: %w", j, err)
		}
		if before[i].ID != after[j].ID {
			return fmt.Errorf("section %d after batch is %v, data source has %v", j, before[i].ID, after[j].ID)
		}
	}
	return nil
}

// checkReloads rejects reloads of items that the same batch deletes or moves.
func checkReloads(before []collection.Identifier, reloads []int, cs changeset.Changeset) error {
	touched := make(map[int]bool)
	for _, i := range cs.Removals {
		touched[i] = true
	}
	for _, m := range cs.Moves {
		touched[m.From] = true
	}
	for _, i := range reloads {
		if i < 0 || i >= len(before) {
			return fmt.Errorf("reload of item %d out of range [0,%d)", i, len(before))
		}
		if touched[i] {
			return fmt.Errorf("item %d is both reloaded and deleted or moved", i)
		}
	}
	return nil
}
