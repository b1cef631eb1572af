package collection_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
	"github.com/go-drift/uikit/pkg/state"
	uikittest "github.com/go-drift/uikit/pkg/testing"
)

func listCollection(items *state.Observable[[]string], opts ...collection.Option) *collection.Collection {
	return collection.NewBody([]collection.BodyNode{
		collection.NewItemMap(items, func(_ int, id string) []collection.BodyNode {
			return []collection.BodyNode{cell(id)}
		}),
	}, opts...)
}

func TestAttach_FirstReloadIsFullReload(t *testing.T) {
	items := state.NewObservable([]string{"a", "b"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)

	c.Attach(target)

	assert.True(t, c.Attached())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, 1, target.Reloads())
	assert.Equal(t, 0, target.Batches())
	assert.Equal(t, body("a", "b"), target.Shown())
	assert.Equal(t, []uikittest.Op{
		{Op: "register", Kind: "cell", Key: labelKey},
		{Op: "reloadData"},
	}, target.Ops())
}

func TestAttach_Twice(t *testing.T) {
	c := listCollection(state.NewObservable([]string{"a"}))
	target := uikittest.NewRenderTarget(t)

	c.Attach(target)
	c.Attach(target)

	assert.Equal(t, 1, target.Reloads())
}

func TestAttach_NilTargetPanics(t *testing.T) {
	c := listCollection(state.NewObservable([]string{"a"}))
	assert.Panics(t, func() { c.Attach(nil) })
}

func TestReloadData_BeforeAttachIsNoop(t *testing.T) {
	c := listCollection(state.NewObservable([]string{"a"}))
	c.ReloadData()
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Empty(t, c.Sections())
}

func TestReloadData_UnchangedIssuesNothing(t *testing.T) {
	items := state.NewObservable([]string{"a", "b"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	c.ReloadData()
	items.Set([]string{"a", "b"})

	assert.Empty(t, target.Ops())
	assert.Equal(t, 0, target.Batches())
	assert.Equal(t, collection.Idle, c.Phase())
}

func TestReloadData_ReplaceHeadAppendTail(t *testing.T) {
	items := state.NewObservable([]string{"i1", "i2"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	items.Set([]string{"i2", "i3"})

	assert.Equal(t, []uikittest.Op{
		{Op: "deleteItems", Paths: []collection.IndexPath{path(0, 0)}},
		{Op: "insertItems", Paths: []collection.IndexPath{path(0, 1)}},
	}, target.Ops())
	assert.Equal(t, collection.Reloading, c.Phase())
	assert.Equal(t, 1, target.InFlight())

	assert.Equal(t, 1, target.Settle())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, body("i2", "i3"), target.Shown())
}

func TestReloadData_RotationIsOneMove(t *testing.T) {
	items := state.NewObservable([]string{"a", "b", "c", "d"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	items.Set([]string{"b", "c", "d", "a"})
	target.Settle()

	assert.Equal(t, []uikittest.Op{
		{Op: "moveItem", Paths: []collection.IndexPath{path(0, 0), path(0, 3)}},
	}, target.Ops())
	assert.Equal(t, body("b", "c", "d", "a"), target.Shown())
}

func TestReloadData_CoalescesRequestsDuringBatch(t *testing.T) {
	items := state.NewObservable([]string{"a"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	items.Set([]string{"a", "b"})
	require.Equal(t, collection.Reloading, c.Phase())

	items.Set([]string{"a", "b", "c"})
	assert.Equal(t, collection.ReloadingPending, c.Phase())
	assert.Equal(t, 1, c.Pending())

	items.Set([]string{"c", "a"})
	items.Set([]string{"d", "c", "a"})
	assert.Equal(t, 3, c.Pending())
	assert.Equal(t, 1, target.Batches())

	// The first completion runs exactly one follow-up against the latest state.
	assert.Equal(t, 2, target.Settle())
	assert.Equal(t, 2, target.Batches())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, body("d", "c", "a"), target.Shown())
	assert.NoError(t, target.Err())
}

func TestReloadData_ContentChangeReloadsInPlace(t *testing.T) {
	type row struct{ id, title string }
	rows := state.NewObservable([]row{{"1", "one"}, {"2", "two"}})
	c := collection.NewBody([]collection.BodyNode{
		collection.NewItemMap(rows, func(_ int, r row) []collection.BodyNode {
			return []collection.BodyNode{textCell(r.id, r.title)}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	rows.Set([]row{{"1", "one"}, {"2", "two!"}})
	target.Settle()

	assert.Equal(t, []uikittest.Op{
		{Op: "reloadItems", Paths: []collection.IndexPath{path(0, 1)}},
	}, target.Ops())
	assert.Equal(t, body("1", "2"), target.Shown())
}

func TestReloadData_MovedItemWithNewContentReloadsAfterMove(t *testing.T) {
	type row struct{ id, title string }
	rows := state.NewObservable([]row{{"1", "one"}, {"2", "two"}, {"3", "three"}})
	c := collection.NewBody([]collection.BodyNode{
		collection.NewItemMap(rows, func(_ int, r row) []collection.BodyNode {
			return []collection.BodyNode{textCell(r.id, r.title)}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	rows.Set([]row{{"2", "two"}, {"3", "three"}, {"1", "uno"}})
	assert.Equal(t, []uikittest.Op{
		{Op: "moveItem", Paths: []collection.IndexPath{path(0, 0), path(0, 2)}},
	}, target.Ops())

	assert.Equal(t, 1, target.Batches())

	// The reload waits for the move to settle and uses the new position.
	assert.Equal(t, 2, target.Settle(), "the refresh batch completes in the same settle")
	assert.Equal(t, 2, target.Batches())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, []uikittest.Op{
		{Op: "moveItem", Paths: []collection.IndexPath{path(0, 0), path(0, 2)}},
		{Op: "reloadItems", Paths: []collection.IndexPath{path(0, 2)}},
	}, target.Ops())
	assert.NoError(t, target.Err())

	target.ResetOps()
	c.ReloadData()
	assert.Empty(t, target.Ops(), "nothing is left to reload")
}

func TestReloadData_RequestDuringMoveRunsAfterRefresh(t *testing.T) {
	type row struct{ id, title string }
	rows := state.NewObservable([]row{{"1", "one"}, {"2", "two"}, {"3", "three"}})
	c := collection.NewBody([]collection.BodyNode{
		collection.NewItemMap(rows, func(_ int, r row) []collection.BodyNode {
			return []collection.BodyNode{textCell(r.id, r.title)}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	rows.Set([]row{{"2", "two"}, {"3", "three"}, {"1", "uno"}})
	rows.Set([]row{{"2", "two"}, {"3", "three"}, {"1", "uno"}, {"4", "four"}})
	assert.Equal(t, collection.ReloadingPending, c.Phase())

	assert.Equal(t, 3, target.Settle())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, []uikittest.Op{
		{Op: "moveItem", Paths: []collection.IndexPath{path(0, 0), path(0, 2)}},
		{Op: "reloadItems", Paths: []collection.IndexPath{path(0, 2)}},
		{Op: "insertItems", Paths: []collection.IndexPath{path(0, 3)}},
	}, target.StructuralOps())
	assert.Equal(t, body("2", "3", "1", "4"), target.Shown())
	assert.NoError(t, target.Err())
}

func TestReloadData_HeaderChangeIssuesBatch(t *testing.T) {
	title := state.NewObservable("h1")
	cache := sizing.NewCache()
	c := collection.New([]collection.SectionNode{
		collection.WatchSections(title, func(h string) []collection.SectionNode {
			return []collection.SectionNode{collection.NewSection("s", header(h), cell("a"), cell("b"))}
		}),
	}, collection.WithCache(cache))
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	c.HeaderSize(0)
	c.SizeForItem(path(0, 0))
	require.Equal(t, 2, cache.Len())
	target.ResetOps()

	title.Set("h22")

	assert.Equal(t, 1, target.Batches(), "the target re-queries the new header")
	assert.Empty(t, target.StructuralOps())
	assert.Equal(t, 1, cache.Len(), "the old header's size is dropped")
	target.Settle()
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, "h22", c.Sections()[0].Header.Identity())
	assert.Equal(t, 30.0, c.HeaderSize(0).Height)
	assert.NoError(t, target.Err())
}

func TestReloadData_FooterAppearingIssuesBatch(t *testing.T) {
	withFooter := state.NewObservable(false)
	c := collection.New([]collection.SectionNode{
		collection.WatchSections(withFooter, func(on bool) []collection.SectionNode {
			body := []collection.BodyNode{cell("a"), cell("b")}
			if on {
				body = append(body, header("f"))
			}
			return []collection.SectionNode{collection.NewSection("s", body...)}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	withFooter.Set(true)
	target.Settle()

	assert.Equal(t, 1, target.Batches())
	assert.NotNil(t, c.SupplementaryView(collection.ElementFooter, 0))
	assert.NoError(t, target.Err())
}

func TestReloadData_EmptySectionsArePruned(t *testing.T) {
	first := state.NewObservable([]string{"a1"})
	c := collection.New([]collection.SectionNode{
		collection.NewSection("a", collection.NewItemMap(first, func(_ int, id string) []collection.BodyNode {
			return []collection.BodyNode{cell(id)}
		})),
		collection.NewSection("empty"),
		collection.NewSection("headerOnly", header("h")),
		collection.NewSection("b", cell("b1")),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	assert.Equal(t, []uikittest.SectionState{
		{ID: "a", Items: identifiers("a1")},
		{ID: "b", Items: identifiers("b1")},
	}, target.Shown())

	target.ResetOps()
	first.Set(nil)
	target.Settle()
	assert.Equal(t, []uikittest.Op{{Op: "deleteSections", Sections: []int{0}}}, target.Ops())

	// The map of a pruned section is still observed.
	target.ResetOps()
	first.Set([]string{"a2"})
	target.Settle()
	assert.Equal(t, []uikittest.Op{{Op: "insertSections", Sections: []int{0}}}, target.Ops())
	assert.Equal(t, []uikittest.SectionState{
		{ID: "a", Items: identifiers("a2")},
		{ID: "b", Items: identifiers("b1")},
	}, target.Shown())
}

func TestReloadData_EmptiedThenRefilledFullyReloads(t *testing.T) {
	items := state.NewObservable([]string{})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	assert.Empty(t, target.Shown())

	items.Set([]string{"a"})

	assert.Equal(t, 2, target.Reloads())
	assert.Equal(t, 0, target.Batches())
	assert.Equal(t, body("a"), target.Shown())
}

func TestReloadData_SectionMove(t *testing.T) {
	ids := state.NewObservable([]string{"x", "y", "z"})
	c := collection.New([]collection.SectionNode{
		collection.NewSectionMap(ids, func(_ int, id string) []collection.SectionNode {
			return []collection.SectionNode{collection.NewSection(id, cell(id+"-1"))}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	target.ResetOps()

	ids.Set([]string{"z", "x", "y"})
	target.Settle()

	assert.Equal(t, []uikittest.Op{{Op: "moveSection", Sections: []int{2, 0}}}, target.Ops())
	assert.Equal(t, []uikittest.SectionState{
		{ID: "z", Items: identifiers("z-1")},
		{ID: "x", Items: identifiers("x-1")},
		{ID: "y", Items: identifiers("y-1")},
	}, target.Shown())
}

func TestReloadData_ItemOpsUseOldAndNewSectionIndices(t *testing.T) {
	ids := state.NewObservable([]string{"x", "y"})
	yItems := state.NewObservable([]string{"y1"})
	c := collection.New([]collection.SectionNode{
		collection.NewSectionMap(ids, func(_ int, id string) []collection.SectionNode {
			if id == "y" {
				return []collection.SectionNode{collection.NewSection(id, collection.NewItemMap(yItems, func(_ int, s string) []collection.BodyNode {
					return []collection.BodyNode{cell(s)}
				}))}
			}
			return []collection.SectionNode{collection.NewSection(id, cell(id+"1"))}
		}),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	target.ResetOps()
	yItems.Set([]string{"y1", "y2"})
	// While that batch is in flight, x goes away and y moves from index 1 to
	// 0 while its items change.
	ids.Set([]string{"y"})
	yItems.Set([]string{"y2", "y3"})
	target.Settle()

	assert.NoError(t, target.Err())
	assert.Equal(t, []uikittest.Op{
		{Op: "insertItems", Paths: []collection.IndexPath{path(1, 1)}},
		{Op: "deleteSections", Sections: []int{0}},
		{Op: "deleteItems", Paths: []collection.IndexPath{path(1, 0)}},
		{Op: "insertItems", Paths: []collection.IndexPath{path(0, 1)}},
	}, target.StructuralOps())
	assert.Equal(t, []uikittest.SectionState{
		{ID: "y", Items: identifiers("y2", "y3")},
	}, target.Shown())
}

func TestReloadData_RegistersEachReuseKeyOnce(t *testing.T) {
	c := collection.New([]collection.SectionNode{
		collection.NewSection("s",
			header("h"),
			cell("a"),
			cell("b"),
			collection.Cell[*badge]{ID: "c", New: func(geometry.Size) *badge { return &badge{} }},
			header("f"),
		),
	})
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)
	c.ReloadData()

	var registers []uikittest.Op
	for _, op := range target.Ops() {
		if op.Op == "register" {
			registers = append(registers, op)
		}
	}
	assert.Equal(t, []uikittest.Op{
		{Op: "register", Kind: "header", Key: labelKey},
		{Op: "register", Kind: "cell", Key: labelKey},
		{Op: "register", Kind: "cell", Key: "*collection_test.badge"},
		{Op: "register", Kind: "footer", Key: labelKey},
	}, registers)
}

func TestReloadData_MissingConstructorPanics(t *testing.T) {
	c := collection.NewBody([]collection.BodyNode{collection.Cell[*label]{ID: "a"}})
	assert.Panics(t, func() { c.Attach(uikittest.NewRenderTarget(nil)) })
}

func TestDetach_DuringBatchDropsCompletion(t *testing.T) {
	items := state.NewObservable([]string{"a"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	items.Set([]string{"a", "b"})
	items.Set([]string{"b"})
	require.Equal(t, collection.ReloadingPending, c.Phase())

	c.Detach()
	assert.False(t, c.Attached())
	assert.Equal(t, collection.Idle, c.Phase())
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, 0, items.ListenerCount())

	assert.Equal(t, 1, target.Settle())
	assert.Equal(t, 1, target.Batches())
	assert.Empty(t, c.Sections())

	items.Set([]string{"c"})
	assert.Equal(t, 1, target.Batches())

	// Re-attaching starts over with a full reload.
	c.Attach(target)
	assert.Equal(t, 2, target.Reloads())
	assert.Equal(t, body("c"), target.Shown())
	assert.Equal(t, 1, items.ListenerCount())
}

func TestWithDispatcher_DefersFirstReloadAndCompletions(t *testing.T) {
	var queue []func()
	items := state.NewObservable([]string{"a"})
	c := listCollection(items, collection.WithDispatcher(func(f func()) { queue = append(queue, f) }))
	target := uikittest.NewRenderTarget(t)
	run := func() {
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			f()
		}
	}

	c.Attach(target)
	assert.Equal(t, 0, target.Reloads())
	run()
	assert.Equal(t, 1, target.Reloads())

	items.Set([]string{"b"})
	target.Settle()
	assert.Equal(t, collection.Reloading, c.Phase())
	run()
	assert.Equal(t, collection.Idle, c.Phase())
}

func TestWithDispatcher_DetachBeforeFirstReload(t *testing.T) {
	var queue []func()
	c := listCollection(state.NewObservable([]string{"a"}),
		collection.WithDispatcher(func(f func()) { queue = append(queue, f) }))
	target := uikittest.NewRenderTarget(t)

	c.Attach(target)
	c.Detach()
	for _, f := range queue {
		f()
	}

	assert.Equal(t, 0, target.Reloads())
}

func TestReloadPhaseString(t *testing.T) {
	assert.Equal(t, "idle", collection.Idle.String())
	assert.Equal(t, "reloading", collection.Reloading.String())
	assert.Equal(t, "reloadingPending", collection.ReloadingPending.String())
}

func TestCollection_OperationLogSnapshot(t *testing.T) {
	items := state.NewObservable([]string{"a", "b", "c"})
	c := listCollection(items)
	target := uikittest.NewRenderTarget(t)
	c.Attach(target)

	items.Set([]string{"c", "a", "d"})
	target.Settle()

	golden := t.TempDir() + "/reload.snapshot.json"
	snapshot := target.CaptureSnapshot()
	require.NoError(t, snapshot.UpdateFile(golden))
	snapshot.MatchesFile(t, golden)

	expected := &uikittest.Snapshot{
		Ops: []uikittest.Op{
			{Op: "register", Kind: "cell", Key: labelKey},
			{Op: "reloadData"},
			{Op: "deleteItems", Paths: []collection.IndexPath{path(0, 1)}},
			{Op: "insertItems", Paths: []collection.IndexPath{path(0, 2)}},
			{Op: "moveItem", Paths: []collection.IndexPath{path(0, 2), path(0, 0)}},
		},
		Shown: body("c", "a", "d"),
	}
	assert.Empty(t, snapshot.Diff(expected))
}

func TestReloadData_RandomEditsStayConsistent(t *testing.T) {
	letters := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	rapid.Check(t, func(rt *rapid.T) {
		type row struct {
			id      string
			version int
		}
		draw := func(name string) []row {
			ids := rapid.SliceOfNDistinct(rapid.SampledFrom(letters), 0, len(letters), rapid.ID[string]).Draw(rt, name)
			rows := make([]row, len(ids))
			for i, id := range ids {
				rows[i] = row{id: id, version: rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("%s-%s", name, id))}
			}
			return rows
		}

		rows := state.NewObservable(draw("initial"))
		c := collection.NewBody([]collection.BodyNode{
			collection.NewItemMap(rows, func(_ int, r row) []collection.BodyNode {
				return []collection.BodyNode{textCell(r.id, fmt.Sprintf("%s.%d", r.id, r.version))}
			}),
		})
		target := uikittest.NewRenderTarget(nil)
		c.Attach(target)

		steps := rapid.IntRange(1, 8).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			rows.Set(draw(fmt.Sprintf("step%d", i)))
			if rapid.Bool().Draw(rt, fmt.Sprintf("settle%d", i)) {
				target.Settle()
			}
		}
		target.Settle()

		if err := target.Err(); err != nil {
			rt.Fatalf("inconsistent batch: %v", err)
		}
		final := rows.Value()
		var want []uikittest.SectionState
		if len(final) > 0 {
			ids := make([]string, len(final))
			for i, r := range final {
				ids[i] = r.id
			}
			want = body(ids...)
		}
		got := target.Shown()
		if len(got) != len(want) {
			rt.Fatalf("shown %v, want %v", got, want)
		}
		for i := range want {
			if fmt.Sprint(got[i]) != fmt.Sprint(want[i]) {
				rt.Fatalf("section %d shows %v, want %v", i, got[i], want[i])
			}
		}
		if c.Phase() != collection.Idle {
			rt.Fatalf("phase %v after settling", c.Phase())
		}
	})
}
