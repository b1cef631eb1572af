package collection

import "github.com/go-drift/uikit/pkg/geometry"

// RenderTarget is the sectioned, indexed surface a Collection drives.
type RenderTarget interface {
	// SetDataSource installs the source the target queries for counts,
	// instances, and sizes. Nil detaches it.
	SetDataSource(ds DataSource)
	// Register makes factory available under (kind, key). It is called
	// before the first Dequeue for that pair.
	Register(kind ElementKind, key string, factory func() any)
	// Dequeue returns a pooled or new instance registered under (kind, key).
	Dequeue(kind ElementKind, key string, at IndexPath) any
	// ReloadData discards all state and re-queries the data source without
	// animation.
	ReloadData()
	// PerformBatchUpdates applies updates as one atomic batch and calls
	// completion exactly once after it settles, possibly on a later turn of
	// the event loop.
	PerformBatchUpdates(updates func(BatchUpdater), completion func(finished bool))

	Bounds() geometry.Rect
	ContentInset() geometry.EdgeInsets
	SafeAreaInsets() geometry.EdgeInsets
	Layout() FlowLayout

	ContentOffset() geometry.Point
	SetContentOffset(offset geometry.Point, animated bool)
	// ItemFrame returns the laid-out frame of the item at, if known.
	ItemFrame(at IndexPath) (geometry.Rect, bool)
	ScrollToItem(at IndexPath, position ScrollPosition, animated bool)
}

// BatchUpdater records structural operations inside PerformBatchUpdates.
//
// Deletions, reloads, and move sources use indices from before the batch;
// insertions and move destinations use indices from after it.
type BatchUpdater interface {
	DeleteSections(sections []int)
	InsertSections(sections []int)
	MoveSection(from, to int)
	DeleteItems(paths []IndexPath)
	InsertItems(paths []IndexPath)
	ReloadItems(paths []IndexPath)
	MoveItem(from, to IndexPath)
}

// DataSource answers a render target's queries about the current sections.
type DataSource interface {
	NumberOfSections() int
	NumberOfItems(section int) int
	SectionIdentifier(section int) Identifier
	ItemIdentifier(at IndexPath) Identifier
	CellForItem(at IndexPath) any
	// SupplementaryView returns the header or footer of section, or nil.
	SupplementaryView(kind ElementKind, section int) any

	SizeForItem(at IndexPath) geometry.Size
	HeaderSize(section int) geometry.Size
	FooterSize(section int) geometry.Size
	SectionInset(section int) geometry.EdgeInsets
	MinimumLineSpacing(section int) float64
	MinimumInteritemSpacing(section int) float64
}

// FlowLayout holds a target's layout defaults.
type FlowLayout struct {
	Direction               geometry.ScrollDirection
	SectionInset            geometry.EdgeInsets
	MinimumLineSpacing      float64
	MinimumInteritemSpacing float64
}

// ScrollPosition is where a scrolled-to item should land in the viewport.
type ScrollPosition int

const (
	ScrollNone ScrollPosition = iota
	ScrollTop
	ScrollCenteredVertically
	ScrollBottom
	ScrollLeft
	ScrollCenteredHorizontally
	ScrollRight
)

func (p ScrollPosition) String() string {
	switch p {
	case ScrollTop:
		return "top"
	case ScrollCenteredVertically:
		return "centeredVertically"
	case ScrollBottom:
		return "bottom"
	case ScrollLeft:
		return "left"
	case ScrollCenteredHorizontally:
		return "centeredHorizontally"
	case ScrollRight:
		return "right"
	default:
		return "none"
	}
}
