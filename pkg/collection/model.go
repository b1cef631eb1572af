// Package collection drives sectioned list and grid surfaces from a
// declarative tree of sections and items.
//
// A tree is built once from [SectionNode] and [BodyNode] values. Maps inside
// the tree project observable state into nodes, so the sections a tree
// resolves to change whenever that state does. A [Collection] flattens the
// tree on every reload, diffs the result against the last applied snapshot,
// and applies the difference to a [RenderTarget] as one batch of structural
// updates. Reloads requested while a batch is in flight collapse into a
// single follow-up cycle.
//
// All methods must be called from the UI thread.
package collection

import (
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
)

// Identifier is the stable identity of a section, item, or supplementary
// view. It must be comparable; content never takes part in identity.
type Identifier = any

// IndexPath addresses an item within a section.
type IndexPath struct {
	Section int
	Item    int
}

// ElementKind is the role a rendered instance plays in a section.
type ElementKind int

const (
	// ElementCell is an item cell.
	ElementCell ElementKind = iota
	// ElementHeader is a section header.
	ElementHeader
	// ElementFooter is a section footer.
	ElementFooter
)

func (k ElementKind) String() string {
	switch k {
	case ElementHeader:
		return "header"
	case ElementFooter:
		return "footer"
	default:
		return "cell"
	}
}

// SectionNode is a section-level declaration: a [Section], a [SectionGroup],
// or a [SectionMap]. The set is closed.
type SectionNode interface {
	sectionNode()
}

// BodyNode is a declaration inside a section body: an [Item], a
// [Supplementary], an [ItemMap], or a [Group]. The set is closed; custom
// leaves join it by embedding [ItemBase] or [SupplementaryBase].
type BodyNode interface {
	bodyNode()
}

// Section is one concrete section. A supplementary first in Body is the
// header and a supplementary last in Body is the footer; every other
// supplementary is ignored.
type Section struct {
	ID   Identifier
	Body []BodyNode
}

func (Section) sectionNode() {}

// NewSection returns a section with the given body.
func NewSection(id Identifier, body ...BodyNode) Section {
	return Section{ID: id, Body: body}
}

// SectionGroup is a static composition of section nodes.
type SectionGroup []SectionNode

func (SectionGroup) sectionNode() {}

// Group is a static composition of body nodes.
type Group []BodyNode

func (Group) bodyNode() {}

// EmptySection returns a node that contributes no sections.
func EmptySection() SectionNode {
	return SectionGroup{}
}

// EmptyItem returns a node that contributes no items.
func EmptyItem() BodyNode {
	return Group{}
}

// Renderer is the capability set shared by item and supplementary leaves.
type Renderer interface {
	// Identity returns the leaf's identifier.
	Identity() Identifier
	// ReuseKey names the renderer type for pooling, registration, and the
	// size cache.
	ReuseKey() string
	// Factory returns the constructor registered with the render target.
	Factory() func() any
	// Render dequeues an instance from target and configures it.
	Render(target RenderTarget, kind ElementKind, at IndexPath) any
	// Size returns the leaf's size under c.
	Size(c sizing.Constraints) geometry.Size
	// ContentValue returns the value compared across reloads to detect
	// content-only changes.
	ContentValue() any
}

// Item is a cell leaf.
type Item interface {
	BodyNode
	Renderer
	itemLeaf()
}

// Supplementary is a header or footer leaf.
type Supplementary interface {
	BodyNode
	Renderer
	supplementaryLeaf()
}

// ItemBase makes an embedding type a body node of the item kind.
type ItemBase struct{}

func (ItemBase) bodyNode() {}
func (ItemBase) itemLeaf() {}

// SupplementaryBase makes an embedding type a body node of the
// supplementary kind.
type SupplementaryBase struct{}

func (SupplementaryBase) bodyNode()          {}
func (SupplementaryBase) supplementaryLeaf() {}

// ItemDelegate receives display-lifecycle events for an item.
type ItemDelegate interface {
	WillDisplay()
	DidSelect()
	DidDeselect()
	DidHighlight()
	DidUnhighlight()
}
