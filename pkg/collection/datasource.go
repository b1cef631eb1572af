package collection

import (
	"fmt"

	"github.com/go-drift/uikit/pkg/errors"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
	"github.com/go-drift/uikit/pkg/state"
)

var _ DataSource = (*Collection)(nil)

func (c *Collection) section(index int) (ResolvedSection, bool) {
	if index < 0 || index >= len(c.sections) {
		return ResolvedSection{}, false
	}
	return c.sections[index], true
}

func (c *Collection) item(at IndexPath) (Item, bool) {
	s, ok := c.section(at.Section)
	if !ok || at.Item < 0 || at.Item >= len(s.Items) {
		return nil, false
	}
	return s.Items[at.Item], true
}

func (c *Collection) supplementary(kind ElementKind, section int) Supplementary {
	s, ok := c.section(section)
	if !ok {
		return nil
	}
	switch kind {
	case ElementHeader:
		return s.Header
	case ElementFooter:
		return s.Footer
	}
	return nil
}

// NumberOfSections returns the number of non-empty sections.
func (c *Collection) NumberOfSections() int {
	return len(c.sections)
}

// NumberOfItems returns the item count of section, or 0 if out of range.
func (c *Collection) NumberOfItems(section int) int {
	s, _ := c.section(section)
	return len(s.Items)
}

// SectionIdentifier returns the identifier of section, or nil.
func (c *Collection) SectionIdentifier(section int) Identifier {
	s, _ := c.section(section)
	return s.ID
}

// ItemIdentifier returns the identifier of the item at, or nil.
func (c *Collection) ItemIdentifier(at IndexPath) Identifier {
	if item, ok := c.item(at); ok {
		return item.Identity()
	}
	return nil
}

// CellForItem dequeues and configures the cell at.
func (c *Collection) CellForItem(at IndexPath) any {
	item, ok := c.item(at)
	if !ok || !c.attached {
		errors.Report(&errors.UIError{
			Op:   "collection.CellForItem",
			Kind: errors.KindRender,
			Err:  fmt.Errorf("no item at %v", at),
		})
		return nil
	}
	return item.Render(c.target, ElementCell, at)
}

// SupplementaryView dequeues and configures the header or footer of section.
// It returns nil when the section has none.
func (c *Collection) SupplementaryView(kind ElementKind, section int) any {
	s := c.supplementary(kind, section)
	if s == nil || !c.attached {
		return nil
	}
	return s.Render(c.target, kind, IndexPath{Section: section})
}

// Direction returns the target's scroll direction.
func (c *Collection) Direction() geometry.ScrollDirection {
	if !c.attached {
		return geometry.Vertical
	}
	return c.target.Layout().Direction
}

// AvailableSize returns the space a leaf of section may occupy: the target's
// bounds less its content inset, safe area, and the section inset.
func (c *Collection) AvailableSize(section int) geometry.Size {
	if !c.attached {
		return geometry.Size{}
	}
	insets := c.target.ContentInset().Add(c.target.SafeAreaInsets())
	size := insets.Inset(c.target.Bounds().Size)
	return c.SectionInset(section).Inset(size)
}

// constraints returns the sizing constraints for section, or false when
// either available dimension is not positive.
func (c *Collection) constraints(section int) (sizing.Constraints, bool) {
	avail := c.AvailableSize(section)
	if avail.Width <= 0 || avail.Height <= 0 {
		return sizing.Constraints{}, false
	}
	return sizing.Constraints{Available: avail, Direction: c.Direction(), Cache: c.cache}, true
}

// SizeForItem returns the size of the item at, or zero when there is no
// room to measure in.
func (c *Collection) SizeForItem(at IndexPath) geometry.Size {
	item, ok := c.item(at)
	if !ok {
		return geometry.Size{}
	}
	sc, ok := c.constraints(at.Section)
	if !ok {
		return geometry.Size{}
	}
	return item.Size(sc)
}

// HeaderSize returns the header size of section, or zero.
func (c *Collection) HeaderSize(section int) geometry.Size {
	return c.supplementarySize(ElementHeader, section)
}

// FooterSize returns the footer size of section, or zero.
func (c *Collection) FooterSize(section int) geometry.Size {
	return c.supplementarySize(ElementFooter, section)
}

func (c *Collection) supplementarySize(kind ElementKind, section int) geometry.Size {
	s := c.supplementary(kind, section)
	if s == nil {
		return geometry.Size{}
	}
	sc, ok := c.constraints(section)
	if !ok {
		return geometry.Size{}
	}
	return s.Size(sc)
}

func (c *Collection) layout() FlowLayout {
	if !c.attached {
		return FlowLayout{}
	}
	return c.target.Layout()
}

// SectionInset returns the custom inset for section's identifier, falling
// back to the layout default.
func (c *Collection) SectionInset(section int) geometry.EdgeInsets {
	if s, ok := c.section(section); ok && c.sectionInset != nil {
		if inset, ok := c.sectionInset(s.ID); ok {
			return inset
		}
	}
	return c.layout().SectionInset
}

// MinimumLineSpacing returns the custom line spacing for section's
// identifier, falling back to the layout default.
func (c *Collection) MinimumLineSpacing(section int) float64 {
	if s, ok := c.section(section); ok && c.lineSpacing != nil {
		if v, ok := c.lineSpacing(s.ID); ok {
			return v
		}
	}
	return c.layout().MinimumLineSpacing
}

// MinimumInteritemSpacing returns the custom interitem spacing for section's
// identifier, falling back to the layout default.
func (c *Collection) MinimumInteritemSpacing(section int) float64 {
	if s, ok := c.section(section); ok && c.interitemSpacing != nil {
		if v, ok := c.interitemSpacing(s.ID); ok {
			return v
		}
	}
	return c.layout().MinimumInteritemSpacing
}

func (c *Collection) delegate(at IndexPath) ItemDelegate {
	item, ok := c.item(at)
	if !ok {
		return nil
	}
	d, _ := item.(ItemDelegate)
	return d
}

// WillDisplay forwards to the collection handler and then to the item.
func (c *Collection) WillDisplay(at IndexPath) {
	notify(c.willDisplay, at)
	if d := c.delegate(at); d != nil {
		d.WillDisplay()
	}
}

// DidSelect forwards to the collection handler and then to the item.
func (c *Collection) DidSelect(at IndexPath) {
	notify(c.didSelect, at)
	if d := c.delegate(at); d != nil {
		d.DidSelect()
	}
}

// DidDeselect forwards to the collection handler and then to the item.
func (c *Collection) DidDeselect(at IndexPath) {
	notify(c.didDeselect, at)
	if d := c.delegate(at); d != nil {
		d.DidDeselect()
	}
}

// DidHighlight forwards to the collection handler and then to the item.
func (c *Collection) DidHighlight(at IndexPath) {
	notify(c.didHighlight, at)
	if d := c.delegate(at); d != nil {
		d.DidHighlight()
	}
}

// DidUnhighlight forwards to the collection handler and then to the item.
func (c *Collection) DidUnhighlight(at IndexPath) {
	notify(c.didUnhighlight, at)
	if d := c.delegate(at); d != nil {
		d.DidUnhighlight()
	}
}

// ShouldHighlight reports whether the item at may highlight. A panicking
// handler is reported and denies the highlight.
func (c *Collection) ShouldHighlight(at IndexPath) bool {
	if c.shouldHighlight == nil {
		return true
	}
	allowed := false
	errors.Guard("collection.ShouldHighlight", func() { allowed = c.shouldHighlight(at) })
	return allowed
}

// notify runs a collection-level event handler the way leaf callbacks run:
// a panic is reported and the item's own callback still fires.
func notify(fn func(IndexPath), at IndexPath) {
	if fn == nil {
		return
	}
	errors.Guard("collection.Delegate", func() { fn(at) })
}

// BindScrollPosition publishes every content offset change to position.
func (c *Collection) BindScrollPosition(position *state.Observable[geometry.Point]) {
	c.scrollPosition = position
}

// DidScroll is called by the target when its content offset changes.
func (c *Collection) DidScroll(offset geometry.Point) {
	if c.scrollPosition != nil {
		c.scrollPosition.Set(offset)
	}
}

// SetContentOffset scrolls the target to offset.
func (c *Collection) SetContentOffset(offset geometry.Point, animated bool) {
	if !c.attached {
		return
	}
	c.target.SetContentOffset(offset, animated)
}

// ScrollToItem scrolls the item at into position. A non-zero offset shifts
// the item's frame before the target offset is derived from it; positions
// without a frame-derived offset fall back to the target's own scrolling.
func (c *Collection) ScrollToItem(at IndexPath, position ScrollPosition, offset geometry.Point, animated bool) {
	if !c.attached {
		return
	}
	if offset == (geometry.Point{}) {
		c.target.ScrollToItem(at, position, animated)
		return
	}
	frame, ok := c.target.ItemFrame(at)
	if !ok {
		c.target.ScrollToItem(at, position, animated)
		return
	}
	frame = frame.Offset(offset.X, offset.Y)

	var to geometry.Point
	switch position {
	case ScrollBottom:
		to = geometry.Point{X: frame.MinX(), Y: frame.MaxY()}
	case ScrollTop, ScrollLeft:
		to = geometry.Point{X: frame.MinX(), Y: frame.MinY()}
	case ScrollRight:
		to = geometry.Point{X: frame.MaxX(), Y: frame.MinY()}
	case ScrollCenteredHorizontally:
		to = geometry.Point{X: frame.MidX(), Y: frame.MinY()}
	case ScrollCenteredVertically:
		to = geometry.Point{X: frame.MinX(), Y: frame.MidY()}
	default:
		c.target.ScrollToItem(at, position, animated)
		return
	}
	c.target.SetContentOffset(to, animated)
}
