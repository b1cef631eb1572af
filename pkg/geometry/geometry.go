// Package geometry provides the value types shared by the collection engine,
// the sizing cache, and render targets.
package geometry

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Point represents a 2D point or scroll offset in points.
type Point struct {
	X float64
	Y float64
}

// Offset returns the point translated by dx, dy.
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Size represents width and height dimensions in points.
type Size struct {
	Width  float64
	Height float64
}

// IsEmpty reports whether either dimension is non-positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Equal reports whether two sizes are approximately equal.
func (s Size) Equal(other Size) bool {
	return floatEqual(s.Width, other.Width) && floatEqual(s.Height, other.Height)
}

// Rect represents a rectangle by origin and size.
type Rect struct {
	Origin Point
	Size   Size
}

// RectFromXYWH constructs a Rect from x, y, width, height values.
func RectFromXYWH(x, y, width, height float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: width, Height: height}}
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.Origin.X }

// MinY returns the top edge.
func (r Rect) MinY() float64 { return r.Origin.Y }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// MidX returns the horizontal center.
func (r Rect) MidX() float64 { return r.Origin.X + r.Size.Width*0.5 }

// MidY returns the vertical center.
func (r Rect) MidY() float64 { return r.Origin.Y + r.Size.Height*0.5 }

// Offset returns the rectangle translated by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{Origin: r.Origin.Offset(dx, dy), Size: r.Size}
}

// EdgeInsets represents inset distances on each side of a rectangle.
type EdgeInsets struct {
	Top, Left, Bottom, Right float64
}

// EdgeInsetsAll creates uniform insets on all sides.
func EdgeInsetsAll(value float64) EdgeInsets {
	return EdgeInsets{Top: value, Left: value, Bottom: value, Right: value}
}

// EdgeInsetsSymmetric creates insets with the given horizontal and vertical values.
func EdgeInsetsSymmetric(horizontal, vertical float64) EdgeInsets {
	return EdgeInsets{Top: vertical, Left: horizontal, Bottom: vertical, Right: horizontal}
}

// Horizontal returns the sum of left and right insets.
func (e EdgeInsets) Horizontal() float64 {
	return e.Left + e.Right
}

// Vertical returns the sum of top and bottom insets.
func (e EdgeInsets) Vertical() float64 {
	return e.Top + e.Bottom
}

// Add returns the component-wise sum of two insets.
func (e EdgeInsets) Add(other EdgeInsets) EdgeInsets {
	return EdgeInsets{
		Top:    e.Top + other.Top,
		Left:   e.Left + other.Left,
		Bottom: e.Bottom + other.Bottom,
		Right:  e.Right + other.Right,
	}
}

// Inset shrinks size by the insets. The result may be negative.
func (e EdgeInsets) Inset(size Size) Size {
	return Size{
		Width:  size.Width - e.Horizontal(),
		Height: size.Height - e.Vertical(),
	}
}

// ScrollDirection is the axis along which a flow layout scrolls.
type ScrollDirection int

const (
	// Vertical scrolls top to bottom. Widths are fixed, heights float.
	Vertical ScrollDirection = iota
	// Horizontal scrolls leading to trailing. Heights are fixed, widths float.
	Horizontal
)

func (d ScrollDirection) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
