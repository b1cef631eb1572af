package sizing

import (
	"math"
	"reflect"

	"github.com/go-drift/uikit/pkg/geometry"
)

// LargeDimension is the bound used for the floating axis during measurement.
const LargeDimension = math.MaxFloat64

// Priority is how strongly a fitting-size query must honour one axis.
type Priority int

const (
	// FittingSizeLevel lets the axis grow or shrink to fit content.
	FittingSizeLevel Priority = iota
	// Required pins the axis to the target value.
	Required
)

func (p Priority) String() string {
	if p == Required {
		return "required"
	}
	return "fitting"
}

// Fitter is a renderer instance that can compute its fitting size.
type Fitter interface {
	// FittingSize returns the smallest size that fits the content, honouring
	// target on axes with Required priority.
	FittingSize(target geometry.Size, horizontal, vertical Priority) geometry.Size
}

// Constraints carries what a leaf needs to size itself.
type Constraints struct {
	// Available is the space left after insets, on both axes.
	Available geometry.Size
	// Direction is the scroll direction of the hosting layout.
	Direction geometry.ScrollDirection
	// Cache memoizes measurements. Nil means Default.
	Cache *Cache
}

// CacheOrDefault returns the cache to use for these constraints.
func (c Constraints) CacheOrDefault() *Cache {
	if c.Cache != nil {
		return c.Cache
	}
	return Default
}

// TypeKey returns the reuse key for a renderer type: its Go type name.
func TypeKey[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Measure returns the size of the leaf identified by (typeKey, id), measuring
// it against the pooled template when the cache misses.
//
// For vertical scrolling the width is fixed at the available width and the
// height floats; horizontal scrolling swaps the axes. newTemplate builds the
// template when none is pooled and receives the initial frame; configure
// applies the leaf's content to the template before measuring.
func Measure[T Fitter](
	c Constraints,
	typeKey string,
	id any,
	newTemplate func(frame geometry.Size) T,
	configure func(T),
) geometry.Size {
	cache := c.CacheOrDefault()
	if size, ok := cache.Size(typeKey, id); ok {
		return size
	}

	dynamicHeight := c.Direction == geometry.Vertical
	frame := geometry.Size{Width: LargeDimension, Height: c.Available.Height}
	if dynamicHeight {
		frame = geometry.Size{Width: c.Available.Width, Height: LargeDimension}
	}

	var template T
	pooled, ok := cache.Template(typeKey)
	if ok {
		template, ok = pooled.(T)
	}
	if !ok {
		template = newTemplate(frame)
		cache.SetTemplate(typeKey, template)
	}

	if configure != nil {
		configure(template)
	}

	target := geometry.Size{Width: 0, Height: frame.Height}
	horizontal, vertical := FittingSizeLevel, Required
	if dynamicHeight {
		target = geometry.Size{Width: frame.Width, Height: 0}
		horizontal, vertical = Required, FittingSizeLevel
	}
	size := template.FittingSize(target, horizontal, vertical)

	cache.Update(typeKey, id, size)
	return size
}
