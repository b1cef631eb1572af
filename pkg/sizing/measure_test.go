package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-drift/uikit/pkg/geometry"
)

type fakeCell struct {
	measured   int
	text       string
	lastTarget geometry.Size
	lastH      Priority
	lastV      Priority
}

func (f *fakeCell) FittingSize(target geometry.Size, h, v Priority) geometry.Size {
	f.measured++
	f.lastTarget, f.lastH, f.lastV = target, h, v
	if h == Required {
		return geometry.Size{Width: target.Width, Height: float64(10 * len(f.text))}
	}
	return geometry.Size{Width: float64(10 * len(f.text)), Height: target.Height}
}

type otherCell struct{ fakeCell }

func measureText(c Constraints, typeKey string, id any, text string, created *int) geometry.Size {
	return Measure(c, typeKey, id, func(geometry.Size) *fakeCell {
		*created++
		return &fakeCell{}
	}, func(cell *fakeCell) { cell.text = text })
}

func TestMeasure_CachesPerTypeAndIdentity(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 320, Height: 480}, Cache: cache}
	created := 0

	first := measureText(c, "Cell", "a", "abc", &created)
	second := measureText(c, "Cell", "a", "abcdef", &created)

	assert.Equal(t, geometry.Size{Width: 320, Height: 30}, first)
	assert.Equal(t, first, second, "second request must hit the cache")
	assert.Equal(t, 1, created)

	tpl, ok := cache.Template("Cell")
	assert.True(t, ok)
	assert.Equal(t, 1, tpl.(*fakeCell).measured)
}

func TestMeasure_ReusesTemplateAcrossIdentities(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 100, Height: 100}, Cache: cache}
	created := 0

	measureText(c, "Cell", 1, "a", &created)
	measureText(c, "Cell", 2, "ab", &created)

	assert.Equal(t, 1, created)
	assert.Equal(t, 2, cache.Len())
}

func TestMeasure_VerticalPinsWidth(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 200, Height: 50}, Direction: geometry.Vertical, Cache: cache}
	created := 0
	measureText(c, "Cell", 1, "x", &created)

	tpl, _ := cache.Template("Cell")
	cell := tpl.(*fakeCell)
	assert.Equal(t, geometry.Size{Width: 200, Height: 0}, cell.lastTarget)
	assert.Equal(t, Required, cell.lastH)
	assert.Equal(t, FittingSizeLevel, cell.lastV)
}

func TestMeasure_HorizontalPinsHeight(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 200, Height: 50}, Direction: geometry.Horizontal, Cache: cache}
	created := 0
	size := measureText(c, "Cell", 1, "xyz", &created)

	tpl, _ := cache.Template("Cell")
	cell := tpl.(*fakeCell)
	assert.Equal(t, geometry.Size{Width: 0, Height: 50}, cell.lastTarget)
	assert.Equal(t, FittingSizeLevel, cell.lastH)
	assert.Equal(t, Required, cell.lastV)
	assert.Equal(t, geometry.Size{Width: 30, Height: 50}, size)
}

func TestMeasure_FrameFloatsOneAxis(t *testing.T) {
	c := Constraints{Available: geometry.Size{Width: 200, Height: 50}, Cache: NewCache()}
	var frame geometry.Size
	Measure(c, "Cell", 1, func(f geometry.Size) *fakeCell {
		frame = f
		return &fakeCell{}
	}, nil)
	assert.Equal(t, geometry.Size{Width: 200, Height: LargeDimension}, frame)
}

func TestClearFor_OnlyDropsOneType(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 100, Height: 100}, Cache: cache}
	created := 0
	measureText(c, "A", 1, "a", &created)
	measureText(c, "B", 1, "b", &created)

	cache.ClearFor("A")

	_, okA := cache.Size("A", 1)
	_, okB := cache.Size("B", 1)
	_, tplA := cache.Template("A")
	_, tplB := cache.Template("B")
	assert.False(t, okA)
	assert.True(t, okB)
	assert.False(t, tplA)
	assert.True(t, tplB)

	measureText(c, "A", 1, "a", &created)
	assert.Equal(t, 3, created, "cleared type must be re-measured on a fresh template")
}

func TestClearAll(t *testing.T) {
	cache := NewCache()
	cache.Update("A", 1, geometry.Size{Width: 1, Height: 1})
	cache.SetTemplate("A", &fakeCell{})

	cache.ClearAll()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Template("A")
	assert.False(t, ok)
}

func TestRemove_RemeasuresOneIdentity(t *testing.T) {
	cache := NewCache()
	c := Constraints{Available: geometry.Size{Width: 100, Height: 100}, Cache: cache}
	created := 0
	measureText(c, "Cell", 1, "a", &created)
	measureText(c, "Cell", 2, "b", &created)

	cache.Remove("Cell", 1)
	size := measureText(c, "Cell", 1, "abcd", &created)

	assert.Equal(t, geometry.Size{Width: 100, Height: 40}, size)
	assert.Equal(t, 1, created, "template survives Remove")
	_, ok := cache.Size("Cell", 2)
	assert.True(t, ok)
}

func TestMeasure_MismatchedTemplateIsReplaced(t *testing.T) {
	cache := NewCache()
	cache.SetTemplate("Cell", &otherCell{})
	c := Constraints{Available: geometry.Size{Width: 10, Height: 10}, Cache: cache}
	created := 0

	measureText(c, "Cell", 1, "a", &created)

	assert.Equal(t, 1, created)
	tpl, _ := cache.Template("Cell")
	_, ok := tpl.(*fakeCell)
	assert.True(t, ok)
}

func TestConstraints_DefaultCache(t *testing.T) {
	assert.Same(t, Default, Constraints{}.CacheOrDefault())
	own := NewCache()
	assert.Same(t, own, Constraints{Cache: own}.CacheOrDefault())
}

func TestTypeKey(t *testing.T) {
	assert.Equal(t, "*sizing.fakeCell", TypeKey[*fakeCell]())
}
