// Package sizing memoizes measured sizes of collection leaves.
//
// Auto-layout measurement is expensive, so each distinct (renderer type,
// identifier) pair is measured at most once until it is invalidated. The
// measurement itself runs against one off-screen template instance per
// renderer type, kept in the same cache and reused across calls.
//
// The cache cannot observe why a renderer's layout might change (dynamic
// type, trait changes, theme reloads). Callers must invalidate it with
// [Cache.ClearFor] or [Cache.ClearAll] when that happens.
package sizing

import "github.com/go-drift/uikit/pkg/geometry"

// Default is the process-wide cache used when no cache is injected.
var Default = NewCache()

// Cache stores measured sizes keyed by renderer type and identifier, plus one
// template instance per renderer type.
//
// Cache is NOT thread-safe. It must only be used from the UI thread.
type Cache struct {
	sizes     map[string]map[any]geometry.Size
	templates map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		sizes:     make(map[string]map[any]geometry.Size),
		templates: make(map[string]any),
	}
}

// Size returns the cached size for (typeKey, id).
func (c *Cache) Size(typeKey string, id any) (geometry.Size, bool) {
	byID, ok := c.sizes[typeKey]
	if !ok {
		return geometry.Size{}, false
	}
	size, ok := byID[id]
	return size, ok
}

// Update stores or overwrites the size for (typeKey, id).
func (c *Cache) Update(typeKey string, id any, size geometry.Size) {
	byID, ok := c.sizes[typeKey]
	if !ok {
		byID = make(map[any]geometry.Size)
		c.sizes[typeKey] = byID
	}
	byID[id] = size
}

// Template returns the pooled template instance for typeKey.
func (c *Cache) Template(typeKey string) (any, bool) {
	t, ok := c.templates[typeKey]
	return t, ok
}

// SetTemplate pools template as the measuring instance for typeKey.
func (c *Cache) SetTemplate(typeKey string, template any) {
	c.templates[typeKey] = template
}

// Remove drops the cached size for (typeKey, id), keeping the template.
func (c *Cache) Remove(typeKey string, id any) {
	if byID, ok := c.sizes[typeKey]; ok {
		delete(byID, id)
	}
}

// ClearAll drops every cached size and every pooled template.
func (c *Cache) ClearAll() {
	clear(c.sizes)
	clear(c.templates)
}

// ClearFor drops cached sizes and the pooled template for one renderer type.
func (c *Cache) ClearFor(typeKey string) {
	delete(c.sizes, typeKey)
	delete(c.templates, typeKey)
}

// Len returns the number of cached sizes across all renderer types.
func (c *Cache) Len() int {
	n := 0
	for _, byID := range c.sizes {
		n += len(byID)
	}
	return n
}
