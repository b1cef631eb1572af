// Package builder flattens conditional and looped declarations into plain
// ordered lists.
//
// Each combinator returns a slice; Build concatenates them in source order.
// Absent values contribute nothing and branch constructs contribute exactly
// one side. Nothing is deduplicated or reordered.
//
//	body := builder.Build(
//	    builder.Of[collection.BodyNode](header),
//	    builder.ForEach(rows, func(i int, r Row) []collection.BodyNode {
//	        return builder.Of[collection.BodyNode](rowItem(r))
//	    }),
//	    builder.If(showFooter, func() []collection.BodyNode {
//	        return builder.Of[collection.BodyNode](footer)
//	    }),
//	)
package builder

// Build concatenates parts in order.
func Build[T any](parts ...[]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Of wraps expressions into a component.
func Of[T any](items ...T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Maybe contributes item only when ok is true.
func Maybe[T any](item T, ok bool) []T {
	if !ok {
		return nil
	}
	return []T{item}
}

// Optional contributes *p when p is non-nil.
func Optional[T any](p *T) []T {
	if p == nil {
		return nil
	}
	return []T{*p}
}

// If contributes then() when cond holds.
func If[T any](cond bool, then func() []T) []T {
	if !cond || then == nil {
		return nil
	}
	return then()
}

// Either contributes first() when cond holds and second() otherwise.
func Either[T any](cond bool, first, second func() []T) []T {
	branch := second
	if cond {
		branch = first
	}
	if branch == nil {
		return nil
	}
	return branch()
}

// ForEach contributes fn(i, item) for every item, in index order.
func ForEach[E, T any](items []E, fn func(int, E) []T) []T {
	if fn == nil {
		return nil
	}
	var out []T
	for i, item := range items {
		out = append(out, fn(i, item)...)
	}
	return out
}
