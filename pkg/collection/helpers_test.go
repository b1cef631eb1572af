package collection_test

import (
	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
	uikittest "github.com/go-drift/uikit/pkg/testing"
)

// label is a text renderer ten points per character along the floating axis.
type label struct {
	text string
}

func (l *label) FittingSize(target geometry.Size, h, v sizing.Priority) geometry.Size {
	if h == sizing.Required {
		return geometry.Size{Width: target.Width, Height: float64(10 * len(l.text))}
	}
	return geometry.Size{Width: float64(10 * len(l.text)), Height: target.Height}
}

// badge is a second renderer type with its own reuse key.
type badge struct {
	label
}

var labelKey = sizing.TypeKey[*label]()

func newLabel(geometry.Size) *label { return &label{} }

func cell(id string) collection.Cell[*label] {
	return textCell(id, id)
}

func textCell(id, text string) collection.Cell[*label] {
	return collection.Cell[*label]{
		ID:        id,
		Content:   text,
		New:       newLabel,
		Configure: func(l *label) { l.text = text },
	}
}

func header(id string) collection.View[*label] {
	return collection.View[*label]{
		ID:        id,
		Content:   id,
		New:       newLabel,
		Configure: func(l *label) { l.text = id },
	}
}

func cells(ids []string) []collection.BodyNode {
	out := make([]collection.BodyNode, len(ids))
	for i, id := range ids {
		out[i] = cell(id)
	}
	return out
}

func identifiers(ids ...string) []collection.Identifier {
	out := make([]collection.Identifier, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func body(ids ...string) []uikittest.SectionState {
	return []uikittest.SectionState{{ID: 0, Items: identifiers(ids...)}}
}

func path(section, item int) collection.IndexPath {
	return collection.IndexPath{Section: section, Item: item}
}
