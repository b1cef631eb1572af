package main

import (
	"image"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// cellFace is a font.Face over a terminal grid: one unit is one cell, wide
// runes take two.
type cellFace struct{}

var _ font.Face = cellFace{}

func (cellFace) Close() error { return nil }

func (f cellFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	advance, ok := f.GlyphAdvance(r)
	return image.Rectangle{}, nil, image.Point{}, advance, ok
}

func (f cellFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	advance, ok := f.GlyphAdvance(r)
	return fixed.Rectangle26_6{Max: fixed.Point26_6{X: advance, Y: fixed.I(1)}}, advance, ok
}

func (cellFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return fixed.I(runewidth.RuneWidth(r)), true
}

func (cellFace) Kern(r0, r1 rune) fixed.Int26_6 { return 0 }

func (cellFace) Metrics() font.Metrics {
	return font.Metrics{Height: fixed.I(1), Ascent: fixed.I(1), CapHeight: fixed.I(1), XHeight: fixed.I(1)}
}
