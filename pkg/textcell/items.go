package textcell

import (
	"golang.org/x/image/font"

	"github.com/go-drift/uikit/pkg/collection"
	"github.com/go-drift/uikit/pkg/geometry"
)

// Style is how a label lays out its text.
type Style struct {
	// Face defaults to basicfont.Face7x13.
	Face     font.Face
	Padding  geometry.EdgeInsets
	MaxLines int
}

// content is what a text leaf compares across reloads.
type content struct {
	Text     string
	Padding  geometry.EdgeInsets
	MaxLines int
}

func (s Style) content(text string) content {
	return content{Text: text, Padding: s.Padding, MaxLines: s.MaxLines}
}

func (s Style) configure(text string) func(*Label) {
	return func(l *Label) {
		l.Text = text
		l.Face = s.Face
		l.Padding = s.Padding
		l.MaxLines = s.MaxLines
	}
}

// NewItem returns a text cell. Changing text or style between reloads
// reloads the cell in place.
func NewItem(id collection.Identifier, text string, style Style) collection.Cell[*Label] {
	return collection.Cell[*Label]{
		ID:        id,
		Content:   style.content(text),
		New:       NewLabel,
		Configure: style.configure(text),
	}
}

// NewHeader returns a text header or footer.
func NewHeader(id collection.Identifier, text string, style Style) collection.View[*Label] {
	return collection.View[*Label]{
		ID:        id,
		Content:   style.content(text),
		New:       NewLabel,
		Configure: style.configure(text),
	}
}
