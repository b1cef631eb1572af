// Package textcell provides a text renderer for collection items and
// headers. A [Label] wraps its text to the available width using the
// metrics of a [font.Face], so the same cell measures correctly against
// bitmap fonts and terminal grids alike.
package textcell

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/uikit/pkg/geometry"
	"github.com/go-drift/uikit/pkg/sizing"
)

// Label is a block of wrapped text.
type Label struct {
	Text    string
	Face    font.Face
	Padding geometry.EdgeInsets
	// MaxLines limits wrapping. Zero means unlimited.
	MaxLines int

	// Frame is the size the label was created or last laid out with.
	Frame geometry.Size
}

// NewLabel creates an empty label in the default face.
func NewLabel(frame geometry.Size) *Label {
	return &Label{Face: basicfont.Face7x13, Frame: frame}
}

func (l *Label) face() font.Face {
	if l.Face == nil {
		return basicfont.Face7x13
	}
	return l.Face
}

// LineHeight returns the height of one line of text.
func (l *Label) LineHeight() float64 {
	return float64(l.face().Metrics().Height.Ceil())
}

// TextWidth returns the advance width of s.
func (l *Label) TextWidth(s string) float64 {
	return float64(font.MeasureString(l.face(), s).Ceil())
}

// Lines wraps the text to width, honouring MaxLines. A non-positive width
// keeps each paragraph on one line.
func (l *Label) Lines(width float64) []string {
	var lines []string
	for _, para := range strings.Split(l.Text, "\n") {
		lines = append(lines, l.wrap(para, width)...)
	}
	if l.MaxLines > 0 && len(lines) > l.MaxLines {
		lines = lines[:l.MaxLines]
	}
	return lines
}

func (l *Label) wrap(para string, width float64) []string {
	words := strings.FieldsFunc(para, unicode.IsSpace)
	if len(words) == 0 {
		return []string{""}
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if l.TextWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		// Break words wider than the line by rune.
		for l.TextWidth(w) > width {
			head := l.fit(w, width)
			lines = append(lines, head)
			w = w[len(head):]
		}
		line = w
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// fit returns the longest prefix of w that fits width, at least one rune.
func (l *Label) fit(w string, width float64) string {
	end := 0
	for i, r := range w {
		next := i + len(string(r))
		if end > 0 && l.TextWidth(w[:next]) > width {
			break
		}
		end = next
	}
	return w[:end]
}

// FittingSize implements sizing.Fitter. With a required width the text
// wraps and the height grows; otherwise the text stays on its paragraph
// lines and the width grows.
func (l *Label) FittingSize(target geometry.Size, horizontal, vertical sizing.Priority) geometry.Size {
	if horizontal == sizing.Required {
		lines := l.Lines(target.Width - l.Padding.Horizontal())
		return geometry.Size{
			Width:  target.Width,
			Height: float64(len(lines))*l.LineHeight() + l.Padding.Vertical(),
		}
	}

	lines := l.Lines(0)
	widest := 0.0
	for _, line := range lines {
		widest = max(widest, l.TextWidth(line))
	}
	size := geometry.Size{Width: widest + l.Padding.Horizontal(), Height: target.Height}
	if vertical != sizing.Required {
		size.Height = float64(len(lines))*l.LineHeight() + l.Padding.Vertical()
	}
	return size
}

var _ sizing.Fitter = (*Label)(nil)
