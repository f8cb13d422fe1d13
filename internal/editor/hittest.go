package editor

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/keen/internal/editor/viewport"
	"github.com/dshills/keen/internal/engine/buffer"
	"github.com/dshills/keen/internal/engine/caret"
)

// HitTester maps viewport-relative cell positions to document carets and
// back. A pixel-accurate implementation belongs to the renderer; the editor
// only needs the mapping.
type HitTester interface {
	// Hit resolves a viewport-relative (row, column) to a caret. Positions
	// past the end of a line resolve to the line end; rows past the last
	// line resolve to the last line.
	Hit(doc *buffer.Document, view *viewport.Viewport, row, col int) caret.Caret

	// Locate returns the viewport-relative cell of an offset, with ok false
	// when the offset is scrolled out of view.
	Locate(doc *buffer.Document, view *viewport.Viewport, off buffer.ByteOffset) (row, col int, ok bool)
}

// MonospaceHitTester assumes a fixed-width cell grid, one cell per display
// column as measured by runewidth.
type MonospaceHitTester struct{}

// Hit resolves a cell position to a caret. Clicking the far half of a
// double-width character yields a trailing caret.
func (MonospaceHitTester) Hit(doc *buffer.Document, view *viewport.Viewport, row, col int) caret.Caret {
	line := view.TopLine() + row
	if line > doc.LineCount()-1 {
		line = doc.LineCount() - 1
	}
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	target := view.LeftColumn() + col

	start := doc.LineStartOffset(line)
	text := doc.LineText(line)
	cell := 0
	for i, r := range text {
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		if target < cell+w {
			c := caret.At(int(start) + i)
			// Far half of a wide glyph: caret goes behind it.
			if w > 1 && target > cell {
				c.Trailing = 1
			}
			return c
		}
		cell += w
	}
	return caret.At(int(start) + len(text))
}

// Locate returns the cell of off, or ok false when off is out of view.
func (MonospaceHitTester) Locate(doc *buffer.Document, view *viewport.Viewport, off buffer.ByteOffset) (row, col int, ok bool) {
	p := doc.OffsetToPoint(off)
	if !view.IsLineVisible(p.Line, doc.LineCount()) {
		return 0, 0, false
	}
	cell := 0
	text := doc.LineText(p.Line)
	for i, r := range text {
		if i >= p.Column {
			break
		}
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		cell += w
	}
	col = cell - view.LeftColumn()
	if col < 0 || col >= view.MaxColumns() {
		return 0, 0, false
	}
	return p.Line - view.TopLine(), col, true
}
