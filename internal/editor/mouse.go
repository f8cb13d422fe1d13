package editor

import "github.com/dshills/keen/internal/engine/buffer"

// LeftClick places the caret at a viewport-relative cell position. With
// extend the anchor stays where it was. A click on the last visible row
// also scrolls down one line to reveal what is below.
func (e *Editor) LeftClick(row, col int, extend bool) {
	c := e.hit.Hit(e.doc, e.view, row, col)
	off := c.Pos
	if c.Trailing != 0 {
		_, w := e.doc.RuneAt(buffer.ByteOffset(c.Pos))
		off = c.Abs(w)
	}
	if extend {
		e.sel = e.sel.Extend(off)
	} else {
		e.sel = e.sel.MoveTo(off)
	}
	e.stickyColumn = 0

	if row >= e.view.MaxRows()-1 {
		e.view.ScrollDown(1, e.doc.LineCount())
	}
	e.onChange()
}

// LeftDoubleClick selects the boundary-scan word under the clicked cell.
func (e *Editor) LeftDoubleClick(row, col int) {
	c := e.hit.Hit(e.doc, e.view, row, col)
	start, end := e.wordAround(buffer.ByteOffset(c.Pos))
	e.sel = e.sel.MoveTo(int(start)).Extend(int(end))
	e.stickyColumn = 0
	e.onChange()
}
