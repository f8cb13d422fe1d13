// Package viewport tracks which window of a document is scrolled into view:
// the top visible line, the leftmost visible column, the derived absolute
// byte bounds of the visible text, and the line-number margin width.
package viewport

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/keen/internal/engine/buffer"
)

// Viewport is the visible window over one document. Byte bounds and margin
// are derived state; call Recompute after any content or geometry change.
type Viewport struct {
	topLine    int
	leftColumn int
	maxRows    int
	maxColumns int

	viewStart buffer.ByteOffset
	viewEnd   buffer.ByteOffset
	margin    int
}

// New creates a viewport with the given geometry.
// Rows and columns are clamped to a minimum of 1.
func New(maxRows, maxColumns int) *Viewport {
	if maxRows < 1 {
		maxRows = 1
	}
	if maxColumns < 1 {
		maxColumns = 1
	}
	return &Viewport{maxRows: maxRows, maxColumns: maxColumns}
}

// TopLine returns the first visible line (0-indexed).
func (v *Viewport) TopLine() int { return v.topLine }

// LeftColumn returns the first visible display column.
func (v *Viewport) LeftColumn() int { return v.leftColumn }

// MaxRows returns the viewport height in rows.
func (v *Viewport) MaxRows() int { return v.maxRows }

// MaxColumns returns the viewport width in display columns.
func (v *Viewport) MaxColumns() int { return v.maxColumns }

// ViewStart returns the absolute byte offset of the first visible line's start.
func (v *Viewport) ViewStart() buffer.ByteOffset { return v.viewStart }

// ViewEnd returns the absolute byte offset just past the last visible line,
// clipped to the document length.
func (v *Viewport) ViewEnd() buffer.ByteOffset { return v.viewEnd }

// Margin returns the line-number margin width: the digit count of the last
// visible line number plus one.
func (v *Viewport) Margin() int { return v.margin }

// Resize updates the viewport geometry, clamped to a minimum of 1x1.
func (v *Viewport) Resize(maxRows, maxColumns int) {
	if maxRows < 1 {
		maxRows = 1
	}
	if maxColumns < 1 {
		maxColumns = 1
	}
	v.maxRows = maxRows
	v.maxColumns = maxColumns
}

// LastLine returns the last visible line given the document's line count.
func (v *Viewport) LastLine(lineCount int) int {
	last := v.topLine + v.maxRows - 1
	if last > lineCount-1 {
		last = lineCount - 1
	}
	if last < v.topLine {
		last = v.topLine
	}
	return last
}

// IsLineVisible reports whether line falls within the visible rows.
func (v *Viewport) IsLineVisible(line int, lineCount int) bool {
	return line >= v.topLine && line <= v.LastLine(lineCount)
}

// Recompute re-derives the absolute byte bounds and the margin width from
// the document. The top line is clamped into the document first.
func (v *Viewport) Recompute(doc *buffer.Document) {
	lineCount := doc.LineCount()
	if v.topLine > lineCount-1 {
		v.topLine = lineCount - 1
	}
	if v.topLine < 0 {
		v.topLine = 0
	}

	last := v.LastLine(lineCount)
	v.viewStart = doc.LineStartOffset(v.topLine)
	if last+1 < lineCount {
		v.viewEnd = doc.LineStartOffset(last + 1)
	} else {
		v.viewEnd = doc.Len()
	}
	v.margin = digits(last+1) + 1
}

// ScrollUp moves the window up by n lines, stopping at the first line.
func (v *Viewport) ScrollUp(n int) {
	v.topLine -= n
	if v.topLine < 0 {
		v.topLine = 0
	}
}

// ScrollDown moves the window down by n lines, stopping at the last line.
func (v *Viewport) ScrollDown(n, lineCount int) {
	v.topLine += n
	if v.topLine > lineCount-1 {
		v.topLine = lineCount - 1
	}
	if v.topLine < 0 {
		v.topLine = 0
	}
}

// ScrollLeft moves the window left by n display columns, stopping at 0.
func (v *Viewport) ScrollLeft(n int) {
	v.leftColumn -= n
	if v.leftColumn < 0 {
		v.leftColumn = 0
	}
}

// ScrollRight moves the window right by n display columns. lineWidth is the
// display width of the current line; the window never scrolls past it.
func (v *Viewport) ScrollRight(n, lineWidth int) {
	v.leftColumn += n
	if v.leftColumn > lineWidth {
		v.leftColumn = lineWidth
	}
	if v.leftColumn < 0 {
		v.leftColumn = 0
	}
}

// EnsureLineVisible scrolls minimally so that line is within the visible
// rows. It reports whether the top line moved.
func (v *Viewport) EnsureLineVisible(line, lineCount int) bool {
	if line < 0 {
		line = 0
	}
	if line > lineCount-1 {
		line = lineCount - 1
	}
	switch {
	case line < v.topLine:
		v.topLine = line
		return true
	case line > v.LastLine(lineCount):
		v.topLine = line - (v.maxRows - 1)
		if v.topLine < 0 {
			v.topLine = 0
		}
		return true
	}
	return false
}

// ClipRow cuts a line's text to the visible display-column window
// [LeftColumn, LeftColumn+MaxColumns). A wide rune straddling either edge
// is dropped rather than split.
func (v *Viewport) ClipRow(text string) string {
	start := -1
	col := 0
	end := len(text)
	for i, r := range text {
		w := runewidth.RuneWidth(r)
		if start < 0 && col >= v.leftColumn {
			start = i
		}
		if col+w > v.leftColumn+v.maxColumns {
			end = i
			break
		}
		col += w
	}
	if start < 0 {
		return ""
	}
	return text[start:end]
}

// LineWidth returns the display width of a line's text in terminal cells.
func LineWidth(text string) int {
	return runewidth.StringWidth(text)
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
