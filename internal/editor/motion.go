package editor

import (
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/keen/internal/engine/buffer"
)

// graphemeWindow bounds how much text a single caret step inspects. No
// real-world grapheme cluster comes close to this.
const graphemeWindow = 256

// nextOffset returns the offset one caret step to the right: one grapheme
// cluster, so a CRLF pair or a combining sequence is crossed atomically.
func (e *Editor) nextOffset(off buffer.ByteOffset) buffer.ByteOffset {
	docLen := e.doc.Len()
	if off >= docLen {
		return docLen
	}
	end := off + graphemeWindow
	if end > docLen {
		end = docLen
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(e.doc.TextRange(off, end), -1)
	if cluster == "" {
		return docLen
	}
	return off + buffer.ByteOffset(len(cluster))
}

// prevOffset returns the offset one caret step to the left. Clusters never
// span a line break except CRLF itself, so scanning from the line start is
// enough context.
func (e *Editor) prevOffset(off buffer.ByteOffset) buffer.ByteOffset {
	if off <= 0 {
		return 0
	}
	start := e.doc.LineStartOffset(e.doc.OffsetToPoint(off - 1).Line)
	if off-start > graphemeWindow {
		start = off - graphemeWindow
	}
	text := e.doc.TextRange(start, off)
	prev := start
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		if len(text) == 0 {
			return prev
		}
		prev += buffer.ByteOffset(len(cluster))
	}
	return start
}

// MoveLeft moves the caret count steps left, saturating at the document
// start. With extend the anchor stays put and the selection grows.
func (e *Editor) MoveLeft(count int, extend bool) {
	off := e.Caret()
	for i := 0; i < count; i++ {
		off = e.prevOffset(off)
	}
	e.moveTo(off, extend)
}

// MoveRight moves the caret count steps right, saturating at the document
// end.
func (e *Editor) MoveRight(count int, extend bool) {
	off := e.Caret()
	for i := 0; i < count; i++ {
		off = e.nextOffset(off)
	}
	e.moveTo(off, extend)
}

func (e *Editor) moveTo(off buffer.ByteOffset, extend bool) {
	if extend {
		e.sel = e.sel.Extend(int(off))
	} else {
		e.sel = e.sel.MoveTo(int(off))
	}
	e.stickyColumn = 0
	e.onChange()
}

// MoveUp moves the caret one line up, keeping the sticky column. A caret on
// the first line does not move.
func (e *Editor) MoveUp(extend bool) {
	e.moveVertical(-1, extend)
}

// MoveDown moves the caret one line down, keeping the sticky column.
func (e *Editor) MoveDown(extend bool) {
	e.moveVertical(1, extend)
}

func (e *Editor) moveVertical(delta int, extend bool) {
	p := e.doc.OffsetToPoint(e.Caret())
	target := p.Line + delta
	if target < 0 || target > e.doc.LineCount()-1 {
		return
	}

	// The desired column is the furthest visited during this vertical run.
	desired := e.stickyColumn
	if p.Column > desired {
		desired = p.Column
	}
	e.stickyColumn = desired

	start := e.doc.LineStartOffset(target)
	end := e.doc.LineEndOffset(target)
	col := buffer.ByteOffset(desired)
	if start+col > end {
		col = end - start
	}
	off := snapToRuneStart(e.doc, start+col, start)

	if extend {
		e.sel = e.sel.Extend(int(off))
	} else {
		e.sel = e.sel.MoveTo(int(off))
	}
	e.onChange()
}

// snapToRuneStart steps off back to a rune boundary, not below floor.
func snapToRuneStart(doc *buffer.Document, off, floor buffer.ByteOffset) buffer.ByteOffset {
	for off > floor {
		b, ok := doc.Rope().ByteAt(off)
		if !ok || b&0xC0 != 0x80 {
			break
		}
		off--
	}
	return off
}

// charClass is the character class used by word-boundary scans.
type charClass int

const (
	classWord charClass = iota
	classPunctuation
	classLinebreak
)

func classOf(r rune) charClass {
	switch {
	case r == '\r' || r == '\n':
		return classLinebreak
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunctuation
	}
}

// wordScanRight returns the offset after the run of characters sharing the
// class of the character at off.
func (e *Editor) wordScanRight(off buffer.ByteOffset) buffer.ByteOffset {
	first, w := e.doc.RuneAt(off)
	if w == 0 {
		return off
	}
	cls := classOf(first)
	for {
		r, w := e.doc.RuneAt(off)
		if w == 0 || classOf(r) != cls {
			return off
		}
		off += buffer.ByteOffset(w)
	}
}

// wordScanLeft returns the offset before the run of characters sharing the
// class of the character just before off.
func (e *Editor) wordScanLeft(off buffer.ByteOffset) buffer.ByteOffset {
	first, w := e.doc.RuneBefore(off)
	if w == 0 {
		return off
	}
	cls := classOf(first)
	for {
		r, w := e.doc.RuneBefore(off)
		if w == 0 || classOf(r) != cls {
			return off
		}
		off -= buffer.ByteOffset(w)
	}
}

// MoveWordRight moves the caret past the run of characters sharing the
// class under it.
func (e *Editor) MoveWordRight(extend bool) {
	e.moveTo(e.wordScanRight(e.Caret()), extend)
}

// MoveWordLeft first steps one position left, to get off a boundary it is
// standing on, then moves before the run it landed in.
func (e *Editor) MoveWordLeft(extend bool) {
	off := e.prevOffset(e.Caret())
	if off > 0 {
		r, _ := e.doc.RuneAt(off)
		cls := classOf(r)
		for off > 0 {
			prev, w := e.doc.RuneBefore(off)
			if w == 0 || classOf(prev) != cls {
				break
			}
			off -= buffer.ByteOffset(w)
		}
	}
	e.moveTo(off, extend)
}

// wordAround returns the boundary-scan word containing off.
func (e *Editor) wordAround(off buffer.ByteOffset) (start, end buffer.ByteOffset) {
	r, w := e.doc.RuneAt(off)
	if w == 0 {
		if off > 0 {
			return e.wordScanLeft(off), off
		}
		return off, off
	}
	cls := classOf(r)
	start = off
	for start > 0 {
		prev, pw := e.doc.RuneBefore(start)
		if pw == 0 || classOf(prev) != cls {
			break
		}
		start -= buffer.ByteOffset(pw)
	}
	return start, e.wordScanRight(off)
}
