package editor

import (
	"strings"

	"github.com/dshills/keen/internal/engine/buffer"
	"github.com/dshills/keen/internal/engine/caret"
)

// InsertChars replaces the selection, if any, with text and leaves the
// caret after it.
func (e *Editor) InsertChars(text string) {
	if !e.sel.IsEmpty() {
		e.deleteRange(buffer.ByteOffset(e.sel.Start()), buffer.ByteOffset(e.sel.End()))
	}
	end := e.doc.Insert(e.Caret(), text)
	e.sel = caret.Cursor(int(end))
	e.stickyColumn = 0
	e.onChange()
}

// InsertChar inserts a single typed character, applying bracket
// auto-completion, close-bracket type-over, and close-bracket de-indent.
func (e *Editor) InsertChar(ch byte) {
	if !e.sel.IsEmpty() {
		e.deleteRange(buffer.ByteOffset(e.sel.Start()), buffer.ByteOffset(e.sel.End()))
		e.sel = e.sel.Collapse()
	}
	off := e.Caret()

	// A typed tab becomes one indent unit of spaces.
	if ch == '\t' {
		end := e.doc.Insert(off, strings.Repeat(" ", e.indentWidth))
		e.sel = caret.Cursor(int(end))
		e.stickyColumn = 0
		e.onChange()
		return
	}

	if e.isCloser(ch) {
		off = e.deindentForCloser(ch, off)

		// Type-over: the closer is already there, step across it.
		if b, ok := e.doc.Rope().ByteAt(off); ok && b == ch {
			e.sel = caret.Cursor(int(off) + 1)
			e.stickyColumn = 0
			e.onChange()
			return
		}
	}

	if closer, ok := e.pairs[ch]; ok {
		e.doc.Insert(off, string([]byte{ch, closer}))
		e.sel = caret.Cursor(int(off) + 1)
		e.stickyColumn = 0
		e.onChange()
		return
	}

	end := e.doc.Insert(off, string(ch))
	e.sel = caret.Cursor(int(end))
	e.stickyColumn = 0
	e.onChange()
}

// isCloser reports whether ch closes one of the configured pairs.
func (e *Editor) isCloser(ch byte) bool {
	for _, c := range e.pairs {
		if c == ch {
			return true
		}
	}
	return false
}

// deindentForCloser removes one indent unit when a closing bracket is typed
// with the caret exactly at the end of the line's leading indentation and
// that indentation is at least one unit of spaces. Returns the caret offset
// after the removal. Tab-indented lines are left alone.
func (e *Editor) deindentForCloser(ch byte, off buffer.ByteOffset) buffer.ByteOffset {
	line := e.doc.OffsetToPoint(off).Line
	start := e.doc.LineStartOffset(line)
	text := e.doc.LineText(line)

	indent := 0
	for indent < len(text) && text[indent] == ' ' {
		indent++
	}
	if off != start+buffer.ByteOffset(indent) || indent < e.indentWidth {
		return off
	}
	e.deleteRange(off-buffer.ByteOffset(e.indentWidth), off)
	return off - buffer.ByteOffset(e.indentWidth)
}

// InsertNewline inserts a line break with auto-indentation. Between a
// hanging open bracket and its closer it expands the scope onto three
// lines; after an unclosed open bracket it indents one unit deeper;
// otherwise it preserves the current indentation.
func (e *Editor) InsertNewline() {
	if !e.sel.IsEmpty() {
		e.DeleteSelection()
	}
	off := e.Caret()
	line := e.doc.OffsetToPoint(off).Line
	lineStart := e.doc.LineStartOffset(line)
	text := e.doc.LineText(line)

	indent := leadingIndent(text)
	br := e.doc.LineEnding().Sequence()
	unit := strings.Repeat(" ", e.indentWidth)

	// An opening bracket with only blanks between it and the caret?
	back := off
	for back > lineStart {
		b, ok := e.doc.Rope().ByteAt(back - 1)
		if !ok || (b != ' ' && b != '\t') {
			break
		}
		back--
	}
	var open byte
	if back > lineStart {
		if b, ok := e.doc.Rope().ByteAt(back - 1); ok {
			if _, isOpen := e.pairs[b]; isOpen {
				open = b
			}
		}
	}

	if open == 0 {
		end := e.doc.Insert(off, br+indent)
		e.finishEdit(end)
		return
	}

	// Matching closer ahead, with only blanks between?
	fwd := off
	docLen := e.doc.Len()
	for fwd < docLen {
		b, ok := e.doc.Rope().ByteAt(fwd)
		if !ok || (b != ' ' && b != '\t') {
			break
		}
		fwd++
	}
	closed := false
	if b, ok := e.doc.Rope().ByteAt(fwd); ok && b == e.pairs[open] {
		closed = true
	}

	if closed {
		// Scope expansion: caret ends on the indented middle line.
		middle := br + indent + unit
		e.doc.Insert(off, middle+br+indent)
		e.finishEdit(off + buffer.ByteOffset(len(middle)))
		return
	}

	end := e.doc.Insert(off, br+indent+unit)
	e.finishEdit(end)
}

func (e *Editor) finishEdit(off buffer.ByteOffset) {
	e.sel = caret.Cursor(int(off))
	e.stickyColumn = 0
	e.onChange()
}

// leadingIndent returns the run of blanks opening a line.
func leadingIndent(text string) string {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return text[:i]
}

// DeleteLeft deletes the selection, or one unit before the caret: a CRLF
// pair, an indent-width run of spaces, or a single character.
func (e *Editor) DeleteLeft() {
	if !e.sel.IsEmpty() {
		e.DeleteSelection()
		return
	}
	off := e.Caret()
	if off == 0 {
		return
	}
	n := e.unitBefore(off)
	e.deleteRange(off-n, off)
	e.finishEdit(off - n)
}

// DeleteRight deletes the selection, or one unit after the caret.
func (e *Editor) DeleteRight() {
	if !e.sel.IsEmpty() {
		e.DeleteSelection()
		return
	}
	off := e.Caret()
	if off >= e.doc.Len() {
		return
	}
	n := e.unitAfter(off)
	e.deleteRange(off, off+n)
	e.finishEdit(off)
}

func (e *Editor) unitBefore(off buffer.ByteOffset) buffer.ByteOffset {
	if off >= 2 && e.doc.TextRange(off-2, off) == "\r\n" {
		return 2
	}
	w := buffer.ByteOffset(e.indentWidth)
	if off >= w && e.doc.TextRange(off-w, off) == strings.Repeat(" ", e.indentWidth) {
		return w
	}
	_, rw := e.doc.RuneBefore(off)
	if rw == 0 {
		rw = 1
	}
	return buffer.ByteOffset(rw)
}

func (e *Editor) unitAfter(off buffer.ByteOffset) buffer.ByteOffset {
	docLen := e.doc.Len()
	if off+2 <= docLen && e.doc.TextRange(off, off+2) == "\r\n" {
		return 2
	}
	w := buffer.ByteOffset(e.indentWidth)
	if off+w <= docLen && e.doc.TextRange(off, off+w) == strings.Repeat(" ", e.indentWidth) {
		return w
	}
	_, rw := e.doc.RuneAt(off)
	if rw == 0 {
		rw = 1
	}
	return buffer.ByteOffset(rw)
}

// DeleteWordLeft deletes from the caret back through one boundary scan.
func (e *Editor) DeleteWordLeft() {
	if e.sel.IsEmpty() {
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
		e.sel = e.sel.Extend(int(off))
	}
	e.DeleteSelection()
}

// DeleteWordRight deletes from the caret forward through one boundary scan.
func (e *Editor) DeleteWordRight() {
	if e.sel.IsEmpty() {
		e.sel = e.sel.Extend(int(e.wordScanRight(e.Caret())))
	}
	e.DeleteSelection()
}

// DeleteSelection removes the selected span and collapses the caret to its
// lower end. No selection is a no-op.
func (e *Editor) DeleteSelection() {
	if e.sel.IsEmpty() {
		return
	}
	start := buffer.ByteOffset(e.sel.Start())
	e.deleteRange(start, buffer.ByteOffset(e.sel.End()))
	e.finishEdit(start)
}

// deleteRange removes [start, end) and keeps the selection consistent.
func (e *Editor) deleteRange(start, end buffer.ByteOffset) {
	if err := e.doc.Delete(start, end); err != nil {
		e.log.Warn().Err(err).Int("start", int(start)).Int("end", int(end)).Msg("delete rejected")
		return
	}
	e.sel = caret.Cursor(int(start))
}
