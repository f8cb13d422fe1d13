package editor

import "github.com/dshills/keen/internal/engine/buffer"

// Copy writes the selection to the clipboard. With no selection the whole
// current line, including its line break, is copied. Clipboard failures are
// logged and otherwise ignored.
func (e *Editor) Copy() {
	text := e.copyPayload()
	if text == "" {
		return
	}
	if err := e.clip.SetText(text); err != nil {
		e.log.Warn().Err(err).Msg("clipboard write failed")
	}
}

// Cut copies like Copy, then deletes what was copied.
func (e *Editor) Cut() {
	text := e.copyPayload()
	if text == "" {
		return
	}
	if err := e.clip.SetText(text); err != nil {
		e.log.Warn().Err(err).Msg("clipboard write failed")
		return
	}
	if !e.sel.IsEmpty() {
		e.DeleteSelection()
		return
	}
	start, end := e.currentLineSpan()
	e.deleteRange(start, end)
	e.finishEdit(start)
}

// Paste inserts the clipboard text at the caret. An empty or failed read
// is a no-op.
func (e *Editor) Paste() {
	text, err := e.clip.Text()
	if err != nil {
		e.log.Warn().Err(err).Msg("clipboard read failed")
		return
	}
	if text == "" {
		return
	}
	e.InsertChars(text)
}

func (e *Editor) copyPayload() string {
	if !e.sel.IsEmpty() {
		return e.SelectedText()
	}
	start, end := e.currentLineSpan()
	return e.doc.TextRange(start, end)
}

// currentLineSpan returns the caret's line including its line break.
func (e *Editor) currentLineSpan() (start, end buffer.ByteOffset) {
	line := e.doc.OffsetToPoint(e.Caret()).Line
	start = e.doc.LineStartOffset(line)
	end = e.doc.LineEndOffset(line) + buffer.ByteOffset(e.doc.LineBreakWidth(line))
	return start, end
}
