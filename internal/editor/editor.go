// Package editor implements the text buffer engine: caret and selection
// state over one document, edit and navigation operations, clipboard and
// mouse interaction, and the viewport bookkeeping that must stay
// consistent with every change.
package editor

import (
	"github.com/rs/zerolog"

	"github.com/dshills/keen/internal/clipboard"
	"github.com/dshills/keen/internal/editor/viewport"
	"github.com/dshills/keen/internal/engine/buffer"
	"github.com/dshills/keen/internal/engine/caret"
)

// DefaultIndentWidth is the indent unit in spaces when none is configured.
const DefaultIndentWidth = 4

// defaultPairs are the bracket pairs eligible for auto-completion.
var defaultPairs = map[byte]byte{'(': ')', '{': '}', '[': ']'}

// Editor owns one open document and every operation on it. Not safe for
// concurrent use; each document has exactly one editor.
type Editor struct {
	doc  *buffer.Document
	sel  caret.Selection
	view *viewport.Viewport

	// stickyColumn remembers the furthest column visited during a run of
	// vertical moves. Reset to 0 by horizontal moves and edits.
	stickyColumn int

	dirty bool

	indentWidth int
	pairs       map[byte]byte
	clip        clipboard.Clipboard
	hit         HitTester
	log         zerolog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithClipboard sets the clipboard collaborator.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(e *Editor) { e.clip = c }
}

// WithHitTester sets the hit-test collaborator.
func WithHitTester(h HitTester) Option {
	return func(e *Editor) { e.hit = h }
}

// WithIndentWidth sets the indent unit in spaces.
func WithIndentWidth(w int) Option {
	return func(e *Editor) {
		if w > 0 {
			e.indentWidth = w
		}
	}
}

// WithBracketPairs replaces the auto-completion bracket set.
func WithBracketPairs(pairs map[byte]byte) Option {
	return func(e *Editor) {
		if len(pairs) > 0 {
			e.pairs = pairs
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// New builds an editor over doc with the given viewport geometry.
func New(doc *buffer.Document, maxRows, maxColumns int, opts ...Option) *Editor {
	e := &Editor{
		doc:         doc,
		sel:         caret.Cursor(0),
		view:        viewport.New(maxRows, maxColumns),
		indentWidth: DefaultIndentWidth,
		pairs:       defaultPairs,
		clip:        &clipboard.Memory{},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hit == nil {
		e.hit = MonospaceHitTester{}
	}
	e.view.Recompute(doc)
	return e
}

// Open reads path into a document and builds its editor. A file that cannot
// be opened or decoded is an error, never an empty document.
func Open(path string, maxRows, maxColumns int, opts ...Option) (*Editor, error) {
	doc, err := buffer.Open(path)
	if err != nil {
		return nil, err
	}
	return New(doc, maxRows, maxColumns, opts...), nil
}

// Document returns the open document.
func (e *Editor) Document() *buffer.Document { return e.doc }

// Selection returns the current selection.
func (e *Editor) Selection() caret.Selection { return e.sel }

// Viewport returns the viewport.
func (e *Editor) Viewport() *viewport.Viewport { return e.view }

// Caret returns the caret's absolute byte offset.
func (e *Editor) Caret() buffer.ByteOffset { return buffer.ByteOffset(e.sel.Head) }

// Dirty reports whether the renderer needs to redraw.
func (e *Editor) Dirty() bool { return e.dirty }

// ClearDirty acknowledges a redraw.
func (e *Editor) ClearDirty() { e.dirty = false }

// SetSelection replaces the selection, clamped to the document.
func (e *Editor) SetSelection(sel caret.Selection) {
	e.sel = sel.Clamp(int(e.doc.Len()))
	e.onChange()
}

// Resize updates the viewport geometry.
func (e *Editor) Resize(maxRows, maxColumns int) {
	e.view.Resize(maxRows, maxColumns)
	e.onChange()
}

// ScrollUp scrolls the view up n lines.
func (e *Editor) ScrollUp(n int) {
	e.view.ScrollUp(n)
	e.afterScroll()
}

// ScrollDown scrolls the view down n lines.
func (e *Editor) ScrollDown(n int) {
	e.view.ScrollDown(n, e.doc.LineCount())
	e.afterScroll()
}

// ScrollLeft scrolls the view left n display columns.
func (e *Editor) ScrollLeft(n int) {
	e.view.ScrollLeft(n)
	e.afterScroll()
}

// ScrollRight scrolls the view right n display columns, never past the
// current line's content.
func (e *Editor) ScrollRight(n int) {
	line := e.doc.OffsetToPoint(e.Caret()).Line
	width := viewport.LineWidth(e.doc.LineText(line))
	e.view.ScrollRight(n, width)
	e.afterScroll()
}

// afterScroll re-derives view bounds and margin without moving the caret:
// scrolling is allowed to take the caret off screen.
func (e *Editor) afterScroll() {
	e.view.Recompute(e.doc)
	e.dirty = true
}

// onChange restores the editor invariants after a mutation: margin and view
// bounds first, then the caret is forced back into view, then the dirty
// flag is raised.
func (e *Editor) onChange() {
	e.view.Recompute(e.doc)
	line := e.doc.OffsetToPoint(e.Caret()).Line
	if e.view.EnsureLineVisible(line, e.doc.LineCount()) {
		e.view.Recompute(e.doc)
	}
	e.dirty = true
}

// SelectedText returns the selected text, empty when the selection is.
func (e *Editor) SelectedText() string {
	if e.sel.IsEmpty() {
		return ""
	}
	return e.doc.TextRange(buffer.ByteOffset(e.sel.Start()), buffer.ByteOffset(e.sel.End()))
}
