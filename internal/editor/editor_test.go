package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/keen/internal/clipboard"
	"github.com/dshills/keen/internal/engine/buffer"
	"github.com/dshills/keen/internal/engine/caret"
	"github.com/dshills/keen/internal/highlight"
)

func newEditor(t *testing.T, text string, opts ...Option) *Editor {
	t.Helper()
	return New(buffer.FromString(text), 10, 80, opts...)
}

func caretAt(t *testing.T, e *Editor, want int) {
	t.Helper()
	if got := int(e.Caret()); got != want {
		t.Errorf("caret at %d, want %d", got, want)
	}
}

func contentIs(t *testing.T, e *Editor, want string) {
	t.Helper()
	if got := e.Document().Text(); got != want {
		t.Errorf("content %q, want %q", got, want)
	}
}

func TestMoveRightLeftRoundTrip(t *testing.T) {
	e := newEditor(t, "hello world")
	e.MoveRight(5, false)
	caretAt(t, e, 5)
	e.MoveLeft(5, false)
	caretAt(t, e, 0)
}

func TestMoveSaturatesAtBounds(t *testing.T) {
	e := newEditor(t, "ab")
	e.MoveLeft(3, false)
	caretAt(t, e, 0)
	e.MoveRight(10, false)
	caretAt(t, e, 2)
}

func TestMoveAcrossCRLFIsAtomic(t *testing.T) {
	e := newEditor(t, "a\r\nb")
	e.MoveRight(2, false)
	caretAt(t, e, 3) // lands past the pair, never between \r and \n
	e.MoveLeft(1, false)
	caretAt(t, e, 1)
}

func TestMoveAcrossMultibyteRune(t *testing.T) {
	e := newEditor(t, "aéb") // é is 2 bytes
	e.MoveRight(2, false)
	caretAt(t, e, 3)
	e.MoveLeft(1, false)
	caretAt(t, e, 1)
}

func TestMoveExtendGrowsSelection(t *testing.T) {
	e := newEditor(t, "abcdef")
	e.MoveRight(2, false)
	e.MoveRight(3, true)
	sel := e.Selection()
	if sel.Start() != 2 || sel.End() != 5 {
		t.Errorf("selection [%d,%d), want [2,5)", sel.Start(), sel.End())
	}
	e.MoveRight(1, false)
	if !e.Selection().IsEmpty() {
		t.Error("plain move must collapse the selection")
	}
}

func TestMoveVerticalStickyColumn(t *testing.T) {
	// Long line, short line, long line: moving down twice from column 6
	// crosses the short line and recovers the column.
	e := newEditor(t, "abcdefgh\nab\nabcdefgh")
	e.MoveRight(6, false)
	e.MoveDown(false)
	caretAt(t, e, 11) // clamped to end of "ab"
	e.MoveDown(false)
	caretAt(t, e, 18) // column 6 on the third line
}

func TestMoveVerticalClampsBeforeLineBreak(t *testing.T) {
	e := newEditor(t, "abcdef\nab\ncd")
	e.MoveRight(5, false)
	e.MoveDown(false)
	// End of "ab" is offset 9, before the line break.
	caretAt(t, e, 9)
}

func TestMoveVerticalAtEdgesIsNoop(t *testing.T) {
	e := newEditor(t, "ab\ncd")
	e.MoveUp(false)
	caretAt(t, e, 0)
	e.MoveDown(false)
	e.MoveDown(false)
	e.MoveDown(false)
	p := e.Document().OffsetToPoint(e.Caret())
	if p.Line != 1 {
		t.Errorf("caret on line %d, want 1", p.Line)
	}
}

func TestStickyColumnResetsOnHorizontalMove(t *testing.T) {
	e := newEditor(t, "abcdefgh\nab\nabcdefgh")
	e.MoveRight(6, false)
	e.MoveDown(false)
	e.MoveLeft(1, false) // horizontal move resets the cache
	e.MoveDown(false)
	p := e.Document().OffsetToPoint(e.Caret())
	if p.Line != 2 || p.Column != 1 {
		t.Errorf("caret at %d:%d, want 2:1", p.Line, p.Column)
	}
}

func TestMoveWordRight(t *testing.T) {
	e := newEditor(t, "foo_bar 42+baz")
	e.MoveWordRight(false)
	caretAt(t, e, 7) // underscore is a word character

	e2 := newEditor(t, "foo_bar 42+baz")
	e2.MoveRight(8, false)
	e2.MoveWordRight(false)
	caretAt(t, e2, 10) // end of "42"
}

func TestMoveWordLeft(t *testing.T) {
	e := newEditor(t, "foo bar")
	e.MoveRight(7, false)
	e.MoveWordLeft(false)
	caretAt(t, e, 4) // start of "bar"
	e.MoveWordLeft(false)
	caretAt(t, e, 3) // the space run
	e.MoveWordLeft(false)
	caretAt(t, e, 0)
}

func TestInsertCharsReplacesSelection(t *testing.T) {
	e := newEditor(t, "hello world")
	e.MoveRight(5, false)
	e.MoveRight(6, true) // select " world"
	e.InsertChars("!")
	contentIs(t, e, "hello!")
	caretAt(t, e, 6)
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	e := newEditor(t, "abc")
	e.MoveRight(1, false)
	s := "xyz"
	e.InsertChars(s)
	for range s {
		e.DeleteLeft()
	}
	contentIs(t, e, "abc")
	caretAt(t, e, 1)
}

func TestBracketAutoCompletion(t *testing.T) {
	e := newEditor(t, "foo")
	e.MoveRight(3, false)
	e.InsertChar('(')
	contentIs(t, e, "foo()")
	caretAt(t, e, 4) // between the pair
}

func TestCloseBracketTypeOver(t *testing.T) {
	e := newEditor(t, "foo()")
	e.MoveRight(4, false)
	e.InsertChar(')')
	contentIs(t, e, "foo()")
	caretAt(t, e, 5)
}

func TestCloseBracketDeindent(t *testing.T) {
	e := newEditor(t, "if {\n        x\n        ")
	e.MoveRight(int(e.Document().Len()), false) // caret at indentation end
	e.InsertChar('}')
	contentIs(t, e, "if {\n        x\n    }")
}

func TestCloseBracketNoDeindentMidLine(t *testing.T) {
	e := newEditor(t, "    x")
	e.MoveRight(5, false)
	e.InsertChar(')')
	contentIs(t, e, "    x)")
}

func TestInsertNewlineScopeExpansion(t *testing.T) {
	e := newEditor(t, "if (x) {}")
	e.MoveRight(8, false) // between { and }
	e.InsertNewline()
	contentIs(t, e, "if (x) {\n    \n}")
	caretAt(t, e, 13) // end of the indented middle line
}

func TestInsertNewlineScopeExpansionNested(t *testing.T) {
	e := newEditor(t, "    if {}")
	e.MoveRight(8, false)
	e.InsertNewline()
	contentIs(t, e, "    if {\n        \n    }")
}

func TestInsertNewlineIndentIncrease(t *testing.T) {
	e := newEditor(t, "if (x) {")
	e.MoveRight(8, false)
	e.InsertNewline()
	contentIs(t, e, "if (x) {\n    ")
	caretAt(t, e, 13)
}

func TestInsertNewlinePreservesIndent(t *testing.T) {
	e := newEditor(t, "    foo;")
	e.MoveRight(8, false)
	e.InsertNewline()
	contentIs(t, e, "    foo;\n    ")
}

func TestInsertNewlineCRLFDocument(t *testing.T) {
	e := newEditor(t, "a{}\r\nb")
	e.MoveRight(2, false)
	e.InsertNewline()
	contentIs(t, e, "a{\r\n    \r\n}\r\nb")
}

func TestDeleteLeftUnits(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		caret   int
		want    string
		wantPos int
	}{
		{"single char", "abc", 2, "ac", 1},
		{"crlf pair", "a\r\nb", 3, "ab", 1},
		{"indent run", "x\n        y", 10, "x\n    y", 6},
		{"multibyte rune", "aéb", 3, "ab", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, tt.text)
			e.SetSelection(caret.Cursor(tt.caret))
			e.DeleteLeft()
			contentIs(t, e, tt.want)
			caretAt(t, e, tt.wantPos)
		})
	}
}

func TestDeleteRightUnits(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  int
		want string
	}{
		{"single char", "abc", 1, "ac"},
		{"crlf pair", "a\r\nb", 1, "ab"},
		{"indent run", "x\n    y", 2, "x\ny"},
		{"at end noop", "ab", 2, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, tt.text)
			e.SetSelection(caret.Cursor(tt.pos))
			e.DeleteRight()
			contentIs(t, e, tt.want)
		})
	}
}

func TestDeleteWordLeft(t *testing.T) {
	e := newEditor(t, "foo bar")
	e.MoveRight(7, false)
	e.DeleteWordLeft()
	contentIs(t, e, "foo ")
}

func TestDeleteWordRight(t *testing.T) {
	e := newEditor(t, "foo bar")
	e.DeleteWordRight()
	contentIs(t, e, " bar")
}

func TestDeleteSelectionCollapsesToStart(t *testing.T) {
	e := newEditor(t, "abcdef")
	// Select backward: anchor 5, head 2.
	e.SetSelection(caret.Selection{Anchor: 5, Head: 2})
	e.DeleteSelection()
	contentIs(t, e, "abf")
	caretAt(t, e, 2)
}

func TestCopyPasteSelection(t *testing.T) {
	clip := &clipboard.Memory{}
	e := newEditor(t, "hello world", WithClipboard(clip))
	e.MoveRight(5, true)
	e.Copy()

	got, _ := clip.Text()
	if got != "hello" {
		t.Fatalf("clipboard %q, want %q", got, "hello")
	}

	e.MoveRight(11, false)
	e.Paste()
	contentIs(t, e, "hello worldhello")
}

func TestCopyWholeLineWhenNoSelection(t *testing.T) {
	clip := &clipboard.Memory{}
	e := newEditor(t, "one\ntwo\nthree", WithClipboard(clip))
	e.MoveDown(false)
	e.Copy()
	got, _ := clip.Text()
	if got != "two\n" {
		t.Errorf("clipboard %q, want %q", got, "two\n")
	}
}

func TestCutWholeLine(t *testing.T) {
	clip := &clipboard.Memory{}
	e := newEditor(t, "one\ntwo\nthree", WithClipboard(clip))
	e.MoveDown(false)
	e.Cut()
	contentIs(t, e, "one\nthree")
	got, _ := clip.Text()
	if got != "two\n" {
		t.Errorf("clipboard %q, want %q", got, "two\n")
	}
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	e := newEditor(t, "abc", WithClipboard(&clipboard.Memory{}))
	e.Paste()
	contentIs(t, e, "abc")
}

func TestLeftClickPlacesCaret(t *testing.T) {
	e := newEditor(t, "hello\nworld")
	e.LeftClick(1, 3, false)
	caretAt(t, e, 9)
	if !e.Selection().IsEmpty() {
		t.Error("plain click collapses the selection")
	}
}

func TestLeftClickExtend(t *testing.T) {
	e := newEditor(t, "hello\nworld")
	e.LeftClick(0, 1, false)
	e.LeftClick(1, 2, true)
	sel := e.Selection()
	if sel.Start() != 1 || sel.End() != 8 {
		t.Errorf("selection [%d,%d), want [1,8)", sel.Start(), sel.End())
	}
}

func TestLeftClickPastLineEnd(t *testing.T) {
	e := newEditor(t, "ab\nlonger line")
	e.LeftClick(0, 40, false)
	caretAt(t, e, 2)
}

func TestLeftClickLastRowScrolls(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	e := New(buffer.FromString(text), 5, 80)
	e.LeftClick(4, 0, false)
	if e.Viewport().TopLine() != 1 {
		t.Errorf("TopLine = %d, want 1", e.Viewport().TopLine())
	}
}

func TestLeftDoubleClickSelectsWord(t *testing.T) {
	e := newEditor(t, "foo bar_baz qux")
	e.LeftDoubleClick(0, 6)
	sel := e.Selection()
	if sel.Start() != 4 || sel.End() != 11 {
		t.Errorf("selection [%d,%d), want [4,11)", sel.Start(), sel.End())
	}
}

func TestScrollClampsAndRecomputes(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	e := New(buffer.FromString(text), 5, 80)

	e.ScrollDown(3)
	if e.Viewport().TopLine() != 3 {
		t.Errorf("TopLine = %d, want 3", e.Viewport().TopLine())
	}
	if e.Viewport().ViewStart() != 15 {
		t.Errorf("ViewStart = %d, want 15", e.Viewport().ViewStart())
	}

	e.ScrollUp(100)
	if e.Viewport().TopLine() != 0 {
		t.Errorf("TopLine = %d, want 0", e.Viewport().TopLine())
	}
}

func TestScrollDoesNotMoveCaret(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	e := New(buffer.FromString(text), 5, 80)
	e.ScrollDown(10)
	caretAt(t, e, 0) // caret may leave the view; scrolling never moves it
}

func TestEditScrollsCaretBackIntoView(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	e := New(buffer.FromString(text), 5, 80)
	e.ScrollDown(10)
	e.InsertChars("x")
	if e.Viewport().TopLine() != 0 {
		t.Errorf("TopLine = %d, want 0 after caret-into-view", e.Viewport().TopLine())
	}
}

func TestVerticalMoveScrollsOneLine(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	e := New(buffer.FromString(text), 5, 80)
	for i := 0; i < 5; i++ {
		e.MoveDown(false)
	}
	if e.Viewport().TopLine() != 1 {
		t.Errorf("TopLine = %d, want 1", e.Viewport().TopLine())
	}
}

func TestDirtyFlag(t *testing.T) {
	e := newEditor(t, "abc")
	e.ClearDirty()
	e.MoveRight(1, false)
	if !e.Dirty() {
		t.Error("move must set the dirty flag")
	}
	e.ClearDirty()
	if e.Dirty() {
		t.Error("ClearDirty must reset the flag")
	}
}

func TestMonospaceHitTesterWideRune(t *testing.T) {
	doc := buffer.FromString("a世b")
	e := New(doc, 5, 80)
	v := e.Viewport()

	c := MonospaceHitTester{}.Hit(doc, v, 0, 1)
	if c.Pos != 1 || c.Trailing != 0 {
		t.Errorf("leading cell: %v", c)
	}
	c = MonospaceHitTester{}.Hit(doc, v, 0, 2)
	if c.Pos != 1 || c.Trailing != 1 {
		t.Errorf("far half of wide glyph: %v", c)
	}
}

func TestMonospaceHitTesterLocate(t *testing.T) {
	doc := buffer.FromString("ab\ncd")
	e := New(doc, 5, 80)
	row, col, ok := MonospaceHitTester{}.Locate(doc, e.Viewport(), 4)
	if !ok || row != 1 || col != 1 {
		t.Errorf("Locate = (%d,%d,%v), want (1,1,true)", row, col, ok)
	}
}

func TestOpenDerivesLanguageProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	if err := os.WriteFile(path, []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := Open(path, 10, 80)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := e.Document().LanguageID(); got != "rust" {
		t.Errorf("LanguageID = %q, want rust", got)
	}
	if highlight.ProfileForLanguage(e.Document().LanguageID()) == nil {
		t.Error("opened .rs file has no language profile")
	}
}

func TestInsertTabExpandsToIndentUnit(t *testing.T) {
	e := newEditor(t, "ab")
	e.MoveRight(1, false)
	e.InsertChar('\t')
	if got := e.Document().Text(); got != "a    b" {
		t.Errorf("text = %q, want %q", got, "a    b")
	}
	caretAt(t, e, 5)
}

func TestInsertTabUsesConfiguredWidth(t *testing.T) {
	e := newEditor(t, "", WithIndentWidth(2))
	e.InsertChar('\t')
	if got := e.Document().Text(); got != "  " {
		t.Errorf("text = %q, want two spaces", got)
	}
	caretAt(t, e, 2)
}

func TestInsertTabReplacesSelection(t *testing.T) {
	e := newEditor(t, "hello")
	e.SetSelection(caret.Selection{Anchor: 1, Head: 4})
	e.InsertChar('\t')
	if got := e.Document().Text(); got != "h    o" {
		t.Errorf("text = %q, want %q", got, "h    o")
	}
	caretAt(t, e, 5)
}
