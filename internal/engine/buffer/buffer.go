// Package buffer wraps a rope with the per-document state the editor needs:
// the file path, the language identifier derived at open time, the line
// ending style, and a revision counter that feeds didChange versions.
package buffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/keen/internal/engine/rope"
)

// Errors returned by document operations.
var (
	// ErrDecode indicates the file's bytes could not be decoded as text.
	ErrDecode = errors.New("file is not valid text")

	// ErrRangeInvalid indicates an edit range that is inverted or out of bounds.
	ErrRangeInvalid = errors.New("invalid range")
)

// ByteOffset is re-exported for callers that do not import rope directly.
type ByteOffset = rope.ByteOffset

// Point is re-exported for callers that do not import rope directly.
type Point = rope.Point

// LineEnding is the document's line break style.
type LineEnding uint8

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
)

// Sequence returns the line break characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// Document is one open file. Identity (path, language) is immutable;
// content is not. A Document is exclusively owned by one editor and is
// not safe for concurrent mutation.
type Document struct {
	rope       rope.Rope
	path       string
	languageID string
	lineEnding LineEnding
	version    int
}

// Option configures a Document at construction.
type Option func(*Document)

// WithLanguageID sets the language identifier.
func WithLanguageID(id string) Option {
	return func(d *Document) { d.languageID = id }
}

// WithLineEnding sets the preferred line break style for new content.
func WithLineEnding(le LineEnding) Option {
	return func(d *Document) { d.lineEnding = le }
}

// Open reads the file at path into a new document. Open and decode failures
// are surfaced to the caller; a document is never silently created empty.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}

	d := &Document{
		path:       path,
		languageID: languageIDForPath(path),
		lineEnding: detectLineEnding(text),
		version:    1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.rope = rope.FromString(text)
	return d, nil
}

// languageIDs maps file extensions to language identifiers. Derived once at
// open time; the identifier is immutable afterwards.
var languageIDs = map[string]string{
	".c":   "cpp",
	".h":   "cpp",
	".cpp": "cpp",
	".hpp": "cpp",
	".cxx": "cpp",
	".rs":  "rust",
}

func languageIDForPath(path string) string {
	return languageIDs[strings.ToLower(filepath.Ext(path))]
}

// FromString builds an in-memory document, mainly for tests.
func FromString(text string, opts ...Option) *Document {
	d := &Document{
		lineEnding: detectLineEnding(text),
		version:    1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.rope = rope.FromString(text)
	return d
}

// detectLineEnding picks the style of the first line break found.
func detectLineEnding(text string) LineEnding {
	if idx := strings.IndexByte(text, '\n'); idx > 0 && text[idx-1] == '\r' {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// Path returns the file path, empty for in-memory documents.
func (d *Document) Path() string { return d.path }

// LanguageID returns the language identifier chosen at open time.
func (d *Document) LanguageID() string { return d.languageID }

// LineEnding returns the document's line break style.
func (d *Document) LineEnding() LineEnding { return d.lineEnding }

// Version returns the revision counter, bumped on every mutation.
func (d *Document) Version() int { return d.version }

// Rope returns the current content snapshot. The rope is immutable, so the
// caller may hold it across later edits.
func (d *Document) Rope() rope.Rope { return d.rope }

// Len returns the total byte length.
func (d *Document) Len() ByteOffset { return d.rope.Len() }

// Text returns the full content.
func (d *Document) Text() string { return d.rope.String() }

// TextRange returns the content of [start, end), clamped.
func (d *Document) TextRange(start, end ByteOffset) string {
	return d.rope.Slice(start, end)
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return d.rope.LineCount() }

// LineText returns line's text without its break.
func (d *Document) LineText(line int) string { return d.rope.LineText(line) }

// LineStartOffset returns the byte offset where line begins.
func (d *Document) LineStartOffset(line int) ByteOffset { return d.rope.LineStartOffset(line) }

// LineEndOffset returns the byte offset of line's end, excluding the break.
func (d *Document) LineEndOffset(line int) ByteOffset { return d.rope.LineEndOffset(line) }

// LineBreakWidth returns the byte width of line's terminating break.
func (d *Document) LineBreakWidth(line int) int { return d.rope.LineBreakWidth(line) }

// OffsetToPoint converts a byte offset to line/column.
func (d *Document) OffsetToPoint(offset ByteOffset) Point { return d.rope.OffsetToPoint(offset) }

// PointToOffset converts line/column to a byte offset.
func (d *Document) PointToOffset(p Point) ByteOffset { return d.rope.PointToOffset(p) }

// RuneAt decodes the rune starting at offset. Returns utf8.RuneError with
// size 0 when offset is out of range.
func (d *Document) RuneAt(offset ByteOffset) (rune, int) {
	if offset < 0 || offset >= d.rope.Len() {
		return utf8.RuneError, 0
	}
	end := offset + utf8.UTFMax
	if end > d.rope.Len() {
		end = d.rope.Len()
	}
	return utf8.DecodeRuneInString(d.rope.Slice(offset, end))
}

// RuneBefore decodes the rune ending at offset.
func (d *Document) RuneBefore(offset ByteOffset) (rune, int) {
	if offset <= 0 || offset > d.rope.Len() {
		return utf8.RuneError, 0
	}
	start := offset - utf8.UTFMax
	if start < 0 {
		start = 0
	}
	return utf8.DecodeLastRuneInString(d.rope.Slice(start, offset))
}

// Insert inserts text at offset (clamped to the document bounds) and
// returns the offset just past the inserted text.
func (d *Document) Insert(offset ByteOffset, text string) ByteOffset {
	if len(text) == 0 {
		return offset
	}
	if offset < 0 {
		offset = 0
	}
	if offset > d.rope.Len() {
		offset = d.rope.Len()
	}
	d.rope = d.rope.Insert(offset, text)
	d.version++
	return offset + ByteOffset(len(text))
}

// Delete removes [start, end). Inverted or out-of-range edits are rejected.
func (d *Document) Delete(start, end ByteOffset) error {
	if start < 0 || start > end || end > d.rope.Len() {
		return ErrRangeInvalid
	}
	if start == end {
		return nil
	}
	d.rope = d.rope.Delete(start, end)
	d.version++
	return nil
}

// Replace substitutes [start, end) with text and returns the offset just
// past the replacement.
func (d *Document) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	if start < 0 || start > end || end > d.rope.Len() {
		return 0, ErrRangeInvalid
	}
	d.rope = d.rope.Replace(start, end, text)
	d.version++
	return start + ByteOffset(len(text)), nil
}

// PointUTF16 is a zero-indexed line/column position in UTF-16 code units,
// the coordinate space of the wire protocol.
type PointUTF16 struct {
	Line   int
	Column int
}

// OffsetToPointUTF16 converts a byte offset to protocol coordinates.
func (d *Document) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	p := d.rope.OffsetToPoint(offset)
	prefix := d.rope.Slice(d.rope.LineStartOffset(p.Line), offset)

	col := 0
	for _, r := range prefix {
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
	}
	return PointUTF16{Line: p.Line, Column: col}
}
