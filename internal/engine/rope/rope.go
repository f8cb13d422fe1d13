// Package rope implements the persistent text sequence backing every open
// document. A Rope is an immutable value; every edit returns a new Rope that
// structurally shares unchanged subtrees with the old one, so snapshots are
// free and concurrent readers never need a lock.
package rope

import (
	"io"
	"strings"
)

// ByteOffset is an absolute byte position within a rope.
type ByteOffset int

// Point is a zero-indexed line/column position. Column is a byte offset
// within the line.
type Point struct {
	Line   int
	Column int
}

// Rope is an immutable rope over UTF-8 text.
type Rope struct {
	root *node
}

// New returns an empty rope.
func New() Rope {
	return Rope{}
}

// FromString builds a rope from s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return Rope{}
	}
	return Rope{root: buildLeaves(s)}
}

// FromReader builds a rope from everything r yields.
func FromReader(r io.Reader) (Rope, error) {
	var sb strings.Builder
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Rope{}, err
		}
	}
	return FromString(sb.String()), nil
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.summary.bytes
}

// IsEmpty reports whether the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.summary.newlines + 1
}

// String returns the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end), clamped to the
// rope's bounds.
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.slice(start, end, &sb)
	return sb.String()
}

// ByteAt returns the byte at offset. The second result is false when offset
// is out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	n := r.root
	for !n.isLeaf() {
		for _, c := range n.children {
			if offset < c.summary.bytes {
				n = c
				break
			}
			offset -= c.summary.bytes
		}
	}
	return n.leaf[offset], true
}

// Insert returns a rope with text inserted at offset. Offsets beyond the end
// append; negative offsets prepend.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if offset <= 0 {
		return FromString(text).Concat(r)
	}
	if offset >= r.Len() {
		return r.Concat(FromString(text))
	}
	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete returns a rope with the byte range [start, end) removed.
func (r Rope) Delete(start, end ByteOffset) Rope {
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace replaces [start, end) with text.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	if start >= end {
		return r.Insert(start, text)
	}
	if len(text) == 0 {
		return r.Delete(start, end)
	}
	return r.Delete(start, end).Insert(start, text)
}

// Split divides the rope at offset into [0, offset) and [offset, len).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return Rope{}, r
	}
	if offset >= r.Len() {
		return r, Rope{}
	}
	left, right := r.root.split(offset)
	return Rope{root: rebalanced(left)}, Rope{root: rebalanced(right)}
}

// Concat joins two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil {
		return other
	}
	if other.root == nil {
		return r
	}
	return Rope{root: rebalanced(concat(r.root, other.root))}
}

// LineStartOffset returns the byte offset where line begins. Lines past the
// end of the document resolve to Len.
func (r Rope) LineStartOffset(line int) ByteOffset {
	if r.root == nil || line <= 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}
	// Offset just past the line-th newline.
	return r.root.offsetAfterNewline(line)
}

// LineEndOffset returns the byte offset of the end of line, excluding its
// line break.
func (r Rope) LineEndOffset(line int) ByteOffset {
	if r.root == nil || line >= r.LineCount()-1 {
		return r.Len()
	}
	next := r.LineStartOffset(line + 1)
	// Step back over the break: \n or \r\n.
	end := next - 1
	if end > 0 {
		if b, ok := r.ByteAt(end - 1); ok && b == '\r' {
			end--
		}
	}
	return end
}

// LineBreakWidth returns the byte width of the break terminating line:
// 2 for \r\n, 1 for \n, 0 for the final line.
func (r Rope) LineBreakWidth(line int) int {
	if line >= r.LineCount()-1 {
		return 0
	}
	return int(r.LineStartOffset(line+1) - r.LineEndOffset(line))
}

// LineText returns the text of line without its line break.
func (r Rope) LineText(line int) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// OffsetToPoint converts a byte offset to a line/column position.
func (r Rope) OffsetToPoint(offset ByteOffset) Point {
	if r.root == nil || offset <= 0 {
		return Point{}
	}
	if offset > r.Len() {
		offset = r.Len()
	}
	line := r.root.newlinesBefore(offset)
	return Point{Line: line, Column: int(offset - r.LineStartOffset(line))}
}

// PointToOffset converts a line/column position to a byte offset, clamping
// the column to the line's length.
func (r Rope) PointToOffset(p Point) ByteOffset {
	start := r.LineStartOffset(p.Line)
	end := r.LineEndOffset(p.Line)
	if p.Column < 0 {
		return start
	}
	if start+ByteOffset(p.Column) > end {
		return end
	}
	return start + ByteOffset(p.Column)
}

// Equals reports whether two ropes hold the same text.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	return r.String() == other.String()
}
