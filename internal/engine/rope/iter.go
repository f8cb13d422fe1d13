package rope

import "unicode/utf8"

// windowSize is how much text an iterator fetches per refill. Iteration is
// O(log n) per window, not per rune.
const windowSize = 256

// RuneIterator walks runes forward from a starting offset.
type RuneIterator struct {
	rope   Rope
	offset ByteOffset
	window string
	start  ByteOffset // offset of window[0]
}

// RunesFrom returns an iterator positioned at offset.
func (r Rope) RunesFrom(offset ByteOffset) *RuneIterator {
	if offset < 0 {
		offset = 0
	}
	return &RuneIterator{rope: r, offset: offset, start: offset}
}

// Offset returns the byte offset of the next rune.
func (it *RuneIterator) Offset() ByteOffset {
	return it.offset
}

// Next returns the next rune and advances. ok is false at the end.
func (it *RuneIterator) Next() (r rune, ok bool) {
	if it.offset >= it.rope.Len() {
		return 0, false
	}
	rel := int(it.offset - it.start)
	if rel < 0 || rel+utf8.UTFMax > len(it.window) {
		end := it.offset + windowSize
		if end > it.rope.Len() {
			end = it.rope.Len()
		}
		it.window = it.rope.Slice(it.offset, end)
		it.start = it.offset
		rel = 0
	}
	r, size := utf8.DecodeRuneInString(it.window[rel:])
	if size == 0 {
		return 0, false
	}
	it.offset += ByteOffset(size)
	return r, true
}

// BackwardRuneIterator walks runes backward from a starting offset. The rune
// returned by Prev is the one ending at the current offset.
type BackwardRuneIterator struct {
	rope   Rope
	offset ByteOffset
	window string
	start  ByteOffset
}

// RunesBefore returns a backward iterator positioned at offset.
func (r Rope) RunesBefore(offset ByteOffset) *BackwardRuneIterator {
	if offset > r.Len() {
		offset = r.Len()
	}
	return &BackwardRuneIterator{rope: r, offset: offset, start: offset}
}

// Offset returns the byte offset in front of the next rune Prev will yield.
func (it *BackwardRuneIterator) Offset() ByteOffset {
	return it.offset
}

// Prev returns the rune before the current offset and retreats past it.
// ok is false at the start of the rope.
func (it *BackwardRuneIterator) Prev() (r rune, ok bool) {
	if it.offset <= 0 {
		return 0, false
	}
	rel := int(it.offset - it.start)
	// Refill when the window is exhausted, or when so little of it remains
	// that its leading edge may have cut a multi-byte rune.
	if rel > len(it.window) || (rel < utf8.UTFMax && it.start > 0) || rel <= 0 {
		start := it.offset - windowSize
		if start < 0 {
			start = 0
		}
		it.window = it.rope.Slice(start, it.offset)
		it.start = start
		rel = len(it.window)
	}
	r, size := utf8.DecodeLastRuneInString(it.window[:rel])
	if size == 0 {
		return 0, false
	}
	it.offset -= ByteOffset(size)
	return r, true
}
