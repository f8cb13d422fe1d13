// Package caret holds the caret and selection value types. A caret is a
// byte offset plus a trailing flag: the flag distinguishes "before" from
// "after" the character at the same offset, which matters when a hit-test
// lands on the far half of a glyph.
package caret

import "fmt"

// ByteOffset mirrors the rope's offset type without importing it; the two
// are converted at the editor boundary.
type ByteOffset = int

// Caret is an insertion point. Immutable value type.
type Caret struct {
	// Pos is the byte offset of the character the caret sits at.
	Pos ByteOffset

	// Trailing is 0 when the caret is in front of the character at Pos
	// and 1 when it is behind it. Always 0 when Pos is at document end.
	Trailing int
}

// At returns a caret directly in front of offset.
func At(offset ByteOffset) Caret {
	if offset < 0 {
		offset = 0
	}
	return Caret{Pos: offset}
}

// Abs returns the effective insertion offset: Pos plus the trailing flag's
// byte width contribution, as resolved by the owner. width is the byte size
// of the character at Pos (0 when Trailing is 0).
func (c Caret) Abs(width int) ByteOffset {
	if c.Trailing == 0 {
		return c.Pos
	}
	return c.Pos + width
}

// Collapsed returns the caret with the trailing flag resolved into Pos.
func (c Caret) Collapsed(width int) Caret {
	return Caret{Pos: c.Abs(width)}
}

func (c Caret) String() string {
	if c.Trailing != 0 {
		return fmt.Sprintf("Caret(%d+)", c.Pos)
	}
	return fmt.Sprintf("Caret(%d)", c.Pos)
}

// Selection is a possibly-empty span of text. Anchor is the fixed end;
// Head is the moving end where typing happens. Immutable value type.
type Selection struct {
	Anchor ByteOffset
	Head   ByteOffset
}

// Cursor returns a collapsed selection at offset.
func Cursor(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty reports whether the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound.
func (s Selection) Start() ByteOffset {
	if s.Anchor <= s.Head {
		return s.Anchor
	}
	return s.Head
}

// End returns the upper bound.
func (s Selection) End() ByteOffset {
	if s.Anchor >= s.Head {
		return s.Anchor
	}
	return s.Head
}

// Len returns the selection's byte length.
func (s Selection) Len() ByteOffset {
	return s.End() - s.Start()
}

// MoveTo returns a collapsed selection at offset.
func (s Selection) MoveTo(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// Extend returns the selection with a moved head and a fixed anchor.
func (s Selection) Extend(offset ByteOffset) Selection {
	return Selection{Anchor: s.Anchor, Head: offset}
}

// Collapse collapses to the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// CollapseToStart collapses to the lower bound.
func (s Selection) CollapseToStart() Selection {
	start := s.Start()
	return Selection{Anchor: start, Head: start}
}

// Contains reports whether offset falls inside the selected span.
func (s Selection) Contains(offset ByteOffset) bool {
	return offset >= s.Start() && offset < s.End()
}

// Clamp bounds both ends to [0, max].
func (s Selection) Clamp(max ByteOffset) Selection {
	clamp := func(v ByteOffset) ByteOffset {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	return Selection{Anchor: clamp(s.Anchor), Head: clamp(s.Head)}
}

func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", s.Head)
	}
	return fmt.Sprintf("Selection(%d..%d)", s.Anchor, s.Head)
}
