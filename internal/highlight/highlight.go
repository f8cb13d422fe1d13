package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a classified byte range, relative to the view window. Recomputed
// on every view-affecting change; never persisted.
type Span struct {
	Start    int
	Length   int
	Category Category
}

// BracketPair identifies the innermost bracket pair enclosing the caret,
// as byte offsets relative to the view window.
type BracketPair struct {
	Open  int
	Close int
}

// Result is the output of one highlighting pass.
type Result struct {
	Spans    []Span
	Brackets *BracketPair
}

// BackwardIterator yields runes walking backward from the view start. The
// rope's backward iterator satisfies it.
type BackwardIterator interface {
	Prev() (rune, bool)
}

// bracketPairs are the bracket kinds the enclosing scan matches.
var bracketPairs = [...][2]rune{
	{'(', ')'},
	{'{', '}'},
	{'[', ']'},
}

// OpeningBracket returns the pair whose opening rune is r.
func OpeningBracket(r rune) ([2]rune, bool) {
	for _, p := range bracketPairs {
		if r == p[0] {
			return p, true
		}
	}
	return [2]rune{}, false
}

// ClosingBracket returns the pair whose closing rune is r.
func ClosingBracket(r rune) ([2]rune, bool) {
	for _, p := range bracketPairs {
		if r == p[1] {
			return p, true
		}
	}
	return [2]rune{}, false
}

// Highlight tokenizes view, the text of the current view window starting at
// absolute offset viewStart, and locates the bracket pair enclosing the
// caret (given as an absolute offset). back iterates backward from the view
// start and is consumed by the comment-continuation pre-scan. A nil profile
// yields no spans and no brackets.
func Highlight(view string, viewStart, caretAbs int, profile *Profile, back BackwardIterator) Result {
	if profile == nil {
		return Result{}
	}

	insideComment := scanCommentContinuation(profile, back)
	spans, stillInside := forwardPass(view, profile, insideComment)

	// The pre-scan said we start inside a comment and the pass never found
	// the closing delimiter: the whole view is one comment.
	if stillInside {
		return Result{
			Spans: []Span{{Start: 0, Length: len(view), Category: CategoryComment}},
		}
	}

	return Result{
		Spans:    spans,
		Brackets: enclosingBrackets(view, caretAbs-viewStart, spans),
	}
}

// scanCommentContinuation walks backward from the view start matching the
// reversed block-comment delimiters with two independent cursors. Whichever
// matches first tells us whether the view begins inside a block comment.
func scanCommentContinuation(profile *Profile, back BackwardIterator) bool {
	if back == nil || profile.BlockCommentOpen == "" {
		return false
	}

	open := []rune(profile.BlockCommentOpen)
	clos := []rune(profile.BlockCommentClose)
	reverse(open)
	reverse(clos)

	oi, ci := 0, 0
	for {
		r, ok := back.Prev()
		if !ok {
			return false
		}
		if r == open[oi] {
			oi++
			if oi == len(open) {
				return true
			}
		} else {
			oi = 0
		}
		if r == clos[ci] {
			ci++
			if ci == len(clos) {
				return false
			}
		} else {
			ci = 0
		}
	}
}

func reverse(rs []rune) {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
}

// forwardPass is the single tokenizing sweep over the view. It returns the
// spans found and whether the view ends still inside the continuation
// comment that the pre-scan opened.
func forwardPass(view string, profile *Profile, insideComment bool) ([]Span, bool) {
	var spans []Span
	identStart := -1

	flushIdent := func(end int) {
		if identStart < 0 {
			return
		}
		word := view[identStart:end]
		switch {
		case profile.IsKeyword(word):
			spans = append(spans, Span{Start: identStart, Length: len(word), Category: CategoryKeyword})
		case profile.Preprocessor && strings.HasPrefix(word, "#"):
			spans = append(spans, Span{Start: identStart, Length: len(word), Category: CategoryPreprocessor})
		}
		identStart = -1
	}

	offset := 0
	for offset < len(view) {
		rest := view[offset:]

		switch {
		case insideComment && strings.HasPrefix(rest, profile.BlockCommentClose):
			end := offset + len(profile.BlockCommentClose)
			spans = append(spans, Span{Start: 0, Length: end, Category: CategoryComment})
			insideComment = false
			offset = end
			continue

		case !insideComment && profile.BlockCommentOpen != "" && strings.HasPrefix(rest, profile.BlockCommentOpen):
			flushIdent(offset)
			// The close scan starts at the open delimiter itself, so the
			// two may share a byte: "/*/" is a complete comment.
			if end := strings.Index(rest, profile.BlockCommentClose); end >= 0 {
				length := end + len(profile.BlockCommentClose)
				spans = append(spans, Span{Start: offset, Length: length, Category: CategoryComment})
				offset += length
			} else {
				spans = append(spans, Span{Start: offset, Length: len(view) - offset, Category: CategoryComment})
				offset = len(view)
			}
			continue

		case !insideComment && rest[0] == profile.StringQuote:
			flushIdent(offset)
			length := stringLiteralLen(rest, profile)
			spans = append(spans, Span{Start: offset, Length: length, Category: CategoryLiteral})
			offset += length
			continue

		case !insideComment && profile.LineComment != "" && strings.HasPrefix(rest, profile.LineComment):
			flushIdent(offset)
			if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
				spans = append(spans, Span{Start: offset, Length: nl, Category: CategoryComment})
				offset += nl
			} else {
				spans = append(spans, Span{Start: offset, Length: len(view) - offset, Category: CategoryComment})
				offset = len(view)
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(rest)
		if size == 0 {
			break
		}
		if insideComment {
			offset += size
			continue
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '#' {
			if identStart < 0 {
				identStart = offset
			}
		} else {
			flushIdent(offset)
		}
		offset += size
	}
	if !insideComment {
		flushIdent(len(view))
	}

	return spans, insideComment
}

// stringLiteralLen measures a string literal starting at the quote in s.
// The literal runs until an unescaped closing quote or a line break, or the
// end of the view when unterminated.
func stringLiteralLen(s string, profile *Profile) int {
	i := 1
	for i < len(s) {
		if strings.HasPrefix(s[i:], profile.StringEscape) {
			i += len(profile.StringEscape)
			continue
		}
		if s[i] == profile.StringQuote {
			return i + 1
		}
		if s[i] == '\n' || s[i] == '\r' {
			return i + 1
		}
		i++
	}
	return len(s)
}

// enclosingBrackets finds the innermost bracket pair around the caret. A
// stack over the view's opening brackets before the caret yields the
// innermost unmatched open; the forward half then counts nesting until the
// matching close. Brackets inside comment spans are invisible to the scan.
func enclosingBrackets(view string, caretRel int, spans []Span) *BracketPair {
	if caretRel < 0 {
		caretRel = 0
	}
	if caretRel > len(view) {
		caretRel = len(view)
	}

	inComment := func(pos int) bool {
		for _, sp := range spans {
			if sp.Category != CategoryComment {
				continue
			}
			if pos >= sp.Start && pos < sp.Start+sp.Length {
				return true
			}
		}
		return false
	}

	// One stack per bracket kind: a close cancels only the nearest open of
	// its own kind, matching how the backward scan counts per kind.
	stacks := make(map[[2]rune][]int, len(bracketPairs))

	pos := 0
	for pos < caretRel {
		r, size := utf8.DecodeRuneInString(view[pos:])
		if size == 0 {
			break
		}
		if !inComment(pos) {
			if pair, ok := OpeningBracket(r); ok {
				stacks[pair] = append(stacks[pair], pos)
			} else if pair, ok := ClosingBracket(r); ok {
				if s := stacks[pair]; len(s) > 0 {
					stacks[pair] = s[:len(s)-1]
				}
			}
		}
		pos += size
	}

	// The innermost unmatched open is the closest one behind the caret.
	tracked := struct {
		pair [2]rune
		pos  int
	}{pos: -1}
	for pair, s := range stacks {
		if len(s) > 0 && s[len(s)-1] > tracked.pos {
			tracked.pair = pair
			tracked.pos = s[len(s)-1]
		}
	}
	if tracked.pos < 0 {
		return nil
	}

	// Forward from the caret: nested opens of the tracked kind must close
	// before ours does.
	depth := 0
	for pos < len(view) {
		r, size := utf8.DecodeRuneInString(view[pos:])
		if size == 0 {
			break
		}
		if !inComment(pos) {
			switch r {
			case tracked.pair[0]:
				depth++
			case tracked.pair[1]:
				if depth == 0 {
					return &BracketPair{Open: tracked.pos, Close: pos}
				}
				depth--
			}
		}
		pos += size
	}

	return nil
}
