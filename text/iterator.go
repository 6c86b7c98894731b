package text

import (
	"unicode/utf8"

	"github.com/Duncaen/vis-go/text/grapheme"
)

// iterLookahead bounds how many bytes a grapheme/codepoint lookaround
// reads in one BytesGet call; generously larger than any real cluster.
const iterLookahead = 64

// Iterator walks a [Text]'s logical byte sequence at byte, codepoint,
// or grapheme-cluster granularity. The zero value is not
// useful; construct one with [Text.IteratorGet].
type Iterator struct {
	t   *Text
	pos Pos
}

// IteratorGet returns an iterator positioned at pos.
func (t *Text) IteratorGet(pos Pos) Iterator {
	return Iterator{t: t, pos: pos}
}

// Pos returns the iterator's current absolute byte position.
func (it Iterator) Pos() Pos {
	return it.pos
}

// Valid reports whether the iterator sits on a readable byte, or
// exactly at the end of a non-empty text (a position with no byte of
// its own but a readable preceding byte, e.g. for BytePrev).
func (it Iterator) Valid() bool {
	if it.pos < it.t.size {
		return true
	}

	return it.pos == it.t.size && it.t.size > 0
}

// ByteGet returns the byte at the iterator's position without
// advancing, or 0 at end-of-text.
func (it Iterator) ByteGet() byte {
	b, err := it.t.ByteGet(it.pos)
	if err != nil {
		return 0
	}

	return b
}

// ByteNext advances one byte forward (if not already at end-of-text)
// and returns the byte now at the iterator's position.
func (it *Iterator) ByteNext() byte {
	if it.pos < it.t.size {
		it.pos++
	}

	return it.ByteGet()
}

// BytePrev retreats one byte (if not already at the start) and returns
// the byte now at the iterator's position.
func (it *Iterator) BytePrev() byte {
	if it.pos > 0 {
		it.pos--
	}

	return it.ByteGet()
}

// CodepointNext decodes and advances past the codepoint starting at
// the iterator's position, returning it. ok is false at end-of-text.
func (it *Iterator) CodepointNext() (r rune, ok bool) {
	if it.pos >= it.t.size {
		return 0, false
	}

	buf, _ := it.t.BytesGet(it.pos, utf8.UTFMax)
	r, size := utf8.DecodeRune(buf)
	it.pos += Pos(size)

	return r, true
}

// CodepointPrev decodes the codepoint immediately before the
// iterator's position and retreats past it. ok is false at the start
// of the text.
func (it *Iterator) CodepointPrev() (r rune, ok bool) {
	if it.pos == 0 {
		return 0, false
	}

	from := Pos(0)
	if it.pos > utf8.UTFMax {
		from = it.pos - utf8.UTFMax
	}

	buf, _ := it.t.BytesGet(from, int(it.pos-from))
	r, size := utf8.DecodeLastRune(buf)
	it.pos -= Pos(size)

	return r, true
}

// CharNext advances past the grapheme cluster starting at the
// iterator's position and returns its bytes. ok is false at
// end-of-text.
func (it *Iterator) CharNext() (b []byte, ok bool) {
	if it.pos >= it.t.size {
		return nil, false
	}

	buf, _ := it.t.BytesGet(it.pos, iterLookahead)
	n := grapheme.NextBreak(buf)
	it.pos += Pos(n)

	return buf[:n], true
}

// CharPrev retreats past the grapheme cluster ending at the
// iterator's position and returns its bytes. ok is false at the start
// of the text.
func (it *Iterator) CharPrev() (b []byte, ok bool) {
	if it.pos == 0 {
		return nil, false
	}

	from := Pos(0)
	if it.pos > iterLookahead {
		from = it.pos - iterLookahead
	}

	buf, _ := it.t.BytesGet(from, int(it.pos-from))
	n := grapheme.PrevBreak(buf)
	it.pos -= Pos(n)

	return buf[len(buf)-n:], true
}

// CharGet returns the grapheme cluster at the iterator's position
// without advancing, treating a CR immediately followed by LF as a
// single logical '\n' cluster.
func (it Iterator) CharGet() (b []byte, ok bool) {
	if it.pos >= it.t.size {
		return nil, false
	}

	buf, _ := it.t.BytesGet(it.pos, iterLookahead)
	if len(buf) == 0 {
		return nil, false
	}

	if buf[0] == '\r' && len(buf) > 1 && buf[1] == '\n' {
		return buf[:2], true
	}

	n := grapheme.NextBreak(buf)

	return buf[:n], true
}
