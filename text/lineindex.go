package text

import "sort"

// lineIndex caches the byte offset each line starts at.
// It is lazily rebuilt: a mutation only flips valid to false; the next
// LineByPos/PosByLine query pays for a fresh scan of the piece list.
type lineIndex struct {
	anchors []Pos // anchors[i] is the start offset of line i; anchors[0] == 0
	valid   bool
}

func (li *lineIndex) invalidate() {
	li.valid = false
}

// build performs the initial scan. Called once from Load; afterward
// rebuilds happen lazily via ensure.
func (li *lineIndex) build(t *Text) {
	li.recompute(t)
}

func (li *lineIndex) ensure(t *Text) {
	if !li.valid {
		li.recompute(t)
	}
}

func (li *lineIndex) recompute(t *Text) {
	anchors := make([]Pos, 1, 16)
	anchors[0] = 0

	var pos Pos

	for cur := t.p(t.head).next; cur != t.tail; cur = t.p(cur).next {
		n := t.p(cur)

		data := n.blk.data[n.off : n.off+n.length]
		for i, b := range data {
			if b == '\n' {
				anchors = append(anchors, pos+Pos(i)+1)
			}
		}

		pos += Pos(n.length)
	}

	li.anchors = anchors
	li.valid = true
}

// LineCount returns the number of lines in the text. A text with no
// trailing newline still has at least one line (possibly empty).
func (t *Text) LineCount() int {
	t.lines.ensure(t)

	return len(t.lines.anchors)
}

// PosByLine returns the starting byte offset of the given one-based
// line number (line 1 is the first line).
func (t *Text) PosByLine(lineno int) (Pos, error) {
	t.lines.ensure(t)

	idx := lineno - 1
	if idx < 0 || idx >= len(t.lines.anchors) {
		return InvalidPos, ErrInvalidPosition
	}

	return t.lines.anchors[idx], nil
}

// LineByPos returns the one-based line number containing pos (line 1
// is the first line).
func (t *Text) LineByPos(pos Pos) (int, error) {
	if pos > t.size {
		return -1, ErrInvalidPosition
	}

	t.lines.ensure(t)

	idx := sort.Search(len(t.lines.anchors), func(i int) bool {
		return t.lines.anchors[i] > pos
	})

	return idx, nil
}
