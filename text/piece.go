package text

// pieceID indexes into Text.arena. 0 is reserved as the invalid id so the
// zero value of a pieceID (and of a [Mark]) is never a live piece.
type pieceID uint32

const invalidPieceID pieceID = 0

// pieceNode is a half-open view into exactly one block, plus the
// doubly-linked neighbor pointers that place it within the current
// logical order. Pieces are never freed: a piece
// removed from the live list stays reachable from whichever Change
// recorded its removal, and revisions are never discarded during a
// Text's lifetime.
type pieceNode struct {
	blk         *block
	off, length int
	prev, next  pieceID
}

func (t *Text) p(id pieceID) *pieceNode {
	return &t.arena[id]
}

// newPiece appends a piece to the arena and returns its id. The arena is
// append-only for the lifetime of the Text.
func (t *Text) newPiece(blk *block, off, length int) pieceID {
	t.arena = append(t.arena, pieceNode{blk: blk, off: off, length: length})

	return pieceID(len(t.arena) - 1)
}

// pieceBytes returns the live byte slice a piece denotes.
func (t *Text) pieceBytes(id pieceID) []byte {
	n := t.p(id)
	if n.blk == nil {
		return nil
	}

	return n.blk.data[n.off : n.off+n.length]
}

// initPieceList installs the two zero-length sentinel pieces that
// anchor the list and, if original holds content, a single initial
// piece spanning it.
func (t *Text) initPieceList(original *block) {
	t.arena = append(t.arena, pieceNode{}) // slot 0 stays unused: invalidPieceID
	t.head = t.newPiece(nil, 0, 0)
	t.tail = t.newPiece(nil, 0, 0)
	t.p(t.head).next = t.tail
	t.p(t.tail).prev = t.head

	if original != nil && original.used > 0 {
		id := t.newPiece(original, 0, original.used)
		t.linkBetween(t.head, t.tail, id, id)
		t.size = Pos(original.used)
	}
}

// linkBetween splices the chain [first..last] (already connected to
// each other via their own next/prev fields) in between left and right,
// which must currently be adjacent (left.next == right).
func (t *Text) linkBetween(left, right, first, last pieceID) {
	if first == invalidPieceID {
		t.p(left).next = right
		t.p(right).prev = left

		return
	}

	t.p(left).next = first
	t.p(first).prev = left
	t.p(last).next = right
	t.p(right).prev = last
}

// chainPieces links a run of freshly created pieces to each other (but
// not yet to any anchor) and returns its first and last id. Used to
// assemble the new range of a splice that introduces more than one
// piece (an interior insert's prefix/new/suffix, or a delete's
// surviving prefix/suffix remainders).
func (t *Text) chainPieces(ids []pieceID) (first, last pieceID) {
	for i := 0; i < len(ids)-1; i++ {
		t.p(ids[i]).next = ids[i+1]
		t.p(ids[i+1]).prev = ids[i]
	}

	return ids[0], ids[len(ids)-1]
}

// pieceAt locates the piece covering byte pos and the absolute start
// position of that piece. If pos equals the current size, it returns
// the tail sentinel and size. Linear in the number of pieces: edit
// sessions keep piece counts small in practice; a later optimization
// could replace the linked list with an order-statistic tree without
// changing any observable behavior — not done here, see DESIGN.md.
func (t *Text) pieceAt(pos Pos) (id pieceID, start Pos) {
	cur := t.p(t.head).next
	var pos0 Pos

	for cur != t.tail {
		n := t.p(cur)
		if pos < pos0+Pos(n.length) {
			return cur, pos0
		}

		pos0 += Pos(n.length)
		cur = n.next
	}

	return t.tail, pos0
}
