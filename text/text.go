package text

import (
	"os"
	"time"

	"github.com/Duncaen/vis-go/internal/vfs"
)

// Text is an in-memory piece-table text buffer. The zero
// value is not usable; construct one with [Load].
type Text struct {
	arena      []pieceNode
	head, tail pieceID
	size       Pos

	blocks blockStore

	root      *revision
	current   *revision
	nextRevID uint64

	lastSaved        *revision
	lastSavedApplied int

	lines lineIndex

	newline    NewlineType
	filename   string
	statAtLoad os.FileInfo

	clock func() time.Time

	// testFS overrides the filesystem the save pipeline and the
	// truncated-atomic-save recovery check in Load use; nil means the
	// real filesystem. Only ever set by this package's own tests.
	testFS vfs.FS

	closed bool

	// Contiguous-insert coalescing state: the piece most
	// recently grown by an Insert in the still-open current revision, so
	// the very next Insert can extend it in place instead of splicing in
	// a new piece, while still recording its own undoable Change.
	lastInsertRev *revision
	lastInsertBlk *block
	lastInsertEnd Pos
	lastInsertID  pieceID
}

// Load reads path into a new [Text]. path == "" constructs an empty
// buffer with no backing file.
// A path that does not exist also yields an empty buffer, matching
// editors that let you open a not-yet-created file.
func Load(path string) (*Text, error) {
	return loadWithFS(path, nil)
}

// loadWithFS is Load with an injectable filesystem, used by this
// package's own tests to exercise stale-atomic-temp-file cleanup
// through a fault-injecting [vfs.FS].
func loadWithFS(path string, fsys vfs.FS) (*Text, error) {
	t := &Text{testFS: fsys}

	discardStaleAtomicTemp(t.fsys(), path)

	info, err := t.blocks.loadOriginal(path)
	if err != nil {
		return nil, err
	}

	t.initPieceList(t.blocks.original)
	t.filename = path
	t.statAtLoad = info

	t.root = &revision{id: 0, timestamp: t.now()}
	t.nextRevID = 1
	t.current = &revision{id: t.nextRevID, parent: t.root}
	t.root.firstChild = t.current
	t.nextRevID++

	t.lastSaved = t.current
	t.lastSavedApplied = 0

	t.newline = detectNewlineType(t.blocks.original)
	t.lines.build(t)

	return t, nil
}

// Free releases the mmap mapping backing the original file, if any.
// The [Text] must not be used afterward. [Text.Begin], [Text.Save] and
// [Text.SaveRange] return [ErrClosed] after Free; the other methods do
// not check for it.
func (t *Text) Free() {
	if t.closed {
		return
	}

	t.blocks.unmap()
	t.closed = true
}

// Filename returns the path Load was given, or "" for a buffer with no
// backing file.
func (t *Text) Filename() string {
	return t.filename
}

// Stat returns the os.FileInfo captured at Load time (or the most
// recent successful Save), or nil for a buffer with no backing file.
func (t *Text) Stat() os.FileInfo {
	return t.statAtLoad
}

// Modified reports whether the text differs from what was last loaded
// or saved: true whenever the current revision isn't the
// exact node+cursor that was last saved.
func (t *Text) Modified() bool {
	return t.current != t.lastSaved || t.current.applied != t.lastSavedApplied
}

// Size returns the current size of the text in bytes.
func (t *Text) Size() Pos {
	return t.size
}

// NewlineType returns the line-ending convention detected at Load, used
// by [Text.InsertNewline] and [Text.NewlineChar].
func (t *Text) NewlineType() NewlineType {
	return t.newline
}

// invalidateCoalesce clears the contiguous-insert cache. Called by
// Delete and by every undo step; Snapshot moves to a new revision,
// which tryCoalesceInsert rejects on its own, so coalescing only ever
// fires across back-to-back, uninterrupted inserts.
func (t *Text) invalidateCoalesce() {
	t.lastInsertRev = nil
}

// markSaved records the current revision and cursor as the saved
// baseline, called by the save pipeline in save.go on a successful
// commit.
func (t *Text) markSaved(info os.FileInfo) {
	t.lastSaved = t.current
	t.lastSavedApplied = t.current.applied
	t.statAtLoad = info
}

// ByteGet returns the single byte at pos.
func (t *Text) ByteGet(pos Pos) (byte, error) {
	if pos >= t.size {
		return 0, ErrInvalidPosition
	}

	id, start := t.pieceAt(pos)
	n := t.p(id)

	return n.blk.data[n.off+int(pos-start)], nil
}

// BytesGet copies the byte range [pos, pos+len) into a freshly
// allocated slice. A range extending past the end of the text is
// truncated rather than rejected (callers that need strict bounds
// should check pos+len <= Size themselves).
func (t *Text) BytesGet(pos Pos, length int) ([]byte, error) {
	if pos > t.size || length < 0 {
		return nil, ErrInvalidPosition
	}

	end := pos + Pos(length)
	if end > t.size {
		end = t.size
	}

	out := make([]byte, 0, end-pos)

	id, start := t.pieceAt(pos)
	cur := id
	curStart := start

	for cur != t.tail && curStart < end {
		n := t.p(cur)
		pieceEnd := curStart + Pos(n.length)

		from := pos
		if curStart > from {
			from = curStart
		}

		to := end
		if pieceEnd < to {
			to = pieceEnd
		}

		if to > from {
			lo := int(from - curStart)
			hi := int(to - curStart)
			out = append(out, n.blk.data[n.off+lo:n.off+hi]...)
		}

		curStart = pieceEnd
		cur = n.next
	}

	return out, nil
}

// BytesAlloc0 is an allocating convenience wrapper equivalent to
// BytesGet(0, int(Size())): the whole text as one contiguous slice.
func (t *Text) BytesAlloc0() []byte {
	out, _ := t.BytesGet(0, int(t.size))

	return out
}

// Insert splices data into the text at pos. pos must be
// in [0, Size()]; an empty data is a no-op that records no change.
func (t *Text) Insert(pos Pos, data []byte) error {
	if pos > t.size {
		return ErrInvalidPosition
	}

	if len(data) == 0 {
		return nil
	}

	blk, off, err := t.blocks.appendScratch(data)
	if err != nil {
		return err
	}

	if t.tryCoalesceInsert(pos, blk, off, len(data)) {
		t.lines.invalidate()

		return nil
	}

	newID := t.newPiece(blk, off, len(data))
	id, start := t.pieceAt(pos)

	c := change{pos: pos, length: len(data), kind: kInsert}

	if pos == start {
		c.leftAnchor, c.rightAnchor = t.p(id).prev, id
		c.oldFirst, c.oldLast = invalidPieceID, invalidPieceID
		c.newFirst, c.newLast = newID, newID
		c.newLen = len(data)
	} else {
		n := t.p(id)
		prefixLen := int(pos - start)

		p1 := t.newPiece(n.blk, n.off, prefixLen)
		p2 := t.newPiece(n.blk, n.off+prefixLen, n.length-prefixLen)
		first, last := t.chainPieces([]pieceID{p1, newID, p2})

		c.leftAnchor, c.rightAnchor = n.prev, n.next
		c.oldFirst, c.oldLast = id, id
		c.oldLen = n.length
		c.newFirst, c.newLast = first, last
		c.newLen = n.length + len(data)
	}

	t.applyChange(c)
	t.recordChange(c)

	t.lastInsertRev = t.current
	t.lastInsertBlk = blk
	t.lastInsertEnd = pos + Pos(len(data))
	t.lastInsertID = newID

	t.lines.invalidate()

	return nil
}

// tryCoalesceInsert extends the piece from the immediately preceding
// Insert in place when this insert's bytes landed right after it in
// the same scratch block, avoiding a piece per keystroke while still
// recording an independently undoable Change.
func (t *Text) tryCoalesceInsert(pos Pos, blk *block, off, n int) bool {
	if t.lastInsertRev == nil || t.lastInsertRev != t.current {
		return false
	}

	if blk != t.lastInsertBlk || pos != t.lastInsertEnd {
		return false
	}

	piece := t.p(t.lastInsertID)
	if piece.blk != blk || piece.off+piece.length != off {
		return false
	}

	c := change{
		pos: pos, length: n, kind: kExtend,
		extendPiece: t.lastInsertID,
		lenBefore:   piece.length,
		lenAfter:    piece.length + n,
	}

	t.applyChange(c)
	t.recordChange(c)

	t.lastInsertEnd = pos + Pos(n)

	return true
}

// locateRange finds the piece containing pos and the piece containing
// end (or the tail sentinel, if end == Size()), along with each one's
// absolute start position.
func (t *Text) locateRange(pos, end Pos) (startID pieceID, startPos Pos, endID pieceID, endPos Pos) {
	startID, startPos = t.pieceAt(pos)

	cur := startID
	curPos := startPos

	for cur != t.tail {
		n := t.p(cur)
		if end <= curPos+Pos(n.length) {
			return startID, startPos, cur, curPos
		}

		curPos += Pos(n.length)
		cur = n.next
	}

	return startID, startPos, t.tail, curPos
}

// Delete removes the n bytes starting at pos. The range
// [pos, pos+n) must lie entirely within the current text.
func (t *Text) Delete(pos Pos, n int) error {
	if n < 0 {
		return ErrInvalidPosition
	}

	if n == 0 {
		return nil
	}

	end := pos + Pos(n)
	if end > t.size {
		return ErrInvalidPosition
	}

	t.invalidateCoalesce()

	startID, startPos, endID, endPos := t.locateRange(pos, end)
	if startID == t.tail {
		return ErrInvalidPosition
	}

	sp := t.p(startID)
	ep := t.p(endID)

	var newIDs []pieceID

	if pos > startPos {
		newIDs = append(newIDs, t.newPiece(sp.blk, sp.off, int(pos-startPos)))
	}

	if end < endPos+Pos(ep.length) {
		suffixOff := ep.off + int(end-endPos)
		newIDs = append(newIDs, t.newPiece(ep.blk, suffixOff, ep.length-int(end-endPos)))
	}

	var newFirst, newLast pieceID = invalidPieceID, invalidPieceID

	newLen := 0
	for _, id := range newIDs {
		newLen += t.p(id).length
	}

	if len(newIDs) > 0 {
		newFirst, newLast = t.chainPieces(newIDs)
	}

	c := change{
		pos: pos, length: n, kind: kDelete,
		oldFirst: startID, oldLast: endID,
		newFirst: newFirst, newLast: newLast,
		oldLen: int(endPos+Pos(ep.length) - startPos), newLen: newLen,
		leftAnchor: sp.prev, rightAnchor: ep.next,
	}

	t.applyChange(c)
	t.recordChange(c)

	t.lines.invalidate()

	return nil
}

// DeleteRange removes r.Len() bytes starting at r.Start.
func (t *Text) DeleteRange(r Range) error {
	if r.End < r.Start {
		return ErrInvalidPosition
	}

	return t.Delete(r.Start, int(r.Len()))
}

// detectNewlineType sniffs the first newline in the original block to
// pick a default for InsertNewline, matching editors that preserve the
// file's existing convention rather than imposing one.
func detectNewlineType(original *block) NewlineType {
	if original == nil {
		return NewlineLF
	}

	data := original.bytes()

	for i, b := range data {
		if b == '\n' {
			if i > 0 && data[i-1] == '\r' {
				return NewlineCRLF
			}

			return NewlineLF
		}
	}

	return NewlineLF
}
