package text

import "time"

// revision is one node of the undo/redo tree.
// changes[:applied] are the changes currently applied to the live piece
// list; changes[applied:] is a redo-able tail left over from an earlier
// undo within this same node. A node is "sealed" once [Text.Snapshot]
// gives it a timestamp and a new empty child to receive further edits;
// sealed nodes always have applied == len(changes) except while a later
// undo/redo walk is passing through them.
type revision struct {
	id          uint64
	timestamp   time.Time
	changes     []change
	applied     int
	parent      *revision
	firstChild  *revision // head of the sibling chain; head = most recently created
	nextSibling *revision
}

// recordChange appends a newly applied change to the current revision,
// discarding any redo-able tail left over from a prior undo within this
// node — the standard "a fresh edit after undo kills the redo stack"
// rule (DESIGN.md).
func (t *Text) recordChange(c change) {
	cur := t.current
	if cur.applied < len(cur.changes) {
		cur.changes = cur.changes[:cur.applied]
	}

	cur.changes = append(cur.changes, c)
	cur.applied++
}

// Snapshot seals the current revision (assigning it a timestamp) and
// opens a new empty child as current. A no-op if
// nothing is currently applied in the current revision.
func (t *Text) Snapshot() {
	if t.current.applied == 0 {
		return
	}

	cur := t.current
	if cur.applied < len(cur.changes) {
		cur.changes = cur.changes[:cur.applied]
	}

	cur.timestamp = t.now()

	child := &revision{id: t.nextRevID, parent: cur}
	t.nextRevID++

	child.nextSibling = cur.firstChild
	cur.firstChild = child
	t.current = child
}

// stepBack reverts the most recently applied change reachable from the
// current position, walking up to ancestors once a node is fully
// unapplied. Returns ok=false when there is nothing left to undo.
func (t *Text) stepBack() (Pos, bool) {
	t.invalidateCoalesce()

	for {
		if t.current.applied > 0 {
			c := t.current.changes[t.current.applied-1]
			t.current.applied--

			return t.revertChange(c), true
		}

		if t.current.parent == nil {
			return InvalidPos, false
		}

		t.current = t.current.parent
	}
}

// stepForward re-applies the next pending change reachable from the
// current position, descending into the most recently created child
// once the current node is fully applied. Returns ok=false when there
// is nothing left to redo.
func (t *Text) stepForward() (Pos, bool) {
	for {
		if t.current.applied < len(t.current.changes) {
			c := t.current.changes[t.current.applied]
			t.current.applied++

			return t.applyChange(c), true
		}

		if t.current.firstChild == nil {
			return InvalidPos, false
		}

		t.current = t.current.firstChild
	}
}

// Undo reverts the most recent change, returning the position left
// behind, or [InvalidPos] if there is no earlier state.
func (t *Text) Undo() Pos {
	pos, ok := t.stepBack()
	if !ok {
		return InvalidPos
	}

	return pos
}

// Redo re-applies the most recently undone change, returning the
// position after it, or [InvalidPos] if there is nothing to redo.
//
// When the current revision has more than one child (a branch created
// by editing after an undo), the most recently created child is
// selected.
func (t *Text) Redo() Pos {
	pos, ok := t.stepForward()
	if !ok {
		return InvalidPos
	}

	return pos
}

// Earlier walks up to k steps back through history, stopping early if
// it runs out. Returns the position of the last step taken, or
// [InvalidPos] if zero steps succeeded.
func (t *Text) Earlier(k int) Pos {
	last := InvalidPos

	for range k {
		pos, ok := t.stepBack()
		if !ok {
			break
		}

		last = pos
	}

	return last
}

// Later walks up to k steps forward through history. See [Text.Earlier].
func (t *Text) Later(k int) Pos {
	last := InvalidPos

	for range k {
		pos, ok := t.stepForward()
		if !ok {
			break
		}

		last = pos
	}

	return last
}

// revertPos computes the position [Text.revertChange] would return for
// c, without touching the piece list — c's pos/length/kind fully
// determine it, so this is a pure read of the change record.
func revertPos(c change) Pos {
	if c.kind == kInsert || c.kind == kExtend {
		return c.pos
	}

	return c.pos + Pos(c.length)
}

// HistoryGet reports the position that [Text.Earlier](index) would
// leave the cursor at, without moving the current revision or altering
// the live piece list. index == 0 returns the current size; larger
// index walks further back through the same parent chain Earlier and
// Undo use. Returns [InvalidPos] once index runs past the root.
func (t *Text) HistoryGet(index int) Pos {
	if index < 0 {
		return InvalidPos
	}

	if index == 0 {
		return Pos(t.size)
	}

	cur := t.current
	applied := cur.applied

	var last Pos = InvalidPos

	for remaining := index; remaining > 0; remaining-- {
		for applied == 0 {
			if cur.parent == nil {
				return InvalidPos
			}

			cur = cur.parent
			applied = cur.applied
		}

		applied--
		last = revertPos(cur.changes[applied])
	}

	return last
}

// State returns the timestamp of the current revision. It is the zero
// [time.Time] while the current revision is still open (dirty, never
// snapshotted).
func (t *Text) State() time.Time {
	return t.current.timestamp
}

// Restore moves to whichever sealed revision has the timestamp closest
// to at, breaking ties toward the earlier revision. It
// walks up to the least common ancestor of the current and target
// revisions, reverting changes, then walks down to the target, applying
// changes forward. Returns the position of the last change touched
// along the way, or the current size if the target was already current.
func (t *Text) Restore(at time.Time) Pos {
	target := t.nearestRevision(at)
	if target == nil {
		return InvalidPos
	}

	anchor := lowestCommonAncestor(t.current, target)

	last := InvalidPos

	for t.current != anchor {
		if t.current.applied == 0 {
			t.current = t.current.parent

			continue
		}

		last, _ = t.stepBack()
	}

	for t.current != target || t.current.applied < len(t.current.changes) {
		pos, ok := t.stepForward()
		if !ok {
			break
		}

		last = pos
	}

	if last == InvalidPos {
		return Pos(t.size)
	}

	return last
}

// nearestRevision finds the sealed revision (timestamp != zero) whose
// timestamp is closest to at, breaking ties toward the earlier (lower
// id) revision. The unsealed current-tip revision is never a candidate:
// it has no assigned timestamp yet.
func (t *Text) nearestRevision(at time.Time) *revision {
	var best *revision

	var bestDiff time.Duration

	var walk func(n *revision)

	walk = func(n *revision) {
		if !n.timestamp.IsZero() {
			diff := n.timestamp.Sub(at)
			if diff < 0 {
				diff = -diff
			}

			switch {
			case best == nil, diff < bestDiff:
				best, bestDiff = n, diff
			case diff == bestDiff && n.id < best.id:
				best = n
			}
		}

		for c := n.firstChild; c != nil; c = c.nextSibling {
			walk(c)
		}
	}

	walk(t.root)

	return best
}

// lowestCommonAncestor returns the deepest revision that is an ancestor
// of both a and b.
func lowestCommonAncestor(a, b *revision) *revision {
	depth := map[*revision]int{}

	d := 0
	for n := a; n != nil; n = n.parent {
		depth[n] = d
		d++
	}

	for n := b; n != nil; n = n.parent {
		if _, ok := depth[n]; ok {
			return n
		}
	}

	return nil
}
