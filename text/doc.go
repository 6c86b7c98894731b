// Package text implements an in-memory piece-table text buffer suitable
// for embedding in an editor.
//
// A [Text] represents a possibly large file as a sequence of bytes backed
// by an immutable original block (the loaded file, memory-mapped where
// possible) plus an append-only scratch block chain for inserted bytes.
// Edits never mutate existing bytes; they only splice the ordered list of
// pieces that describes the current logical content. Every splice is
// recorded as a change inside the current revision, so the complete
// edit history forms a tree that undo/redo/restore walk.
//
// # Basic usage
//
//	t, err := text.Load("file.txt")
//	if err != nil {
//	    // handle error
//	}
//	defer t.Free()
//
//	t.Insert(0, []byte("hello "))
//	t.Snapshot()
//	pos := t.Undo()
//
// # Concurrency
//
// A [Text] is single-owner: at most one goroutine may call mutating or
// history methods on it at a time. The package performs no internal
// locking. Concurrent read-only iteration is safe only when the caller
// can guarantee no concurrent mutation.
//
// # Marks
//
// [Mark] values stay valid across edits that do not remove the bytes
// they reference, and automatically become valid again if an undo
// restores those bytes — there is no separate bookkeeping table to keep
// in sync.
package text
