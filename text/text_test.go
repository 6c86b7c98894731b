package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newEmpty(t *testing.T) *Text {
	t.Helper()

	tx, err := Load("")
	require.NoError(t, err)

	t.Cleanup(tx.Free)

	return tx
}

func TestLoadEmptyPath(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.Equal(t, Pos(0), tx.Size())
	require.False(t, tx.Modified())
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	tx, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.NoError(t, err)
	defer tx.Free()

	require.Equal(t, Pos(0), tx.Size())
}

func TestLoadExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	tx, err := Load(path)
	require.NoError(t, err)
	defer tx.Free()

	require.Equal(t, Pos(11), tx.Size())

	got, err := tx.BytesGet(0, 11)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestInsertAtBoundaryAndInterior(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)

	require.NoError(t, tx.Insert(0, []byte("hello")))
	require.Equal(t, Pos(5), tx.Size())

	require.NoError(t, tx.Insert(5, []byte(" world")))
	require.Equal(t, "hello world", string(tx.BytesAlloc0()))

	require.NoError(t, tx.Insert(5, []byte(",")))
	require.Equal(t, "hello, world", string(tx.BytesAlloc0()))
}

func TestInsertRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.ErrorIs(t, tx.Insert(1, []byte("x")), ErrInvalidPosition)
}

func TestDeleteAcrossPieceBoundary(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("hello")))
	// contiguous with "hello", so this extends the same piece in place
	require.NoError(t, tx.Insert(5, []byte(" world")))
	tx.Snapshot()
	require.NoError(t, tx.Insert(2, []byte("XX"))) // splits "hello" piece interior

	require.Equal(t, "heXXllo world", string(tx.BytesAlloc0()))

	require.NoError(t, tx.Delete(1, 5)) // spans across the split boundary
	require.Equal(t, "ho world", string(tx.BytesAlloc0()))
}

func TestDeleteRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("abc")))
	require.ErrorIs(t, tx.Delete(2, 5), ErrInvalidPosition)
}

func TestModifiedTracksSaveBaseline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	tx, err := Load(path)
	require.NoError(t, err)
	defer tx.Free()

	require.False(t, tx.Modified())

	require.NoError(t, tx.Insert(3, []byte("d")))
	require.True(t, tx.Modified())

	require.NoError(t, tx.Save(path))
	require.False(t, tx.Modified())

	require.NoError(t, tx.Insert(4, []byte("e")))
	require.True(t, tx.Modified())

	tx.Undo()
	require.False(t, tx.Modified())
}

func TestContiguousInsertsCoalesceButUndoOneCharAtATime(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)

	require.NoError(t, tx.Insert(0, []byte("a")))
	require.NoError(t, tx.Insert(1, []byte("b")))
	require.NoError(t, tx.Insert(2, []byte("c")))
	require.Equal(t, "abc", string(tx.BytesAlloc0()))

	// one piece, three independently undoable Changes
	pos := tx.Undo()
	require.Equal(t, Pos(2), pos)
	require.Equal(t, "ab", string(tx.BytesAlloc0()))

	pos = tx.Undo()
	require.Equal(t, Pos(1), pos)
	require.Equal(t, "a", string(tx.BytesAlloc0()))

	pos = tx.Undo()
	require.Equal(t, Pos(0), pos)
	require.Equal(t, "", string(tx.BytesAlloc0()))

	require.Equal(t, InvalidPos, tx.Undo())
}

func TestByteGetOutOfRange(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("a")))

	_, err := tx.ByteGet(1)
	require.ErrorIs(t, err, ErrInvalidPosition)
}
