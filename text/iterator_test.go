package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIteratorByteNextPrev(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("abc")))

	it := tx.IteratorGet(0)
	require.True(t, it.Valid())
	require.Equal(t, byte('a'), it.ByteGet())

	require.Equal(t, byte('b'), it.ByteNext())
	require.Equal(t, byte('c'), it.ByteNext())
	require.Equal(t, Pos(2), it.Pos())

	// stepping past the last byte lands at end-of-text.
	require.Equal(t, byte(0), it.ByteNext())
	require.Equal(t, Pos(3), it.Pos())
	// at end-of-text: no byte of its own, but Valid since text is non-empty.
	require.True(t, it.Valid())
	require.Equal(t, byte(0), it.ByteGet())

	// one more ByteNext is a no-op past end.
	require.Equal(t, byte(0), it.ByteNext())
	require.Equal(t, Pos(3), it.Pos())

	require.Equal(t, byte('c'), it.BytePrev())
	require.Equal(t, byte('b'), it.BytePrev())
	require.Equal(t, byte('a'), it.BytePrev())
	require.Equal(t, byte('a'), it.BytePrev()) // clamped at start
	require.Equal(t, Pos(0), it.Pos())
}

func TestIteratorValidOnEmptyText(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	it := tx.IteratorGet(0)
	require.False(t, it.Valid())
}

func TestIteratorCodepointNextPrevMultibyte(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	// "héllo": é is 2 bytes (U+00E9).
	require.NoError(t, tx.Insert(0, []byte("h\xc3\xa9llo")))

	it := tx.IteratorGet(0)

	r, ok := it.CodepointNext()
	require.True(t, ok)
	require.Equal(t, 'h', r)

	r, ok = it.CodepointNext()
	require.True(t, ok)
	require.Equal(t, rune(0x00E9), r)
	require.Equal(t, Pos(3), it.Pos())

	r, ok = it.CodepointPrev()
	require.True(t, ok)
	require.Equal(t, rune(0x00E9), r)
	require.Equal(t, Pos(1), it.Pos())
}

func TestIteratorCodepointNextAtEndReturnsFalse(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("a")))

	it := tx.IteratorGet(1)
	_, ok := it.CodepointNext()
	require.False(t, ok)
}

func TestIteratorCodepointPrevAtStartReturnsFalse(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("a")))

	it := tx.IteratorGet(0)
	_, ok := it.CodepointPrev()
	require.False(t, ok)
}

func TestIteratorCharGetTreatsCRLFAsOneCluster(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("a\r\nb")))

	it := tx.IteratorGet(1)
	b, ok := it.CharGet()
	require.True(t, ok)
	require.Equal(t, "\r\n", string(b))
}

func TestIteratorCharNextKeepsCombiningMarkAttached(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	// 'e' + combining acute accent (U+0301), two codepoints, one cluster.
	require.NoError(t, tx.Insert(0, []byte("e\xcc\x81x")))

	it := tx.IteratorGet(0)

	b, ok := it.CharNext()
	require.True(t, ok)
	require.Equal(t, "e\xcc\x81", string(b))

	b, ok = it.CharNext()
	require.True(t, ok)
	require.Equal(t, "x", string(b))

	_, ok = it.CharNext()
	require.False(t, ok)
}

func TestIteratorCharPrevKeepsCombiningMarkAttached(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("e\xcc\x81x")))

	it := tx.IteratorGet(tx.Size())

	b, ok := it.CharPrev()
	require.True(t, ok)
	require.Equal(t, "x", string(b))

	b, ok = it.CharPrev()
	require.True(t, ok)
	require.Equal(t, "e\xcc\x81", string(b))

	_, ok = it.CharPrev()
	require.False(t, ok)
}
