package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineByPosAndPosByLineAreOneBased(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("line1\nline2\nline3\n")))

	n, err := tx.LineByPos(0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = tx.LineByPos(6)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	pos, err := tx.PosByLine(3)
	require.NoError(t, err)
	require.Equal(t, Pos(12), pos)
}

func TestLineCountCountsTrailingEmptyLine(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("line1\nline2\nline3\n")))

	require.Equal(t, 4, tx.LineCount())
}

func TestLineCountWithNoTrailingNewline(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("only line")))

	require.Equal(t, 1, tx.LineCount())

	pos, err := tx.PosByLine(1)
	require.NoError(t, err)
	require.Equal(t, Pos(0), pos)
}

func TestPosByLineRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("line1\nline2\n")))

	_, err := tx.PosByLine(0)
	require.ErrorIs(t, err, ErrInvalidPosition)

	_, err = tx.PosByLine(tx.LineCount() + 1)
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestLineByPosRejectsPastEnd(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("abc")))

	_, err := tx.LineByPos(tx.Size() + 1)
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestPosByLineLineByPosRoundtripInvariant(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("line1\nline2\nline3\n")))

	for p := Pos(0); p <= tx.Size(); p++ {
		lineno, err := tx.LineByPos(p)
		require.NoError(t, err)

		lo, err := tx.PosByLine(lineno)
		require.NoError(t, err)
		require.LessOrEqual(t, lo, p)

		if lineno+1 <= tx.LineCount() {
			hi, err := tx.PosByLine(lineno + 1)
			require.NoError(t, err)
			require.LessOrEqual(t, p, hi)
		}
	}
}

func TestLineIndexInvalidatesAfterMutation(t *testing.T) {
	t.Parallel()

	tx := newEmpty(t)
	require.NoError(t, tx.Insert(0, []byte("line1\nline2\n")))
	require.Equal(t, 3, tx.LineCount())

	require.NoError(t, tx.Insert(tx.Size(), []byte("line3\n")))
	require.Equal(t, 4, tx.LineCount())

	pos, err := tx.PosByLine(3)
	require.NoError(t, err)
	require.Equal(t, Pos(12), pos)
}
