package text_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Duncaen/vis-go/text"
	"github.com/Duncaen/vis-go/text/oracle"
)

// byteStream reads bytes sequentially from fuzz input, returning zero
// values once exhausted so every input (however short) still drives a
// deterministic, terminating sequence of operations.
type byteStream struct {
	b   []byte
	pos int
}

func (s *byteStream) next() byte {
	if s.pos >= len(s.b) {
		return 0
	}

	v := s.b[s.pos]
	s.pos++

	return v
}

func (s *byteStream) intn(n int) int {
	if n <= 0 {
		return 0
	}

	return int(s.next()) % n
}

func (s *byteStream) bytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'a' + s.next()%26
	}

	return out
}

// FuzzEngineMatchesOracle drives the real engine and the in-memory
// reference model through the same randomized sequence of mutation and
// history operations, generated deterministically from the fuzz input,
// and fails as soon as their observable state (content, size, modified)
// diverges.
func FuzzEngineMatchesOracle(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	f.Add([]byte{1, 5, 'h', 'e', 'l', 'l', 'o', 2, 1, 5, 6, 't', 'h', 'e', 'r', 'e', 5, 3})
	f.Add([]byte{1, 0, 3, 'a', 'b', 'c', 4, 0, 2, 5, 2, 6, 1})

	f.Fuzz(func(t *testing.T, data []byte) {
		tx, err := text.Load("")
		require.NoError(t, err)
		t.Cleanup(tx.Free)

		model := oracle.New(nil)

		s := &byteStream{b: data}

		for i := 0; s.pos < len(s.b) && i < 500; i++ {
			switch s.intn(7) {
			case 0: // insert
				size := int(tx.Size())
				pos := s.intn(size + 1)
				n := 1 + s.intn(8)
				payload := s.bytes(n)

				err1 := tx.Insert(text.Pos(pos), payload)
				err2 := model.Insert(pos, payload)
				require.Equal(t, err1 == nil, err2 == nil)
			case 1: // delete
				size := int(tx.Size())
				if size == 0 {
					continue
				}

				pos := s.intn(size)
				n := 1 + s.intn(size-pos)

				err1 := tx.Delete(text.Pos(pos), n)
				err2 := model.Delete(pos, n)
				require.Equal(t, err1 == nil, err2 == nil)
			case 2:
				tx.Snapshot()
				model.Snapshot()
			case 3:
				tx.Undo()
				model.Undo()
			case 4:
				tx.Redo()
				model.Redo()
			case 5:
				k := 1 + s.intn(3)
				tx.Earlier(k)
				model.Earlier(k)
			case 6:
				k := 1 + s.intn(3)
				tx.Later(k)
				model.Later(k)
			}

			got := snapshot(tx)
			want := oracleSnapshot(model)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("op %d: engine state diverged from oracle (-want +got):\n%s", i, diff)
			}
		}
	})
}
