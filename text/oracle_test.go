package text_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Duncaen/vis-go/text"
	"github.com/Duncaen/vis-go/text/oracle"
)

// state is the observable snapshot compared between the engine and the
// oracle after every step of a scripted scenario.
type state struct {
	Content  string
	Size     uint64
	Modified bool
}

func snapshot(t *text.Text) state {
	return state{Content: string(t.BytesAlloc0()), Size: t.Size(), Modified: t.Modified()}
}

func oracleSnapshot(m *oracle.Model) state {
	return state{Content: string(m.Content()), Size: uint64(m.Size()), Modified: m.Modified()}
}

// TestOracleAgreesOnBranchingHistory replays the same insert/snapshot/
// undo/redo sequence against the engine and the
// reference model, diffing their observable state after every step.
func TestOracleAgreesOnBranchingHistory(t *testing.T) {
	t.Parallel()

	tx, err := text.Load("")
	require.NoError(t, err)
	t.Cleanup(tx.Free)

	model := oracle.New(nil)

	type step func() (enginePos text.Pos, oraclePos text.Pos)

	steps := []step{
		func() (text.Pos, text.Pos) {
			_ = tx.Insert(0, []byte("hello"))
			_ = model.Insert(0, []byte("hello"))

			return tx.Size(), text.Pos(model.Size())
		},
		func() (text.Pos, text.Pos) { tx.Snapshot(); model.Snapshot(); return tx.Size(), text.Pos(model.Size()) },
		func() (text.Pos, text.Pos) {
			_ = tx.Insert(5, []byte(" world"))
			_ = model.Insert(5, []byte(" world"))

			return tx.Size(), text.Pos(model.Size())
		},
		func() (text.Pos, text.Pos) { tx.Snapshot(); model.Snapshot(); return tx.Size(), text.Pos(model.Size()) },
		func() (text.Pos, text.Pos) {
			p1 := tx.Undo()
			p2, _ := model.Undo()

			return p1, text.Pos(len(p2))
		},
		func() (text.Pos, text.Pos) {
			_ = tx.Insert(5, []byte(" there"))
			_ = model.Insert(5, []byte(" there"))

			return tx.Size(), text.Pos(model.Size())
		},
		func() (text.Pos, text.Pos) { tx.Snapshot(); model.Snapshot(); return tx.Size(), text.Pos(model.Size()) },
		func() (text.Pos, text.Pos) {
			p1 := tx.Undo()
			p2, _ := model.Undo()

			return p1, text.Pos(len(p2))
		},
		func() (text.Pos, text.Pos) {
			p1 := tx.Undo()
			p2, _ := model.Undo()

			return p1, text.Pos(len(p2))
		},
		func() (text.Pos, text.Pos) {
			p1 := tx.Redo()
			p2, _ := model.Redo()

			return p1, text.Pos(len(p2))
		},
	}

	for i, s := range steps {
		s()

		got := snapshot(tx)
		want := oracleSnapshot(model)

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("step %d: engine state diverged from oracle (-want +got):\n%s", i, diff)
		}
	}
}
