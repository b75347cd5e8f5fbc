package history

import (
	"errors"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reckon/internal/calc"
)

// stubSaver records Save calls and optionally fails them.
type stubSaver struct {
	calls int
	last  []Record
	err   error
}

func (s *stubSaver) Save(records []Record) error {
	s.calls++
	s.last = records
	return s.err
}

func dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func mustRecord(t *testing.T, e *Engine, op calc.Op, a, b, result string) Record {
	t.Helper()
	rec, err := e.Record(op, dec(t, a), dec(t, b), dec(t, result))
	require.NoError(t, err)
	return rec
}

func TestEngine_RecordAppendsInOrder(t *testing.T) {
	e := NewEngine(10, false, nil)

	mustRecord(t, e, calc.OpAdd, "1", "2", "3")
	mustRecord(t, e, calc.OpSubtract, "5", "2", "3")

	records := e.Records()
	require.Len(t, records, 2)
	assert.Equal(t, calc.OpAdd, records[0].Op)
	assert.Equal(t, calc.OpSubtract, records[1].Op)
}

func TestEngine_FIFOEviction(t *testing.T) {
	// maxSize 3: the fourth record evicts the oldest, leaving
	// calculations 2..4 in original order.
	e := NewEngine(3, false, nil)

	mustRecord(t, e, calc.OpAdd, "1", "2", "3")
	mustRecord(t, e, calc.OpSubtract, "5", "2", "3")
	mustRecord(t, e, calc.OpMultiply, "2", "2", "4")
	mustRecord(t, e, calc.OpMultiply, "3", "3", "9")

	records := e.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "subtract(5, 2) = 3", records[0].String())
	assert.Equal(t, "multiply(2, 2) = 4", records[1].String())
	assert.Equal(t, "multiply(3, 3) = 9", records[2].String())
}

func TestEngine_EvictedRecordNotRedoable(t *testing.T) {
	e := NewEngine(1, false, nil)

	mustRecord(t, e, calc.OpAdd, "1", "1", "2")
	mustRecord(t, e, calc.OpAdd, "2", "2", "4")

	assert.Equal(t, 1, e.Len())
	assert.Equal(t, 0, e.RedoLen(), "eviction must not feed the redo buffer")
}

func TestEngine_UndoEmpty(t *testing.T) {
	e := NewEngine(10, false, nil)

	_, err := e.Undo()
	require.Error(t, err)
	assert.True(t, IsNothingToUndo(err))
}

func TestEngine_RedoEmpty(t *testing.T) {
	e := NewEngine(10, false, nil)

	_, err := e.Redo()
	require.Error(t, err)
	assert.True(t, IsNothingToRedo(err))
}

func TestEngine_UndoRedoRoundTrip(t *testing.T) {
	e := NewEngine(10, false, nil)
	original := mustRecord(t, e, calc.OpAdd, "1", "1", "2")

	undone, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, original.Equal(undone))
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, 1, e.RedoLen())

	redone, err := e.Redo()
	require.NoError(t, err)
	assert.True(t, original.Equal(redone))
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, 0, e.RedoLen())

	records := e.Records()
	require.Len(t, records, 1)
	assert.True(t, original.Equal(records[0]), "redo must restore the exact record")
}

func TestEngine_UndoRedoPreservesOrder(t *testing.T) {
	e := NewEngine(10, false, nil)
	first := mustRecord(t, e, calc.OpAdd, "1", "2", "3")
	second := mustRecord(t, e, calc.OpMultiply, "2", "3", "6")

	_, err := e.Undo()
	require.NoError(t, err)
	_, err = e.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0, e.Len())

	// Redo re-applies most-recently-undone last, restoring the
	// original order.
	_, err = e.Redo()
	require.NoError(t, err)
	_, err = e.Redo()
	require.NoError(t, err)

	records := e.Records()
	require.Len(t, records, 2)
	assert.True(t, first.Equal(records[0]))
	assert.True(t, second.Equal(records[1]))
}

func TestEngine_RecordClearsRedoBuffer(t *testing.T) {
	e := NewEngine(10, false, nil)
	mustRecord(t, e, calc.OpAdd, "1", "1", "2")

	_, err := e.Undo()
	require.NoError(t, err)
	require.Equal(t, 1, e.RedoLen())

	mustRecord(t, e, calc.OpAdd, "2", "2", "4")
	assert.Equal(t, 0, e.RedoLen(), "a new record invalidates redo history")

	_, err = e.Redo()
	assert.True(t, IsNothingToRedo(err))
}

func TestEngine_Clear(t *testing.T) {
	e := NewEngine(10, false, nil)
	mustRecord(t, e, calc.OpAdd, "1", "1", "2")
	mustRecord(t, e, calc.OpAdd, "2", "2", "4")
	_, err := e.Undo()
	require.NoError(t, err)

	e.Clear()

	assert.Equal(t, 0, e.Len())
	assert.Equal(t, 0, e.RedoLen())
	_, err = e.Undo()
	assert.True(t, IsNothingToUndo(err), "clear is not undoable")
}

func TestEngine_RecordsSnapshot(t *testing.T) {
	e := NewEngine(10, false, nil)
	mustRecord(t, e, calc.OpAdd, "1", "1", "2")

	snapshot := e.Records()
	mustRecord(t, e, calc.OpAdd, "2", "2", "4")

	assert.Len(t, snapshot, 1, "snapshot must not reflect later mutation")
	assert.Len(t, e.Records(), 2)
}

func TestEngine_Load(t *testing.T) {
	e := NewEngine(10, false, nil)
	mustRecord(t, e, calc.OpAdd, "9", "9", "18")
	_, err := e.Undo()
	require.NoError(t, err)

	loaded := []Record{
		NewRecord(calc.OpAdd, dec(t, "1"), dec(t, "2"), dec(t, "3")),
		NewRecord(calc.OpMultiply, dec(t, "2"), dec(t, "3"), dec(t, "6")),
	}
	e.Load(loaded)

	records := e.Records()
	require.Len(t, records, 2)
	assert.True(t, loaded[0].Equal(records[0]))
	assert.True(t, loaded[1].Equal(records[1]))
	assert.Equal(t, 0, e.RedoLen(), "load resets the redo buffer")
}

func TestEngine_LoadTrimsOldest(t *testing.T) {
	e := NewEngine(2, false, nil)

	loaded := []Record{
		NewRecord(calc.OpAdd, dec(t, "1"), dec(t, "1"), dec(t, "2")),
		NewRecord(calc.OpAdd, dec(t, "2"), dec(t, "2"), dec(t, "4")),
		NewRecord(calc.OpAdd, dec(t, "3"), dec(t, "3"), dec(t, "6")),
	}
	e.Load(loaded)

	records := e.Records()
	require.Len(t, records, 2)
	assert.True(t, loaded[1].Equal(records[0]), "oldest loaded record is dropped first")
	assert.True(t, loaded[2].Equal(records[1]))
}

func TestEngine_AutoSave(t *testing.T) {
	saver := &stubSaver{}
	e := NewEngine(10, true, saver)

	mustRecord(t, e, calc.OpAdd, "1", "2", "3")
	assert.Equal(t, 1, saver.calls)
	require.Len(t, saver.last, 1)

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, 2, saver.calls)
	assert.Empty(t, saver.last)

	_, err = e.Redo()
	require.NoError(t, err)
	assert.Equal(t, 3, saver.calls)
	assert.Len(t, saver.last, 1)
}

func TestEngine_AutoSaveDisabled(t *testing.T) {
	saver := &stubSaver{}
	e := NewEngine(10, false, saver)

	mustRecord(t, e, calc.OpAdd, "1", "2", "3")
	assert.Zero(t, saver.calls)
}

func TestEngine_AutoSaveFailureKeepsMutation(t *testing.T) {
	saver := &stubSaver{err: errors.New("disk full")}
	e := NewEngine(10, true, saver)

	rec, err := e.Record(calc.OpAdd, dec(t, "1"), dec(t, "2"), dec(t, "3"))
	require.Error(t, err, "save failure is surfaced to the caller")
	assert.ErrorContains(t, err, "disk full")

	// The in-memory mutation is not rolled back.
	assert.Equal(t, 1, e.Len())
	assert.True(t, rec.Equal(e.Records()[0]))
}

func TestEngine_NonPositiveMaxSize(t *testing.T) {
	e := NewEngine(0, false, nil)

	mustRecord(t, e, calc.OpAdd, "1", "1", "2")
	latest := mustRecord(t, e, calc.OpAdd, "2", "2", "4")

	records := e.Records()
	require.Len(t, records, 1, "engine always holds the most recent calculation")
	assert.True(t, latest.Equal(records[0]))
}
