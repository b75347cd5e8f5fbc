package history

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/reckon/internal/calc"
)

// Saver persists the committed history. The engine calls it synchronously
// after each mutation when auto-save is enabled.
type Saver interface {
	Save(records []Record) error
}

// Adapter is a full persistence backend: it can both save the committed
// history and reconstruct it. Load returns an empty slice (not an error)
// when no history has been persisted yet.
type Adapter interface {
	Saver
	Load() ([]Record, error)
}

// Engine owns the two ordered containers forming the undo/redo state
// machine:
//
//   - committed: chronological history, most recent last, bounded by
//     maxSize with FIFO eviction of the oldest record
//   - redo: records eligible for redo, most recently undone last
//
// The redo buffer is only valid immediately after an undo: committing a
// new record clears it, and an evicted record is never recoverable.
//
// The engine is intentionally not safe for concurrent use. One command is
// fully processed before the next is accepted, so there is exactly one
// mutator at a time.
type Engine struct {
	maxSize  int
	autoSave bool
	saver    Saver

	committed []Record
	redo      []Record
}

// NewEngine creates an empty engine bounded by maxSize.
//
// saver may be nil, in which case auto-save is a no-op regardless of the
// flag. A non-positive maxSize is treated as 1 so the engine always holds
// the most recent calculation.
func NewEngine(maxSize int, autoSave bool, saver Saver) *Engine {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Engine{
		maxSize:  maxSize,
		autoSave: autoSave,
		saver:    saver,
	}
}

// Record commits a new calculation: it constructs a Record, appends it to
// the committed history, clears the redo buffer, and evicts the oldest
// record if the size bound is exceeded.
//
// When auto-save is enabled the committed history is saved synchronously
// after the mutation. A save failure is returned alongside the record but
// does not roll back the in-memory change; history state and persisted
// state may diverge until the next successful save.
func (e *Engine) Record(op calc.Op, a, b, result *apd.Decimal) (Record, error) {
	rec := NewRecord(op, a, b, result)

	e.committed = append(e.committed, rec)
	e.redo = e.redo[:0]
	e.evict()

	return rec, e.maybeSave()
}

// Undo removes the most recent record from the committed history and
// appends it to the redo buffer. Fails with ErrCodeNothingToUndo when the
// committed history is empty. The auto-save contract matches Record.
func (e *Engine) Undo() (Record, error) {
	if len(e.committed) == 0 {
		return Record{}, &Error{Code: ErrCodeNothingToUndo, Message: "history is empty"}
	}

	last := len(e.committed) - 1
	rec := e.committed[last]
	e.committed[last] = Record{}
	e.committed = e.committed[:last]
	e.redo = append(e.redo, rec)

	return rec, e.maybeSave()
}

// Redo moves the most recently undone record back onto the committed
// history, subject to the same eviction rule as Record. Fails with
// ErrCodeNothingToRedo when the redo buffer is empty. The auto-save
// contract matches Record.
func (e *Engine) Redo() (Record, error) {
	if len(e.redo) == 0 {
		return Record{}, &Error{Code: ErrCodeNothingToRedo, Message: "nothing has been undone"}
	}

	last := len(e.redo) - 1
	rec := e.redo[last]
	e.redo[last] = Record{}
	e.redo = e.redo[:last]
	e.committed = append(e.committed, rec)
	e.evict()

	return rec, e.maybeSave()
}

// Clear unconditionally empties both the committed history and the redo
// buffer. Clearing is not itself undoable.
func (e *Engine) Clear() {
	e.committed = e.committed[:0]
	e.redo = e.redo[:0]
}

// Load replaces the committed history with persisted records and clears
// the redo buffer. Records beyond the size bound are dropped oldest-first,
// matching the eviction rule.
func (e *Engine) Load(records []Record) {
	if excess := len(records) - e.maxSize; excess > 0 {
		records = records[excess:]
	}
	e.committed = append(e.committed[:0], records...)
	e.redo = e.redo[:0]
}

// Records returns a snapshot of the committed history in chronological
// order. The snapshot does not reflect later mutation.
func (e *Engine) Records() []Record {
	out := make([]Record, len(e.committed))
	copy(out, e.committed)
	return out
}

// Len returns the number of committed records.
func (e *Engine) Len() int {
	return len(e.committed)
}

// RedoLen returns the number of records eligible for redo.
func (e *Engine) RedoLen() int {
	return len(e.redo)
}

// evict drops the oldest committed records until the size bound holds.
func (e *Engine) evict() {
	for len(e.committed) > e.maxSize {
		e.committed[0] = Record{}
		e.committed = e.committed[1:]
	}
}

// maybeSave persists the committed history when auto-save is enabled.
func (e *Engine) maybeSave() error {
	if !e.autoSave || e.saver == nil {
		return nil
	}
	if err := e.saver.Save(e.Records()); err != nil {
		return fmt.Errorf("auto-save: %w", err)
	}
	return nil
}
