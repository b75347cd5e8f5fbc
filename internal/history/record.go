// Package history implements the calculator's undo/redo state machine:
// a bounded committed stack of immutable calculation records plus a redo
// buffer, with FIFO eviction and optional synchronous persistence.
package history

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/reckon/internal/calc"
)

// Record is one completed calculation. Records are immutable once
// constructed; undo and redo move them between containers but never
// change them.
type Record struct {
	// ID uniquely identifies the record across save/load round-trips.
	ID uuid.UUID

	// Op is the operation that produced the result.
	Op calc.Op

	// OperandA and OperandB are the operands in call order.
	OperandA apd.Decimal
	OperandB apd.Decimal

	// Result is the computed value, already rounded to the precision
	// that was active when the record was created.
	Result apd.Decimal

	// Timestamp is the UTC creation time, assigned once.
	Timestamp time.Time
}

// NewRecord constructs a Record with a fresh ID and timestamp.
// The decimals are deep-copied so later mutation of the arguments
// cannot reach the record.
func NewRecord(op calc.Op, a, b, result *apd.Decimal) Record {
	r := Record{
		ID:        uuid.New(),
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
	r.OperandA.Set(a)
	r.OperandB.Set(b)
	r.Result.Set(result)
	return r
}

// String renders the record the way the REPL history listing shows it,
// e.g. "add(1, 2) = 3". Trailing zeros from rounding are dropped for
// display only; the stored values keep their full quantized form.
func (r Record) String() string {
	return fmt.Sprintf("%s(%s, %s) = %s",
		r.Op, reduced(&r.OperandA), reduced(&r.OperandB), reduced(&r.Result))
}

// Equal reports whether two records are the same calculation: same ID,
// operation, numeric values, and timestamp. Decimals compare numerically,
// so 3.00 and 3 with equal metadata are still equal records.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID &&
		r.Op == other.Op &&
		r.OperandA.Cmp(&other.OperandA) == 0 &&
		r.OperandB.Cmp(&other.OperandB) == 0 &&
		r.Result.Cmp(&other.Result) == 0 &&
		r.Timestamp.Equal(other.Timestamp)
}

func reduced(d *apd.Decimal) string {
	var out apd.Decimal
	out.Reduce(d)
	return out.String()
}
