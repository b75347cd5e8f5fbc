package histdb

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/reckon/internal/calc"
	"github.com/roach88/reckon/internal/history"
)

// rawRecord is a calculations row in its stored TEXT form.
type rawRecord struct {
	id        string
	op        string
	operand1  string
	operand2  string
	result    string
	timestamp string
	seq       int
}

// marshalRecord converts a Record to its stored TEXT form. Decimals use
// their exact string representation and timestamps RFC 3339 nanoseconds,
// matching the CSV adapter so either backend round-trips identically.
func marshalRecord(rec history.Record, seq int) rawRecord {
	return rawRecord{
		id:        rec.ID.String(),
		op:        string(rec.Op),
		operand1:  rec.OperandA.String(),
		operand2:  rec.OperandB.String(),
		result:    rec.Result.String(),
		timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		seq:       seq,
	}
}

// unmarshalRecord parses a stored row back into a Record.
func unmarshalRecord(raw rawRecord) (history.Record, error) {
	var rec history.Record

	id, err := uuid.Parse(raw.id)
	if err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	op, err := calc.ParseOp(raw.op)
	if err != nil {
		return rec, fmt.Errorf("operation: %w", err)
	}

	fields := []struct {
		name  string
		value string
		dst   *apd.Decimal
	}{
		{"operand1", raw.operand1, &rec.OperandA},
		{"operand2", raw.operand2, &rec.OperandB},
		{"result", raw.result, &rec.Result},
	}
	for _, f := range fields {
		if _, _, err := f.dst.SetString(f.value); err != nil {
			return rec, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	ts, err := time.Parse(time.RFC3339Nano, raw.timestamp)
	if err != nil {
		return rec, fmt.Errorf("timestamp: %w", err)
	}

	rec.ID = id
	rec.Op = op
	rec.Timestamp = ts
	return rec, nil
}
