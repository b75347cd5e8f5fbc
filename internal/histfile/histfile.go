// Package histfile persists calculation history to a CSV file.
//
// The file layout is one record per row with a fixed header:
//
//	id,operation,operand1,operand2,result,timestamp
//
// Decimals are written as exact strings and timestamps as RFC 3339 with
// nanoseconds, so a save/load cycle reproduces an equal ordered sequence
// of records. Saves are atomic with respect to partial writes: the new
// contents are written to a temp file in the same directory and renamed
// over the previous file, so a crash mid-save never corrupts it.
package histfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roach88/reckon/internal/calc"
	"github.com/roach88/reckon/internal/history"
)

var header = []string{"id", "operation", "operand1", "operand2", "result", "timestamp"}

// Adapter reads and writes the history file at a fixed path using a fixed
// text encoding. It implements history.Adapter.
type Adapter struct {
	path string
	enc  encoding.Encoding // nil for UTF-8 passthrough
}

// New creates an Adapter for the given path and IANA encoding name
// (e.g. "utf-8", "windows-1252"). An empty name means UTF-8.
func New(path, encodingName string) (*Adapter, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Adapter{path: path, enc: enc}, nil
}

// lookupEncoding resolves an IANA name to an Encoding.
// UTF-8 resolves to nil so reads and writes skip the transform layer.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// Save writes records to the history file in order, replacing any previous
// contents. The write goes to a temp file first and is renamed into place
// after a successful flush and sync.
func (a *Adapter) Save(records []history.Record) error {
	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return history.NewIOError("create history directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return history.NewIOError("create temp history file", err)
	}
	tmpName := tmp.Name()

	// On any failure below, drop the temp file; the previous history
	// file is untouched.
	if err := a.writeAll(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return history.NewIOError("sync history file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return history.NewIOError("close history file", err)
	}

	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return history.NewIOError("replace history file", err)
	}
	return nil
}

func (a *Adapter) writeAll(f *os.File, records []history.Record) error {
	var out io.Writer = f
	if a.enc != nil {
		out = transform.NewWriter(f, a.enc.NewEncoder())
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return history.NewIOError("write history header", err)
	}
	for _, rec := range records {
		row := []string{
			rec.ID.String(),
			string(rec.Op),
			rec.OperandA.String(),
			rec.OperandB.String(),
			rec.Result.String(),
			rec.Timestamp.Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return history.NewIOError("write history row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return history.NewIOError("flush history file", err)
	}

	if tw, ok := out.(*transform.Writer); ok {
		if err := tw.Close(); err != nil {
			return history.NewIOError("finish encoding history file", err)
		}
	}
	return nil
}

// Load reads and decodes the history file. A missing file is an empty
// history, not an error. Any row that fails to parse fails the whole load
// with a parse error so a corrupt file is never partially applied.
func (a *Adapter) Load() ([]history.Record, error) {
	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []history.Record{}, nil
		}
		return nil, history.NewIOError("open history file", err)
	}
	defer f.Close()

	var in io.Reader = f
	if a.enc != nil {
		in = transform.NewReader(f, a.enc.NewDecoder())
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = len(header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, history.NewParseError("malformed history file", err)
	}
	if len(rows) == 0 {
		return []history.Record{}, nil
	}
	if !equalRow(rows[0], header) {
		return nil, history.NewParseError(
			fmt.Sprintf("unexpected history header %v", rows[0]), nil)
	}

	records := make([]history.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, history.NewParseError(
				fmt.Sprintf("history row %d", i+1), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (history.Record, error) {
	var rec history.Record

	id, err := uuid.Parse(row[0])
	if err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	op, err := calc.ParseOp(row[1])
	if err != nil {
		return rec, fmt.Errorf("operation: %w", err)
	}

	for i, dst := range []*apd.Decimal{&rec.OperandA, &rec.OperandB, &rec.Result} {
		if _, _, err := dst.SetString(row[2+i]); err != nil {
			return rec, fmt.Errorf("%s: %w", header[2+i], err)
		}
	}

	ts, err := time.Parse(time.RFC3339Nano, row[5])
	if err != nil {
		return rec, fmt.Errorf("timestamp: %w", err)
	}

	rec.ID = id
	rec.Op = op
	rec.Timestamp = ts
	return rec, nil
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
