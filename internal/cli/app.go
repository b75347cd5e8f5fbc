package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/reckon/internal/calc"
	"github.com/roach88/reckon/internal/config"
	"github.com/roach88/reckon/internal/histdb"
	"github.com/roach88/reckon/internal/histfile"
	"github.com/roach88/reckon/internal/history"
	"github.com/roach88/reckon/internal/logging"
)

// app bundles the wired core components for one command invocation:
// resolved configuration, evaluator, history engine, and the selected
// persistence backend.
type app struct {
	cfg     config.Config
	eval    *calc.Evaluator
	engine  *history.Engine
	store   history.Adapter
	closers []io.Closer
}

// newApp resolves configuration, sets up logging, and constructs the core
// components. Configuration problems are unrecoverable startup errors and
// map to ExitCommandError before any engine exists.
func newApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, WrapExitError(ExitCommandError, "prepare directories", err)
	}

	a := &app{cfg: cfg}

	logCloser, err := logging.Setup(cfg.LogDir, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "initialize logging", err)
	}
	a.closers = append(a.closers, logCloser)

	maxInput, err := cfg.MaxInput()
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	a.eval = calc.NewEvaluator(maxInput, cfg.Precision)

	switch cfg.HistoryBackend {
	case config.BackendSQLite:
		st, err := histdb.Open(cfg.HistoryDB())
		if err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "open history database", err)
		}
		a.store = st
		a.closers = append(a.closers, st)
	default:
		ad, err := histfile.New(cfg.HistoryFile(), cfg.Encoding)
		if err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "open history file", err)
		}
		a.store = ad
	}

	a.engine = history.NewEngine(cfg.MaxHistorySize, cfg.AutoSave, a.store)

	slog.Info("calculator initialized",
		"backend", cfg.HistoryBackend,
		"max_history_size", cfg.MaxHistorySize,
		"precision", cfg.Precision,
		"auto_save", cfg.AutoSave)
	return a, nil
}

// loadHistory seeds the engine from persisted history. A corrupt history
// file is logged and leaves the engine empty; it never partially applies.
func (a *app) loadHistory() error {
	records, err := a.store.Load()
	if err != nil {
		slog.Warn("could not load existing history", "error", err)
		return err
	}
	a.engine.Load(records)
	slog.Info("history loaded", "records", len(records))
	return nil
}

// Close releases the log file and any backend resources.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}
	a.closers = nil
}

// errCode maps core errors to their taxonomy code for rendering.
// Uses errors.As so wrapped errors (e.g. auto-save failures) still match.
func errCode(err error) string {
	var ee *calc.EvalError
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	var he *history.Error
	if errors.As(err, &he) {
		return string(he.Code)
	}
	var se *history.StoreError
	if errors.As(err, &se) {
		return string(se.Code)
	}
	return "ERROR"
}

// formatDecimal renders a decimal for display, dropping trailing zeros
// left by result rounding. Stored values are not affected.
func formatDecimal(d *apd.Decimal) string {
	var out apd.Decimal
	out.Reduce(d)
	return out.String()
}

// parseNumber parses user input as a decimal operand.
func parseNumber(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	return d, err
}
