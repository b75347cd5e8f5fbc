package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reckon/internal/calc"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <operation> <a> <b>",
		Short: "Evaluate one calculation and record it",
		Long: `Evaluate a single calculation, append it to the persisted history,
and print the result.

The operation accepts the same names and aliases as the REPL
(add, sub, mult, div, exp, root, idiv, mod, perc, absv, ...).
The calculation is always persisted, regardless of the auto-save setting.

Example:
  reckon eval add 1 2
  reckon eval divide 1 3 --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return evalOnce(rootOpts, args, cmd)
		},
	}
	return cmd
}

func evalOnce(opts *RootOptions, args []string, cmd *cobra.Command) error {
	op, err := calc.ParseOp(args[0])
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid operation", err)
	}
	a, err := parseNumber(args[1])
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid number %q", args[1]), err)
	}
	b, err := parseNumber(args[2])
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid number %q", args[2]), err)
	}

	ap, err := newApp(opts)
	if err != nil {
		return err
	}
	defer ap.Close()

	// A corrupt history file means starting from empty, not refusing
	// to calculate.
	_ = ap.loadHistory()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	result, err := ap.eval.Compute(op, a, b)
	if err != nil {
		_ = f.Error(errCode(err), err.Error())
		return WrapExitError(ExitFailure, "calculation failed", err)
	}

	rec, err := ap.engine.Record(op, a, b, result)
	saveErr := err
	if !ap.cfg.AutoSave {
		saveErr = ap.store.Save(ap.engine.Records())
	}
	if saveErr != nil {
		// The result is valid even when persisting it failed.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save history: %v\n", saveErr)
	}

	if opts.Format == "json" {
		return f.Success(ResultPayload{
			Operation: string(rec.Op),
			OperandA:  rec.OperandA.String(),
			OperandB:  rec.OperandB.String(),
			Result:    rec.Result.String(),
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return f.Success(fmt.Sprintf("Result: %s", formatDecimal(&rec.Result)))
}
