package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the persisted calculation history",
		Long: `Print the persisted calculation history in chronological order
without starting the interactive loop.

Example:
  reckon history
  reckon history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(rootOpts, cmd)
		},
	}
	return cmd
}

func showHistory(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.Load()
	if err != nil {
		return WrapExitError(ExitFailure, "load history", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		payload := make([]ResultPayload, len(records))
		for i, rec := range records {
			payload[i] = ResultPayload{
				Operation: string(rec.Op),
				OperandA:  rec.OperandA.String(),
				OperandB:  rec.OperandB.String(),
				Result:    rec.Result.String(),
				Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
			}
		}
		f := &OutputFormatter{Format: opts.Format, Writer: out}
		return f.Success(payload)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No calculations in history")
		return nil
	}
	for i, rec := range records {
		fmt.Fprintf(out, "%d. %s\n", i+1, rec)
	}
	return nil
}
