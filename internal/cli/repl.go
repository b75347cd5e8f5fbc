package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/reckon/internal/calc"
	"github.com/roach88/reckon/internal/history"
)

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive calculator",
		Long: `Start the interactive read-eval-print loop.

Arithmetic commands prompt for two operands; 'cancel' aborts the prompt.
History is loaded on startup and saved on exit.

Example:
  reckon repl
  reckon repl --config ./reckon.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(rootOpts, cmd)
		},
	}
	return cmd
}

// repl holds the per-session state of the interactive loop.
type repl struct {
	app   *app
	in    *bufio.Scanner
	out   io.Writer
	style styler
}

func runRepl(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	// A corrupt or unreadable history file starts the session empty;
	// it is not fatal.
	_ = a.loadHistory()

	r := &repl{
		app:   a,
		in:    bufio.NewScanner(cmd.InOrStdin()),
		out:   cmd.OutOrStdout(),
		style: newStyler(cmd.OutOrStdout()),
	}
	return r.run()
}

func (r *repl) run() error {
	fmt.Fprintln(r.out, r.style.yellow("Calculator started. Type 'help' for commands."))

	for {
		line, ok := r.prompt("\nEnter command: ")
		if !ok {
			fmt.Fprintln(r.out, r.style.dim("\nInput terminated. Exiting..."))
			return nil
		}

		command := strings.ToLower(strings.TrimSpace(line))
		switch command {
		case "":
			continue
		case "help":
			r.printHelp()
		case "exit":
			r.saveOnExit()
			fmt.Fprintln(r.out, r.style.dim("Goodbye!"))
			return nil
		case "history":
			r.printHistory()
		case "clear":
			r.app.engine.Clear()
			fmt.Fprintln(r.out, r.style.red("History cleared"))
		case "undo":
			r.undo()
		case "redo":
			r.redo()
		case "save":
			if err := r.app.store.Save(r.app.engine.Records()); err != nil {
				r.style.errorf(r.out, "Error saving history: %v", err)
			} else {
				fmt.Fprintln(r.out, r.style.green("History saved successfully"))
			}
		case "load":
			records, err := r.app.store.Load()
			if err != nil {
				r.style.errorf(r.out, "Error loading history: %v", err)
			} else {
				r.app.engine.Load(records)
				fmt.Fprintln(r.out, r.style.green("History loaded successfully"))
			}
		default:
			op, err := calc.ParseOp(command)
			if err != nil {
				r.style.errorf(r.out, "Unknown command: %q. Type 'help' for available commands.", command)
				continue
			}
			r.calculate(op)
		}
	}
}

// prompt prints a prompt and reads one line. ok is false on EOF.
func (r *repl) prompt(text string) (string, bool) {
	fmt.Fprint(r.out, text)
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

// calculate runs one arithmetic command: prompt for operands, evaluate,
// commit to history. Any failure aborts only this command.
func (r *repl) calculate(op calc.Op) {
	fmt.Fprintln(r.out, r.style.yellow("\nEnter numbers (or 'cancel' to abort):"))

	a, ok := r.readOperand("First number: ")
	if !ok {
		return
	}
	b, ok := r.readOperand("Second number: ")
	if !ok {
		return
	}

	result, err := r.app.eval.Compute(op, a, b)
	if err != nil {
		r.style.errorf(r.out, "Error: %v", err)
		return
	}

	rec, err := r.app.engine.Record(op, a, b, result)
	if err != nil {
		// The record is committed; only the auto-save failed.
		r.style.errorf(r.out, "Warning: could not save history: %v", err)
	}
	slog.Info("calculation recorded", "op", string(op), "id", rec.ID)

	fmt.Fprintln(r.out, r.style.bold(r.style.blue(fmt.Sprintf("\nResult: %s", formatDecimal(&rec.Result)))))
}

// readOperand prompts for one number. ok is false when the user cancels,
// input ends, or the value does not parse.
func (r *repl) readOperand(prompt string) (*apd.Decimal, bool) {
	line, ok := r.prompt(prompt)
	if !ok {
		return nil, false
	}
	text := strings.TrimSpace(line)
	if strings.EqualFold(text, "cancel") {
		r.style.errorf(r.out, "Operation cancelled")
		return nil, false
	}
	d, err := parseNumber(text)
	if err != nil {
		r.style.errorf(r.out, "Invalid number: %q", text)
		return nil, false
	}
	return d, true
}

func (r *repl) undo() {
	if _, err := r.app.engine.Undo(); err != nil {
		if history.IsNothingToUndo(err) {
			fmt.Fprintln(r.out, r.style.red("Nothing to undo"))
			return
		}
		r.style.errorf(r.out, "Warning: could not save history: %v", err)
	}
	fmt.Fprintln(r.out, r.style.yellow("Operation undone"))
}

func (r *repl) redo() {
	if _, err := r.app.engine.Redo(); err != nil {
		if history.IsNothingToRedo(err) {
			fmt.Fprintln(r.out, r.style.red("Nothing to redo"))
			return
		}
		r.style.errorf(r.out, "Warning: could not save history: %v", err)
	}
	fmt.Fprintln(r.out, r.style.yellow("Operation redone"))
}

func (r *repl) printHistory() {
	records := r.app.engine.Records()
	if len(records) == 0 {
		fmt.Fprintln(r.out, r.style.red("No calculations in history"))
		return
	}
	fmt.Fprintln(r.out, r.style.green("\nCalculation History:"))
	for i, rec := range records {
		fmt.Fprintln(r.out, r.style.green(fmt.Sprintf("%d. %s", i+1, rec)))
	}
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, r.style.blue("\nAvailable commands:"))
	fmt.Fprintln(r.out, r.style.blue("  add, subtract (sub), multiply (mult), divide (div), power (exp), root,"))
	fmt.Fprintln(r.out, r.style.blue("  int_divide (idiv), modulus (mod), percentage (perc), abs_difference (absv)"))
	fmt.Fprintln(r.out, r.style.blue("    - Perform calculations"))
	fmt.Fprintln(r.out, r.style.yellow("  undo - Undo the last calculation"))
	fmt.Fprintln(r.out, r.style.yellow("  redo - Redo the last undone calculation"))
	fmt.Fprintln(r.out, r.style.green("  history - Show calculation history"))
	fmt.Fprintln(r.out, r.style.green("  save - Save calculation history to file"))
	fmt.Fprintln(r.out, r.style.green("  load - Load calculation history from file"))
	fmt.Fprintln(r.out, r.style.red("  clear - Clear calculation history"))
	fmt.Fprintln(r.out, r.style.red("  exit - Exit the calculator"))
}

// saveOnExit saves history best-effort; exit proceeds either way.
func (r *repl) saveOnExit() {
	if err := r.app.store.Save(r.app.engine.Records()); err != nil {
		r.style.errorf(r.out, "Warning: could not save history: %v", err)
		return
	}
	fmt.Fprintln(r.out, r.style.green("History saved successfully."))
}
