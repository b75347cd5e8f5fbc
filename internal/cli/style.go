package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// styler renders REPL text with ANSI colors when the output is a terminal.
// Colors are presentation only: every message exists in plain form and the
// core packages never see them.
type styler struct {
	enabled bool
}

// ANSI SGR sequences for the REPL palette.
const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
)

// newStyler enables color only when w is a terminal and NO_COLOR is unset.
func newStyler(w io.Writer) styler {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return styler{}
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return styler{}
	}
	return styler{enabled: true}
}

func (s styler) paint(code, text string) string {
	if !s.enabled {
		return text
	}
	return code + text + ansiReset
}

func (s styler) red(text string) string    { return s.paint(ansiRed, text) }
func (s styler) green(text string) string  { return s.paint(ansiGreen, text) }
func (s styler) yellow(text string) string { return s.paint(ansiYellow, text) }
func (s styler) blue(text string) string   { return s.paint(ansiBlue, text) }
func (s styler) bold(text string) string   { return s.paint(ansiBold, text) }
func (s styler) dim(text string) string    { return s.paint(ansiDim, text) }

func (s styler) errorf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, s.red(fmt.Sprintf(format, args...)))
}
