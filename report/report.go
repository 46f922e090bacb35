// Package report prints compiler diagnostics and progress to the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pontaoski/tawaqbe/errors"
	"github.com/pterm/pterm"
	"github.com/ztrue/tracerr"
)

var (
	InfoColorFG  = pterm.FgLightGreen
	InfoStyleBG  = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG  = pterm.FgYellow
	WarnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG = pterm.FgRed
	ErrorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

type Reporter struct {
	Out     io.Writer
	Verbose bool
}

func New(verbose bool) *Reporter {
	return &Reporter{Out: os.Stderr, Verbose: verbose}
}

// Error prints err under tag. When err points into source, the offending
// line is shown with a caret under the column.
func (r *Reporter) Error(tag string, err error, source []byte) {
	fmt.Fprint(r.Out, ErrorStyleBG.Sprint(tag))
	fmt.Fprintln(r.Out, ErrorColorFG.Sprint(" "+tracerr.Unwrap(err).Error()))

	if located, ok := tracerr.Unwrap(err).(errors.Located); ok && source != nil {
		r.selection(located, source)
	}
}

func (r *Reporter) Warn(tag, msg string) {
	fmt.Fprint(r.Out, WarnStyleBG.Sprint(tag))
	fmt.Fprintln(r.Out, WarnColorFG.Sprint(" "+msg))
}

// Info is only shown in verbose mode.
func (r *Reporter) Info(tag, msg string) {
	if !r.Verbose {
		return
	}
	fmt.Fprint(r.Out, InfoStyleBG.Sprint(tag))
	fmt.Fprintln(r.Out, InfoColorFG.Sprint(" "+msg))
}

func (r *Reporter) selection(err errors.Located, source []byte) {
	loc := err.Where()

	lines := strings.Split(string(source), "\n")
	if loc.Row < 0 || loc.Row >= len(lines) {
		return
	}
	line := lines[loc.Row]

	// Column is a byte offset; the caret is placed by rune with tabs widened
	prefix := line
	if loc.Column < len(line) {
		prefix = line[:loc.Column]
	}
	col := utf8.RuneCountInString(strings.ReplaceAll(prefix, "\t", "    "))

	number := strconv.Itoa(loc.Row + 1)
	gutter := strings.Repeat(" ", len(number)+1)

	fmt.Fprintln(r.Out)
	fmt.Fprint(r.Out, InfoColorFG.Sprint(number+" "))
	fmt.Fprintln(r.Out, "|  "+strings.ReplaceAll(line, "\t", "    "))
	fmt.Fprint(r.Out, gutter+"|  "+strings.Repeat(" ", col))
	fmt.Fprintln(r.Out, ErrorColorFG.Sprint("^"))
	fmt.Fprintln(r.Out)
}
