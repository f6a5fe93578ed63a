package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StepSpinner narrates the serve command's startup steps. On a TTY each step
// runs a braille spinner while it works; off a TTY the steps print as plain
// lines so piped and CI output stays clean.
type StepSpinner struct {
	w      io.Writer
	s      *spinner.Spinner
	msg    string
	active bool
	plain  bool
}

// NewStepSpinner returns a spinner writing to w. Pass plain=true when w is
// not a terminal.
func NewStepSpinner(w io.Writer, plain bool) *StepSpinner {
	return &StepSpinner{w: w, plain: plain}
}

// Start opens a named step.
func (ss *StepSpinner) Start(msg string) {
	ss.msg = msg
	if ss.plain {
		fmt.Fprintf(ss.w, "  %s", msg)
		return
	}
	ss.s = spinner.New(
		spinner.CharSets[14], // braille dots
		80*time.Millisecond,
		spinner.WithWriter(ss.w),
	)
	ss.s.Prefix = "  "
	ss.s.Suffix = " " + msg
	ss.s.Start()
	ss.active = true
}

// Done closes the current step with a check mark.
func (ss *StepSpinner) Done() {
	ss.finish(StyleSuccess.Render(SymbolCheck))
}

// Fail closes the current step with a cross.
func (ss *StepSpinner) Fail() {
	ss.finish(StyleError.Render(SymbolCross))
}

// Stop halts any animation without printing a status, for cleanup on signals.
func (ss *StepSpinner) Stop() {
	if ss.s != nil && ss.active {
		ss.s.Stop()
		ss.active = false
	}
}

func (ss *StepSpinner) finish(symbol string) {
	if ss.plain {
		fmt.Fprintf(ss.w, " %s\n", symbol)
		return
	}
	ss.Stop()
	fmt.Fprintf(ss.w, "\r  %s %s\n", ss.msg, symbol)
}
