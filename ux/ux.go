// Package ux reports the progress of a benchmark to the operator.
package ux

import (
	"io"
	"log"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
)

// Option ...
type Option func(*Printer)

// OptionOutput write to the given writer.
func OptionOutput(w io.Writer) Option {
	return func(p *Printer) {
		p.Logger = log.New(w, "", 0)
	}
}

// OptionColors force colored output on or off.
func OptionColors(enabled bool) Option {
	return func(p *Printer) {
		p.au = aurora.NewAurora(enabled)
	}
}

// New printer writing to stderr, colored when stderr is a terminal.
func New(options ...Option) Printer {
	fd := os.Stderr.Fd()
	p := Printer{
		Logger: log.New(os.Stderr, "", 0),
		au:     aurora.NewAurora(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}

	for _, opt := range options {
		opt(&p)
	}

	return p
}

// Printer status lines for the operator.
type Printer struct {
	Logger *log.Logger
	au     aurora.Aurora
}

// Heading marks the start or completion of a phase.
func (t Printer) Heading(format string, args ...interface{}) {
	t.Logger.Println(t.au.Bold(t.au.Green(t.au.Sprintf(format, args...))))
}

// Info progress within a phase.
func (t Printer) Info(format string, args ...interface{}) {
	t.Logger.Println(t.au.Sprintf(format, args...))
}

// Warn a condition that does not stop the run.
func (t Printer) Warn(format string, args ...interface{}) {
	t.Logger.Println(t.au.Bold(t.au.Yellow("WARN")), t.au.Sprintf(format, args...))
}

// Error a failure.
func (t Printer) Error(err error) {
	t.Logger.Println(t.au.Bold(t.au.Red("ERROR")), err)
}
