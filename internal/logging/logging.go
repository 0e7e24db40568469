// Package logging provides the leveled, colored logger used by the service and CLI.
// Secret values must never be passed to it.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes info and debug lines to Out when enabled, warnings and errors
// to Err always.
type Logger struct {
	Verbose bool
	Debug   bool
	Out     io.Writer
	Err     io.Writer
}

// New returns a Logger writing to stdout and stderr.
func New(verbose, debug bool) Logger {
	return Logger{Verbose: verbose, Debug: debug, Out: os.Stdout, Err: os.Stderr}
}

// Discard returns a Logger that writes nothing.
func Discard() Logger {
	return Logger{Out: io.Discard, Err: io.Discard}
}

func (l Logger) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}

func (l Logger) err() io.Writer {
	if l.Err == nil {
		return os.Stderr
	}
	return l.Err
}

func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose {
		fmt.Fprintf(l.out(), color.GreenString("[info] ")+msg+"\n", args...)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(l.out(), color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	fmt.Fprintf(l.err(), color.YellowString("[warn] ")+msg+"\n", args...)
}

func (l Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(l.err(), color.RedString("[error] ")+msg+"\n", args...)
}
