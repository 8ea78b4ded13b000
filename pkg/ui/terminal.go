package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔════════════════════════════════════════════════════════╗
    ║ ▀█▀ █ █▄▀ ▀█▀ █▀█ █▄▀   █▀ █▄█ █▄ █ █▀▀                ║
    ║  █  █ █ █  █  █▄█ █ █   ▄█  █  █ ▀█ █▄▄                ║
    ║        LATEST VIDEO -> RECORD STORE SYNC               ║
    ╚════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Reporter narrates pipeline progress to the operator
type Reporter interface {
	Step(msg string)
	Info(label, value string)
	Success(msg string)
	Warning(msg string)
	Error(msg string, err error)
}

// Terminal is a Reporter that writes colored lines to an io.Writer
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	quiet bool
}

// NewTerminal creates a reporter writing to out. Colors are only emitted
// when out is stdout or stderr.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{out: out, color: out == os.Stdout || out == os.Stderr}
}

// SetQuiet suppresses everything except errors
func (t *Terminal) SetQuiet(quiet bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quiet = quiet
}

func (t *Terminal) Step(msg string) {
	t.println(false, Magenta, "► "+msg)
}

func (t *Terminal) Info(label, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quiet {
		return
	}
	fmt.Fprintf(t.out, "  %s: %s\n", t.paint(Cyan, label), t.paint(Yellow, value))
}

func (t *Terminal) Success(msg string) {
	t.println(false, Green, "✔ "+msg)
}

func (t *Terminal) Warning(msg string) {
	t.println(false, Yellow, "● "+msg)
}

func (t *Terminal) Error(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	t.println(true, Red, "✖ "+msg)
}

func (t *Terminal) println(always bool, color func(string) string, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quiet && !always {
		return
	}
	fmt.Fprintln(t.out, t.paint(color, msg))
}

func (t *Terminal) paint(color func(string) string, s string) string {
	if !t.color {
		return s
	}
	return color(s)
}

// NopReporter discards all narration
type NopReporter struct{}

func (NopReporter) Step(string)         {}
func (NopReporter) Info(string, string) {}
func (NopReporter) Success(string)      {}
func (NopReporter) Warning(string)      {}
func (NopReporter) Error(string, error) {}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(os.Stderr, Red(msg))
	}
}
