// Package output handles terminal output: plain messages, rendered tables,
// the leveled logger and the in-place progress line.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// progressWidth caps the progress line so it fits a narrow terminal.
const progressWidth = 72

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output writes messages and tables, and keeps a single progress line
// that other output clears before printing.
type Output struct {
	config Config

	mu       sync.Mutex
	active   bool
	total    int
	lastLine int // width of the last progress line written
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{config: config}
}

// DefaultConfig returns a Config writing to stdout and stderr, with
// TTY detection on stdout.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.println(o.config.Writer, fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.println(o.config.ErrWriter, fmt.Sprintf(format, args...))
}

// Block prints a pre-rendered block such as a table, followed by a newline.
func (o *Output) Block(s string) {
	o.println(o.config.Writer, s)
}

func (o *Output) println(w io.Writer, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearLocked()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// clearLocked blanks the progress line so the next write starts clean.
// The progress line is redrawn by the next UpdateProgress.
func (o *Output) clearLocked() {
	if !o.active || o.lastLine == 0 {
		return
	}
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.lastLine)+"\r")
	o.lastLine = 0
}

func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress session over total files. Progress is
// only drawn on a terminal and never in verbose mode.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = true
	o.total = total
	o.lastLine = 0
}

// UpdateProgress redraws the progress line for the current file.
func (o *Output) UpdateProgress(current int, name string) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.active {
		return
	}
	line := fmt.Sprintf("Sorting %d/%d", current, o.total)
	if name != "" {
		line += ": " + name
	}
	if r := []rune(line); len(r) > progressWidth {
		line = string(r[:progressWidth-3]) + "..."
	}
	pad := ""
	if n := len([]rune(line)); n < o.lastLine {
		pad = strings.Repeat(" ", o.lastLine-n)
	}
	fmt.Fprint(o.config.Writer, "\r"+line+pad)
	o.lastLine = len([]rune(line)) + len(pad)
}

// EndProgress clears the progress line and ends the session.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearLocked()
	o.active = false
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
