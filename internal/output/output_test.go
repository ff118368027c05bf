package output

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newBufferedOutput(verbose, tty bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	out := New(Config{
		Verbose:   verbose,
		Writer:    &stdout,
		ErrWriter: &stderr,
		IsTTY:     tty,
	})
	return out, &stdout, &stderr
}

func TestVerboseOutputOnlyAppearsWhenEnabled(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		expectEmpty bool
	}{
		{"verbose disabled - no output", false, true},
		{"verbose enabled - has output", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf, _ := newBufferedOutput(tt.verbose, false)

			out.Verbose("test message")

			if tt.expectEmpty && buf.Len() > 0 {
				t.Errorf("expected no output when verbose disabled, got: %q", buf.String())
			}
			if !tt.expectEmpty && buf.String() != "test message\n" {
				t.Errorf("expected 'test message\\n', got: %q", buf.String())
			}
		})
	}
}

func TestInfoAndBlockAlwaysShown(t *testing.T) {
	out, buf, _ := newBufferedOutput(false, false)

	out.Info("sorted %d files", 3)
	out.Block("table\n")

	if got := buf.String(); got != "sorted 3 files\ntable\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestErrorOutputGoesToErrWriter(t *testing.T) {
	out, stdout, stderr := newBufferedOutput(false, false)

	out.Error("error message")

	if stdout.Len() > 0 {
		t.Errorf("expected no stdout output for Error, got: %q", stdout.String())
	}
	if stderr.String() != "error message\n" {
		t.Errorf("expected stderr to contain 'error message', got: %q", stderr.String())
	}
}

func TestProgressFormat(t *testing.T) {
	out, buf, _ := newBufferedOutput(false, true)

	out.StartProgress(10)
	out.UpdateProgress(5, "")
	out.UpdateProgress(6, "invoice.pdf")

	output := buf.String()
	if !strings.Contains(output, "\rSorting 5/10") {
		t.Errorf("expected 'Sorting 5/10', got: %q", output)
	}
	if !strings.Contains(output, "\rSorting 6/10: invoice.pdf") {
		t.Errorf("expected 'Sorting 6/10: invoice.pdf', got: %q", output)
	}
}

func TestProgressTruncatesLongNames(t *testing.T) {
	out, buf, _ := newBufferedOutput(false, true)

	out.StartProgress(1)
	out.UpdateProgress(1, strings.Repeat("x", 200))

	line := strings.TrimPrefix(buf.String(), "\r")
	if n := len([]rune(line)); n != progressWidth {
		t.Errorf("expected line of %d runes, got %d", progressWidth, n)
	}
	if !strings.HasSuffix(line, "...") {
		t.Errorf("expected truncated line to end with '...', got %q", line)
	}
}

func TestProgressSuppressed(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		tty     bool
	}{
		{"not a terminal", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf, _ := newBufferedOutput(tt.verbose, tt.tty)

			out.StartProgress(10)
			out.UpdateProgress(5, "a.txt")
			out.EndProgress()

			if strings.Contains(buf.String(), "Sorting") {
				t.Errorf("expected no progress output, got: %q", buf.String())
			}
		})
	}
}

func TestMessagesClearProgressLine(t *testing.T) {
	out, buf, _ := newBufferedOutput(false, true)

	out.StartProgress(2)
	out.UpdateProgress(1, "a.txt")
	out.Info("hello")

	want := "\rSorting 1/2: a.txt" + "\r" + strings.Repeat(" ", len("Sorting 1/2: a.txt")) + "\r" + "hello\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEndProgressClearsLine(t *testing.T) {
	out, buf, _ := newBufferedOutput(false, true)

	out.StartProgress(10)
	out.UpdateProgress(5, "")
	out.EndProgress()

	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("expected output to end with carriage return after EndProgress, got: %q", buf.String())
	}

	buf.Reset()
	out.UpdateProgress(6, "")
	if buf.Len() > 0 {
		t.Errorf("no progress after EndProgress, got %q", buf.String())
	}
}

func TestNewWithNilWriters(t *testing.T) {
	out := New(Config{})
	if out.config.Writer == nil || out.config.ErrWriter == nil {
		t.Error("New should default nil writers")
	}
	if out.IsVerbose() || out.IsTTY() {
		t.Error("zero Config should be quiet and non-TTY")
	}
}

// TestProgressShowsEveryCount checks that any current/total pair appears
// verbatim in the progress line.
func TestProgressShowsEveryCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	pattern := regexp.MustCompile(`^\rSorting (\d+)/(\d+)$`)

	properties.Property("progress line carries current and total", prop.ForAll(
		func(total, offset int) bool {
			current := offset % (total + 1)
			out, buf, _ := newBufferedOutput(false, true)
			out.StartProgress(total)
			out.UpdateProgress(current, "")

			m := pattern.FindStringSubmatch(buf.String())
			if m == nil {
				return false
			}
			return m[1] == strconv.Itoa(current) && m[2] == strconv.Itoa(total)
		},
		gen.IntRange(1, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t)
}
