package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Sink receives diagnostics as they are produced. Reporting is
// fire-and-forget: the checker never reads diagnostics back to alter
// its own behavior.
type Sink interface {
	Report(d Diagnostic)
}

// List is a Sink that collects diagnostics in order of arrival.
type List struct {
	diags []Diagnostic
}

func (l *List) Report(d Diagnostic) {
	l.diags = append(l.diags, d)
}

// All returns the collected diagnostics in report order.
func (l *List) All() []Diagnostic {
	return l.diags
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (l *List) HasErrors() bool {
	for _, d := range l.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics collected.
func (l *List) ErrorCount() int {
	n := 0
	for _, d := range l.diags {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// Display prints diagnostics in a user-friendly format, including the
// source line and a position marker when the source is available.
func Display(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		pos := d.Position
		fmt.Fprintf(w, "%s at %d:%d: %s\n", d.Severity, pos.Line, pos.Column, d.Msg)

		if pos.Source == nil {
			continue
		}
		lines := pos.Source.Lines()
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			continue
		}
		trimmed := strings.TrimRight(lines[lineIdx], "\r\n\t ")
		fmt.Fprintf(w, "  %s\n", trimmed)
		marker := strings.Repeat(" ", pos.Column) + "^"
		fmt.Fprintf(w, "  %s\n\n", marker)
	}
}

// DisplayStderr is a convenience wrapper over Display for command-line drivers.
func DisplayStderr(diags []Diagnostic) {
	Display(os.Stderr, diags)
}
