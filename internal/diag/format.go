package diag

import (
	"fmt"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[1;31m"
	ansiDim   = "\033[2m"
)

// Format renders a single diagnostic the way the compiler CLI prints it:
//
//	error[4:21]: expected an expression [E2002]
//	   4 | show character Hero at
//	                           ^
//	  = note: previous definition was here (at 2:1)
//	  = help: did you mean 'Hero'?
//
// If color is true, severity and carets are ANSI-colored.
func Format(d Diagnostic, color bool) string {
	var sb strings.Builder

	sevColor, reset := "", ""
	if color {
		reset = ansiReset
		switch d.Severity {
		case Error:
			sevColor = ansiRed
		case Warning:
			sevColor = ansiBold
		default:
			sevColor = ansiDim
		}
	}

	fmt.Fprintf(&sb, "%s%s[%s]%s: %s [%s]\n", sevColor, d.Severity, d.Span.Start, reset, d.Message, d.Code.Label())

	if d.Snippet != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Span.Start.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(d.Snippet)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max0(d.Span.Start.Column-1)))
		if color {
			sb.WriteString(ansiRed)
		}
		sb.WriteString("^")
		if color {
			sb.WriteString(ansiReset)
		}
		sb.WriteString("\n")
	}

	for _, r := range d.Related {
		fmt.Fprintf(&sb, "  = note: %s (at %s)\n", r.Message, r.Span.Start)
	}
	for _, s := range d.Suggestions {
		fmt.Fprintf(&sb, "  = help: %s\n", s)
	}

	return sb.String()
}

// FormatAll renders every diagnostic in a collection, one per
// paragraph, in insertion order.
func FormatAll(c *Collection, color bool) string {
	if c == nil || c.Empty() {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.All() {
		sb.WriteString(Format(d, color))
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
