package diag

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// lineCol locates the 1-based line and column of a byte offset in src,
// along with the full text of that line (without its trailing newline).
func lineCol(src string, offset int) (line, col int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(src)
	if idx := strings.IndexByte(src[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	if lineEnd < lineStart {
		lineEnd = lineStart
	}
	lineText = src[lineStart:lineEnd]
	col = runeDisplayWidth(lineText[:clamp(offset-lineStart, 0, len(lineText))]) + 1
	return line, col, lineText
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// runeDisplayWidth approximates the terminal column width of s, treating
// East-Asian wide runes as width 2 and everything else as width 1 so
// carets line up under multi-byte characters.
func runeDisplayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// Render renders a single diagnostic as a human-readable, caret-annotated
// snippet in the style `file:line:col: severity[CODE]: message`.
func Render(d *Diagnostic, file, src string) string {
	var b strings.Builder

	line, col, lineText := lineCol(src, d.Span.Start)
	fmt.Fprintf(&b, "%s:%d:%d: %s[%s]: %s\n", nonEmpty(d.File, file), line, col, d.Severity, d.Code, d.Message)

	fmt.Fprintf(&b, "  %4d | %s\n", line, lineText)
	caretLen := d.Span.End - d.Span.Start
	if caretLen < 1 {
		caretLen = 1
	}
	if col-1+caretLen > len(lineText) {
		caretLen = maxInt(1, len(lineText)-(col-1))
	}
	prefix := strings.Repeat(" ", col-1)
	fmt.Fprintf(&b, "       | %s%s\n", prefix, strings.Repeat("^", maxInt(1, caretLen)))

	for _, l := range d.Labels {
		ll, lc, _ := lineCol(src, l.Span.Start)
		fmt.Fprintf(&b, "  label at %d:%d: %s\n", ll, lc, l.Message)
	}
	for _, r := range d.Related {
		rl, rc, _ := lineCol(src, r.Span.Start)
		fmt.Fprintf(&b, "  related at %d:%d: %s\n", rl, rc, r.Message)
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "  help: %s\n", d.Help)
	}
	return b.String()
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
