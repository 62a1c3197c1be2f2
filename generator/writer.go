package generator

import (
	"fmt"
	"strings"
)

// indentUnit is the indentation emitted per nesting level.
const indentUnit = "    "

// declWriter accumulates declaration text with nesting-aware indentation.
// Every enter call must be matched by a leave call on every code path,
// including early returns; the emitter guarantees unwind around recursion.
type declWriter struct {
	buf   strings.Builder
	depth int
}

// linef writes one indented line.
func (w *declWriter) linef(format string, args ...any) {
	w.buf.WriteString(strings.Repeat(indentUnit, w.depth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// enterf writes an opening line ending in '{' and increases the nesting level.
func (w *declWriter) enterf(format string, args ...any) {
	w.linef(format+" {", args...)
	w.depth++
}

// leave closes the current block.
func (w *declWriter) leave() {
	w.depth--
	w.linef("}")
}

// comment writes a JSDoc comment block. Multi-line text becomes one line per
// row; empty text writes nothing.
func (w *declWriter) comment(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	w.linef("/**")
	for _, line := range lines {
		w.linef(" * %s", strings.TrimRight(line, " \t"))
	}
	w.linef(" */")
}

// String returns the accumulated output.
func (w *declWriter) String() string {
	return w.buf.String()
}
