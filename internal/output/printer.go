// Package output writes command results: JSON that is indented on a
// terminal, plain text, and JSONPath selections over results.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Printer writes values to one destination.
type Printer struct {
	w      io.Writer
	indent bool
}

// NewPrinter returns a Printer for w. JSON is indented when w is a terminal
// and compact is false.
func NewPrinter(w io.Writer, compact bool) *Printer {
	return &Printer{w: w, indent: !compact && IsTerminal(w)}
}

// WithIndent forces indentation on or off regardless of the destination.
func (p *Printer) WithIndent(on bool) *Printer {
	return &Printer{w: p.w, indent: on}
}

// JSON writes v followed by a newline. HTML characters are not escaped.
func (p *Printer) JSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if p.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := p.w.Write(buf.Bytes())
	return err
}

// Text writes s, adding a trailing newline when it has none.
func (p *Printer) Text(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(p.w, s)
	return err
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
