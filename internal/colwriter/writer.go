// Package colwriter provides a buffered writer that tracks the display column
// of the line being written, so callers can align trailing text.
package colwriter

import (
	"bufio"
	"io"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 8

// narrow measures ambiguous-width runes, box drawing included, as one column
// regardless of the locale.
var narrow = &runewidth.Condition{EastAsianWidth: false}

// Writer wraps an [io.Writer] and keeps the column of the current output line.
// The first write error is sticky: every following write is dropped and
// reports the same error.
type Writer struct {
	out    *bufio.Writer
	column int
	err    error
}

// New is [Writer] constructor.
func New(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// Write implements [io.Writer].
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteString(string(p))
}

// WriteString implements [io.StringWriter].
func (w *Writer) WriteString(s string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	n, err := w.out.WriteString(s)
	if err != nil {
		w.err = err
	}
	w.advance(s[:n])

	return n, err
}

// Column returns the display column the next written rune will occupy,
// zero being the start of a line.
func (w *Writer) Column() int {
	return w.column
}

// PadToColumn writes spaces until the column reaches col. At least one space
// is written even when the column is already at or past col.
func (w *Writer) PadToColumn(col int) {
	n := col - w.column
	if n < 1 {
		n = 1
	}

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	_, _ = w.Write(buf)
}

// Flush writes buffered data down to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}

	if err := w.out.Flush(); err != nil {
		w.err = err
	}

	return w.err
}

// Err returns the first error the writer has met.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) advance(s string) {
	for _, r := range s {
		switch r {
		case '\n', '\r':
			w.column = 0
		case '\t':
			w.column += tabWidth - w.column%tabWidth
		default:
			w.column += narrow.RuneWidth(r)
		}
	}
}

// Width returns how many columns s occupies when written.
func Width(s string) int {
	return narrow.StringWidth(s)
}
