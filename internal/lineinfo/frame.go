package lineinfo

import (
	"strconv"
)

// LineNumber is an optional 1-based source line.
type LineNumber struct {
	value uint
	known bool
}

// UnknownLine is a line number that is not available.
var UnknownLine = LineNumber{}

// Line returns a known line number. Zero is how debug info spells "no line",
// so it produces [UnknownLine].
func Line(n uint) LineNumber {
	if n == 0 {
		return UnknownLine
	}

	return LineNumber{value: n, known: true}
}

// Get returns the line and whether it is known.
func (l LineNumber) Get() (uint, bool) {
	return l.value, l.known
}

func (l LineNumber) String() string {
	if !l.known {
		return "?"
	}

	return strconv.FormatUint(uint64(l.value), 10)
}

// Frame is one entry of an inlining chain.
type Frame struct {
	Function string
	File     string
	Line     LineNumber
}

func (f Frame) String() string {
	return f.Function + "@" + f.File + ":" + f.Line.String()
}

// Chain is the inlining stack of a single instruction, from the innermost
// frame (the instruction's own scope) to the outermost one (the function
// being printed).
type Chain []Frame
