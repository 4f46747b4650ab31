package llvmir

import "fmt"

// Pos is a position in a module source.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// ParseError is returned when a module can not be read.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Msg)
}

func errorf(pos Pos, format string, a ...any) *ParseError {
	return &ParseError{
		Pos: pos,
		Msg: fmt.Sprintf(format, a...),
	}
}
