package lineinfo

import (
	"io"
	"slices"
	"strconv"
	"strings"
)

// Sink is where annotations are written to. It must know the column of the
// line being written to align source text.
type Sink interface {
	io.StringWriter
	PadToColumn(col int)
}

// Style defines the look of annotation lines.
type Style struct {
	// IndentUnit is written once per open frame in front of annotations
	// and decorated instructions.
	IndentUnit string

	// BlankUnit replaces IndentUnit for instructions without debug info.
	BlankUnit string

	// HeaderMarker opens a new frame.
	HeaderMarker string

	// ContinuationMarker reports a line change within an open frame.
	ContinuationMarker string

	// SourceColumn is where source text starts for top level frames, every
	// nesting level shifts it by two columns.
	SourceColumn int
}

// DefaultStyle returns the box drawing style.
func DefaultStyle() Style {
	return Style{
		IndentUnit:         "│ ",
		BlankUnit:          "  ",
		HeaderMarker:       "┌ ",
		ContinuationMarker: "├ ",
		SourceColumn:       92,
	}
}

// Printer tracks the inlining context already written out and emits only
// what changes between consecutive instructions.
type Printer struct {
	style   Style
	paths   *PathResolver
	sources *SourceReader

	// context is outermost first, context[i] was printed at depth i.
	context []Frame
}

// NewPrinter is [Printer] constructor. Both paths and sources may be nil:
// paths are printed as they are and no source text is shown then.
func NewPrinter(style Style, paths *PathResolver, sources *SourceReader) *Printer {
	return &Printer{
		style:   style,
		paths:   paths,
		sources: sources,
	}
}

// Emit writes the annotation lines needed to move the displayed context to
// the given chain. An empty chain writes nothing and keeps the context.
func (p *Printer) Emit(out Sink, chain Chain) {
	n := len(chain)
	if n == 0 {
		return
	}

	if len(p.context) > n {
		p.context = p.context[:n]
	}

	// Function and file are compared before the line: a frame of another
	// function at the same depth must open a new block even when only the
	// line would look different.
	lineOnly := false
	for i := range p.context {
		have, want := p.context[i], chain[n-1-i]
		if have == want {
			continue
		}

		if have.Function == want.Function && have.File == want.File {
			lineOnly = true
		}
		p.context = p.context[:i]
		break
	}

	if lineOnly {
		depth := len(p.context)
		frame := chain[n-1-depth]
		p.emitContinuation(out, depth, frame)
		p.context = append(p.context, frame)
	}

	for i := len(p.context); i < n; i++ {
		frame := chain[n-1-i]
		p.context = append(p.context, frame)
		p.emitHeader(out, i, frame)
	}
}

// Finish forgets the displayed context. It is called when a function ends.
func (p *Printer) Finish() {
	p.context = p.context[:0]
}

// Depth returns the number of open frames.
func (p *Printer) Depth() int {
	return len(p.context)
}

// Context returns a copy of the displayed context, outermost first.
func (p *Printer) Context() []Frame {
	return slices.Clone(p.context)
}

// Indent writes indentation for a decorated instruction at the given depth.
func (p *Printer) Indent(out Sink, depth int) {
	_, _ = out.WriteString(Repeat(p.style.IndentUnit, depth))
}

// Blank writes indentation for an instruction without debug info, so it stays
// aligned with the decorated ones around it.
func (p *Printer) Blank(out Sink, depth int) {
	_, _ = out.WriteString(Repeat(p.style.BlankUnit, depth))
}

func (p *Printer) emitContinuation(out Sink, depth int, frame Frame) {
	line, ok := frame.Line.Get()
	if !ok {
		return
	}

	var b strings.Builder
	b.WriteString(Repeat(p.style.IndentUnit, depth))
	b.WriteString(p.style.ContinuationMarker)
	b.WriteString("; ")
	b.WriteString(p.paths.Resolve(frame.File))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(line), 10))
	_, _ = out.WriteString(b.String())

	p.emitSource(out, depth, frame.File, line)
	_, _ = out.WriteString("\n")
}

func (p *Printer) emitHeader(out Sink, depth int, frame Frame) {
	var b strings.Builder
	b.WriteString(Repeat(p.style.IndentUnit, depth))
	b.WriteString(p.style.HeaderMarker)
	b.WriteString("; ")
	b.WriteString(displayName(frame.Function))
	b.WriteString(" at ")
	b.WriteString(p.paths.Resolve(frame.File))

	line, ok := frame.Line.Get()
	if ok {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(line), 10))
	}
	_, _ = out.WriteString(b.String())

	if ok {
		p.emitSource(out, depth, frame.File, line)
	}
	_, _ = out.WriteString("\n")
}

func (p *Printer) emitSource(out Sink, depth int, file string, line uint) {
	text := p.sources.ReadLine(file, line)
	text = TrimLeft(strings.TrimSuffix(text, "\r"))
	if text == "" {
		return
	}

	out.PadToColumn(p.style.SourceColumn + 2*depth)
	_, _ = out.WriteString(text)
}

// displayName strips the trailing separator some frontends append to
// function names.
func displayName(name string) string {
	return strings.TrimSuffix(name, ";")
}
