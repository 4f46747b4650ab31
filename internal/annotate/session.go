// Package annotate decorates printed IR with the source context of every
// instruction.
package annotate

import (
	"github.com/go-logr/logr"

	"github.com/maleadt/IRViewer/internal/colwriter"
	"github.com/maleadt/IRViewer/internal/lineinfo"
	"github.com/maleadt/IRViewer/internal/llvmir"
	"github.com/maleadt/IRViewer/internal/strip"
)

var _ llvmir.AnnotationWriter = (*Session)(nil)

// Session is the state of a single annotated print. It implements
// [llvmir.AnnotationWriter].
type Session struct {
	printer *lineinfo.Printer
	archive *strip.Archive
	log     logr.Logger

	// last is the chain of the latest located instruction of the current
	// function, nil at function entry.
	last lineinfo.Chain
}

// NewSession is [Session] constructor. The archive provides locations and
// subprograms stripped off the module, it may be nil.
func NewSession(printer *lineinfo.Printer, archive *strip.Archive, log logr.Logger) *Session {
	return &Session{
		printer: printer,
		archive: archive,
		log:     log,
	}
}

// OnFunctionEnter opens the context of the function declaration.
func (s *Session) OnFunctionEnter(f *llvmir.Function, out *colwriter.Writer) {
	s.last = nil

	sp := f.Subprogram()
	if sp == nil {
		sp = s.archive.Subprogram(f)
	}
	if sp == nil {
		s.log.V(2).Info("no subprogram", "function", f.Name())
		return
	}

	s.printer.Emit(out, SubprogramFrame(sp))
}

// OnInstruction writes context changes and indentation of an instruction.
// Instructions without a location are aligned with the latest located one.
func (s *Session) OnInstruction(inst *llvmir.Instruction, out *colwriter.Writer) {
	loc := inst.DebugLoc()
	if loc == nil {
		loc = s.archive.Location(inst)
	}

	if loc == nil {
		if s.last != nil {
			s.printer.Blank(out, len(s.last))
		}
		return
	}

	chain := Frames(loc)
	s.last = chain
	s.printer.Emit(out, chain)
	s.printer.Indent(out, len(chain))
}

// OnBlockEnd closes the context when the function ends.
func (s *Session) OnBlockEnd(b *llvmir.Block, out *colwriter.Writer) {
	if b.IsLast() {
		s.printer.Finish()
	}
}
