package llvmir

import (
	"io"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/sirkon/rbtree"

	"github.com/maleadt/IRViewer/internal/colwriter"
)

// AnnotationWriter is called back by [Print] to decorate the output.
type AnnotationWriter interface {
	// OnFunctionEnter is called before a function is printed, ahead of its
	// leading comments. Declarations are included.
	OnFunctionEnter(f *Function, out *colwriter.Writer)

	// OnInstruction is called right before an instruction's indentation
	// is written.
	OnInstruction(inst *Instruction, out *colwriter.Writer)

	// OnBlockEnd is called after the last instruction of a block.
	OnBlockEnd(b *Block, out *colwriter.Writer)
}

// Print writes the module as text. Hooks of aw are called while printing,
// aw may be nil.
//
// Metadata definitions nothing refers to anymore are omitted. The rest are
// printed in ID order where the first numbered definition was.
func Print(w io.Writer, m *Module, aw AnnotationWriter) error {
	if aw == nil {
		aw = noAnnotations{}
	}

	out := colwriter.New(w)
	live := m.liveMetadata()
	nodesDone := false
	for _, e := range m.entities {
		switch e := e.(type) {
		case rawLine:
			writeLine(out, string(e))
		case namedNode:
			writeLine(out, e.text)
		case *GlobalVar:
			writeLine(out, e.String())
		case *MDNode:
			if nodesDone {
				continue
			}
			for id := range live.ids() {
				if n := m.metadata[id]; n != nil {
					writeLine(out, n.line)
				}
			}
			nodesDone = true
		case *Function:
			printFunction(out, e, aw)
		}
	}

	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "write module")
	}
	return nil
}

func printFunction(out *colwriter.Writer, f *Function, aw AnnotationWriter) {
	aw.OnFunctionEnter(f, out)
	writeLines(out, f.leading)
	writeLine(out, f.headerLine())
	if f.declared {
		return
	}

	for _, b := range f.blocks {
		writeLines(out, b.leading)
		if b.label != "" {
			writeLine(out, b.label)
		}
		for _, inst := range b.instructions {
			writeLines(out, inst.leading)
			aw.OnInstruction(inst, out)
			out.WriteString(inst.indent)
			writeLine(out, inst.String())
		}
		aw.OnBlockEnd(b, out)
	}
	writeLines(out, f.trailing)
	writeLine(out, "}")
}

func writeLine(out *colwriter.Writer, line string) {
	out.WriteString(line)
	out.WriteString("\n")
}

func writeLines(out *colwriter.Writer, lines []string) {
	for _, line := range lines {
		writeLine(out, line)
	}
}

type noAnnotations struct{}

func (noAnnotations) OnFunctionEnter(*Function, *colwriter.Writer)   {}
func (noAnnotations) OnInstruction(*Instruction, *colwriter.Writer) {}
func (noAnnotations) OnBlockEnd(*Block, *colwriter.Writer)          {}

// --- Live metadata --------------------------------------------------------------------------------------------------

// mdSlot is an element of the live metadata set.
type mdSlot struct {
	id int
}

func (s *mdSlot) Cmp(other *mdSlot) int {
	switch {
	case s.id < other.id:
		return -1
	case s.id > other.id:
		return 1
	default:
		return 0
	}
}

type mdSet struct {
	tree *rbtree.Tree[*mdSlot]
}

// add puts id into the set and tells if it was not there before.
func (s mdSet) add(id int) bool {
	return s.tree.Add(&mdSlot{id: id})
}

// ids iterates over the set in ascending order.
func (s mdSet) ids() iter.Seq[int] {
	return func(yield func(int) bool) {
		for slot := range s.tree.Iter() {
			if !yield(slot.id) {
				return
			}
		}
	}
}

// liveMetadata collects nodes referenced from the printed text of the module,
// directly or through other nodes.
func (m *Module) liveMetadata() mdSet {
	live := mdSet{tree: rbtree.New[*mdSlot]()}

	var queue []int
	mark := func(text string) {
		for _, ref := range scanNodeRefs(text) {
			if live.add(ref.id) {
				queue = append(queue, ref.id)
			}
		}
	}

	for _, e := range m.entities {
		switch e := e.(type) {
		case namedNode:
			mark(e.text)
		case *GlobalVar:
			mark(e.String())
		case *Function:
			mark(e.headerLine())
			for _, b := range e.blocks {
				for _, inst := range b.instructions {
					mark(inst.String())
				}
			}
		}
	}

	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if n := m.metadata[id]; n != nil {
			for _, ref := range n.References() {
				if live.add(ref) {
					queue = append(queue, ref)
				}
			}
		}
	}

	return live
}
