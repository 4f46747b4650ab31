package llvmir

import (
	"slices"
	"strings"
)

// Module is a parsed textual IR module.
type Module struct {
	// Name is the file the module was read from.
	Name string

	entities  []entity
	functions []*Function
	globals   []GlobalObject
	metadata  map[int]*MDNode
	reporter  *Reporter
}

// entity is a top-level item of a module, printed in source order.
type entity interface {
	isEntity()
}

// rawLine is a top-level line kept verbatim.
type rawLine string

func (rawLine) isEntity() {}

// Attachment is a metadata attachment of an instruction or a global object.
type Attachment struct {
	// Kind is the attachment kind without the leading '!', like "dbg".
	Kind string

	// Node is the attached value as written: "!12", "!{}", etc.
	Node string
}

func (a Attachment) String() string {
	return "!" + a.Kind + " " + a.Node
}

// GlobalObject is a module-level object which can carry metadata: a global
// variable or a function.
type GlobalObject interface {
	// Name returns the object name without '@'.
	Name() string

	// Attachments returns a copy of the object's metadata attachments.
	Attachments() []Attachment

	// ClearMetadata removes all metadata attachments.
	ClearMetadata()
}

// Functions returns module functions, definitions and declarations alike,
// in source order.
func (m *Module) Functions() []*Function {
	return m.functions
}

// GlobalObjects returns global variables and functions in source order.
func (m *Module) GlobalObjects() []GlobalObject {
	return m.globals
}

// Node returns the metadata node with the given ID, nil if there is none.
func (m *Module) Node(id int) *MDNode {
	return m.metadata[id]
}

// Diagnostics returns non-fatal issues met while reading the module.
func (m *Module) Diagnostics() []Report {
	return m.reporter.Reports()
}

// --- Global variables -----------------------------------------------------------------------------------------------

// GlobalVar is a module-level "@name = ..." definition.
type GlobalVar struct {
	name        string
	text        string
	attachments []Attachment
	comment     string
}

func (*GlobalVar) isEntity() {}

// Name implements [GlobalObject].
func (g *GlobalVar) Name() string {
	return g.name
}

// Attachments implements [GlobalObject].
func (g *GlobalVar) Attachments() []Attachment {
	return slices.Clone(g.attachments)
}

// ClearMetadata implements [GlobalObject].
func (g *GlobalVar) ClearMetadata() {
	g.attachments = nil
}

func (g *GlobalVar) String() string {
	var b strings.Builder
	b.WriteString(g.text)
	for _, a := range g.attachments {
		b.WriteString(", ")
		b.WriteString(a.String())
	}
	b.WriteString(g.comment)
	return b.String()
}

// --- Functions ------------------------------------------------------------------------------------------------------

// Function is a function definition or declaration.
type Function struct {
	name string
	// header is the definition header without attachments and the opening
	// brace, or the declaration text after the "declare" keyword.
	header      string
	attachments []Attachment
	comment     string

	// leading are comment lines right above the header.
	leading []string
	// trailing are lines between the last instruction and the closing brace.
	trailing []string

	blocks   []*Block
	declared bool
	module   *Module
	pos      Pos
}

func (*Function) isEntity() {}

// Name implements [GlobalObject].
func (f *Function) Name() string {
	return f.name
}

// Attachments implements [GlobalObject].
func (f *Function) Attachments() []Attachment {
	return slices.Clone(f.attachments)
}

// ClearMetadata implements [GlobalObject].
func (f *Function) ClearMetadata() {
	f.attachments = nil
}

// IsDeclaration tells if the function has no body.
func (f *Function) IsDeclaration() bool {
	return f.declared
}

// Blocks returns function blocks in source order.
func (f *Function) Blocks() []*Block {
	return f.blocks
}

// Subprogram returns the debug descriptor attached to the function, nil if
// there is none.
func (f *Function) Subprogram() *DISubprogram {
	for _, a := range f.attachments {
		if a.Kind == "dbg" {
			return f.module.subprogram(a.Node)
		}
	}
	return nil
}

// headerLine renders the function header. Declarations carry attachments
// right after the keyword, definitions right before the body.
func (f *Function) headerLine() string {
	var b strings.Builder
	if f.declared {
		b.WriteString("declare")
		for _, a := range f.attachments {
			b.WriteByte(' ')
			b.WriteString(a.String())
		}
		b.WriteByte(' ')
		b.WriteString(f.header)
		b.WriteString(f.comment)
		return b.String()
	}

	b.WriteString(f.header)
	for _, a := range f.attachments {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteString(" {")
	b.WriteString(f.comment)
	return b.String()
}

// --- Blocks ---------------------------------------------------------------------------------------------------------

// Block is a basic block.
type Block struct {
	// label is the raw label line, empty for an unnamed entry block.
	label   string
	leading []string

	instructions []*Instruction
	parent       *Function
}

// Label returns the raw label line, empty for an unnamed entry block.
func (b *Block) Label() string {
	return b.label
}

// Instructions returns block instructions in order.
func (b *Block) Instructions() []*Instruction {
	return b.instructions
}

// Parent returns the function the block belongs to.
func (b *Block) Parent() *Function {
	return b.parent
}

// IsLast tells if this is the last block of its function.
func (b *Block) IsLast() bool {
	blocks := b.parent.blocks
	return len(blocks) > 0 && blocks[len(blocks)-1] == b
}

// Erase removes the given instructions from the block. Instructions are
// identified by pointer, ones that are not in the block are ignored.
func (b *Block) Erase(insts ...*Instruction) {
	if len(insts) == 0 {
		return
	}

	b.instructions = slices.DeleteFunc(b.instructions, func(inst *Instruction) bool {
		if slices.Contains(insts, inst) {
			inst.parent = nil
			return true
		}
		return false
	})
}

// --- Instructions ---------------------------------------------------------------------------------------------------

// Instruction is a single instruction or debug record of a block.
type Instruction struct {
	indent      string
	text        string
	attachments []Attachment
	comment     string
	leading     []string
	record      bool

	parent *Block
	module *Module
	pos    Pos
}

// Text returns the instruction text without indentation, attachments and
// trailing comment.
func (i *Instruction) Text() string {
	return i.text
}

// Parent returns the block the instruction belongs to, nil once erased.
func (i *Instruction) Parent() *Block {
	return i.parent
}

// Pos returns where the instruction starts in the source.
func (i *Instruction) Pos() Pos {
	return i.pos
}

// IsDebugRecord tells if this is a "#dbg_..." record rather than an
// instruction.
func (i *Instruction) IsDebugRecord() bool {
	return i.record
}

// IsDebugMarker tells if the instruction only exists to describe variables
// to a debugger: llvm.dbg.declare, llvm.dbg.value and llvm.dbg.assign calls
// and their record forms.
func (i *Instruction) IsDebugMarker() bool {
	if i.record {
		return debugRecordRe.MatchString(i.text)
	}
	return debugCallRe.MatchString(i.text)
}

// Metadata returns the value attached with the given kind.
func (i *Instruction) Metadata(kind string) (string, bool) {
	for _, a := range i.attachments {
		if a.Kind == kind {
			return a.Node, true
		}
	}
	return "", false
}

// Attachments returns a copy of all metadata attachments.
func (i *Instruction) Attachments() []Attachment {
	return slices.Clone(i.attachments)
}

// MetadataOtherThanDebugLoc returns all attachments except "dbg".
func (i *Instruction) MetadataOtherThanDebugLoc() []Attachment {
	var res []Attachment
	for _, a := range i.attachments {
		if a.Kind != "dbg" {
			res = append(res, a)
		}
	}
	return res
}

// SetMetadata attaches node with the given kind, replacing the previous
// value. An empty node removes the attachment.
func (i *Instruction) SetMetadata(kind, node string) {
	for k, a := range i.attachments {
		if a.Kind != kind {
			continue
		}
		if node == "" {
			i.attachments = slices.Delete(i.attachments, k, k+1)
		} else {
			i.attachments[k].Node = node
		}
		return
	}

	if node != "" {
		i.attachments = append(i.attachments, Attachment{Kind: kind, Node: node})
	}
}

// DebugLoc returns the attached debug location, nil if there is none.
func (i *Instruction) DebugLoc() *DILocation {
	node, ok := i.Metadata("dbg")
	if !ok {
		return nil
	}
	return i.module.location(node)
}

// SetDebugLoc replaces the debug location, nil removes it.
func (i *Instruction) SetDebugLoc(loc *DILocation) {
	if loc == nil {
		i.SetMetadata("dbg", "")
		return
	}
	i.SetMetadata("dbg", loc.node.Ref())
}

func (i *Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.text)
	for _, a := range i.attachments {
		b.WriteString(", ")
		b.WriteString(a.String())
	}
	b.WriteString(i.comment)
	return b.String()
}
