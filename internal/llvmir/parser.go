package llvmir

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseFile reads a textual IR module from the given file.
func ParseFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read module")
	}

	return Parse(path, data)
}

// Parse reads a textual IR module. The name is used in diagnostics.
//
// Errors describing malformed input are of type *[ParseError].
func Parse(name string, data []byte) (*Module, error) {
	if isBitcode(data) {
		return nil, errorf(Pos{File: name, Line: 1, Col: 1}, "bitcode input is not supported, disassemble it first")
	}

	p := &parser{
		m: &Module{
			Name:     name,
			metadata: map[int]*MDNode{},
			reporter: &Reporter{},
		},
		name: name,
	}
	p.lines = splitLines(data)

	if err := p.parse(); err != nil {
		return nil, err
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}

	return p.m, nil
}

var (
	bitcodeMagic        = []byte{'B', 'C', 0xC0, 0xDE}
	bitcodeWrapperMagic = []byte{0xDE, 0xC0, 0x17, 0x0B}
)

func isBitcode(data []byte) bool {
	return bytes.HasPrefix(data, bitcodeMagic) || bytes.HasPrefix(data, bitcodeWrapperMagic)
}

func splitLines(data []byte) []string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// namedNode is a "!name = !{...}" definition.
type namedNode struct {
	text string
}

func (namedNode) isEntity() {}

// use is a piece of text which may reference metadata nodes.
type use struct {
	pos  Pos
	text string
}

type parser struct {
	m     *Module
	name  string
	lines []string

	// next is the index of the next physical line to read.
	next int

	// pending are comment and blank lines not bound to an entity yet.
	pending []string

	uses []use
}

// logical is a statement which may span several physical lines.
type logical struct {
	text string
	pos  Pos
}

// read returns the next logical line. A line leaving brackets open is
// continued with the following ones.
func (p *parser) read() (logical, bool) {
	if p.next >= len(p.lines) {
		return logical{}, false
	}

	start := p.next
	text := p.lines[start]
	depth := balance(text)
	p.next++
	for depth > 0 && p.next < len(p.lines) {
		line := p.lines[p.next]
		depth += balance(line)
		text += "\n" + line
		p.next++
	}

	return logical{
		text: text,
		pos:  p.pos(start, text),
	}, true
}

// pos points at the first non-blank character of a line.
func (p *parser) pos(index int, text string) Pos {
	return Pos{
		File: p.name,
		Line: index + 1,
		Col:  len(text) - len(strings.TrimLeft(text, " \t")) + 1,
	}
}

func (p *parser) parse() error {
	for {
		l, ok := p.read()
		if !ok {
			break
		}

		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" || trimmed[0] == ';' {
			p.pending = append(p.pending, l.text)
			continue
		}

		var err error
		switch word := firstWord(trimmed); {
		case word == "define":
			err = p.parseDefinition(l)
		case word == "declare":
			err = p.parseDeclaration(l)
		case trimmed[0] == '@':
			p.parseGlobal(l)
		case trimmed[0] == '!':
			err = p.parseMetadata(l, trimmed)
		case trimmed[0] == '%' || trimmed[0] == '$' || topLevelKeywords[word]:
			p.flush()
			p.m.entities = append(p.m.entities, rawLine(l.text))
		default:
			err = errorf(l.pos, "expected top-level entity")
		}
		if err != nil {
			return err
		}
	}

	p.flush()
	return nil
}

var topLevelKeywords = map[string]bool{
	"source_filename": true,
	"target":          true,
	"attributes":      true,
	"module":          true,
	"uselistorder":    true,
	"uselistorder_bb": true,
	"deplibs":         true,
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		return s[:i]
	}
	return s
}

// flush turns pending lines into top-level raw lines.
func (p *parser) flush() {
	for _, line := range p.pending {
		p.m.entities = append(p.m.entities, rawLine(line))
	}
	p.pending = nil
}

// takeLeading detaches the comment lines which immediately precede a
// function header.
func (p *parser) takeLeading() []string {
	k := len(p.pending)
	for k > 0 && strings.TrimSpace(p.pending[k-1]) != "" {
		k--
	}

	leading := p.pending[k:]
	p.pending = p.pending[:k]
	p.flush()
	return leading
}

// --- Functions ------------------------------------------------------------------------------------------------------

func (p *parser) newFunction(l logical, header string) (*Function, error) {
	name := globalNameRe.FindStringSubmatch(header)
	if name == nil {
		return nil, errorf(l.pos, "expected function name")
	}

	f := &Function{
		name:    strings.Trim(name[1], `"`),
		leading: p.takeLeading(),
		module:  p.m,
	}
	p.m.entities = append(p.m.entities, f)
	p.m.functions = append(p.m.functions, f)
	p.m.globals = append(p.m.globals, f)
	return f, nil
}

func (p *parser) parseDeclaration(l logical) error {
	code, comment := splitComment(strings.TrimSpace(l.text))
	rest := strings.TrimSpace(strings.TrimPrefix(code, "declare"))

	var atts []Attachment
	for {
		fields := topLevelFields(rest)
		if len(fields) < 3 {
			break
		}
		kind := rest[fields[0].start:fields[0].end]
		node := rest[fields[1].start:fields[1].end]
		if !attachKindRe.MatchString(kind) || !isNodeValue(node) {
			break
		}
		atts = append(atts, Attachment{Kind: kind[1:], Node: node})
		rest = rest[fields[2].start:]
	}

	f, err := p.newFunction(l, rest)
	if err != nil {
		return err
	}
	f.header = rest
	f.attachments = atts
	f.comment = comment
	f.declared = true
	f.pos = l.pos
	p.uses = append(p.uses, use{pos: l.pos, text: code})
	return nil
}

func (p *parser) parseDefinition(l logical) error {
	code, comment := splitComment(strings.TrimLeft(l.text, " \t"))
	if !strings.HasSuffix(code, "{") {
		return errorf(l.pos, "expected '{' at the end of function header")
	}

	header, atts := splitHeaderAttachments(strings.TrimRight(strings.TrimSuffix(code, "{"), " \t"))
	f, err := p.newFunction(l, header)
	if err != nil {
		return err
	}
	f.header = header
	f.attachments = atts
	f.comment = comment
	f.pos = l.pos
	p.uses = append(p.uses, use{pos: l.pos, text: code})

	return p.parseBody(f, l.pos)
}

func (p *parser) parseBody(f *Function, start Pos) error {
	var (
		block   *Block
		pending []string
	)

	for {
		l, ok := p.read()
		if !ok {
			return errorf(start, "function body is not terminated")
		}

		trimmed := strings.TrimSpace(l.text)
		code, _ := splitComment(trimmed)
		switch {
		case trimmed == "" || trimmed[0] == ';':
			pending = append(pending, l.text)

		case code == "}":
			f.trailing = pending
			return nil

		case labelRe.MatchString(code):
			block = &Block{
				label:   l.text,
				leading: pending,
				parent:  f,
			}
			f.blocks = append(f.blocks, block)
			pending = nil

		default:
			if block == nil {
				block = &Block{parent: f}
				f.blocks = append(f.blocks, block)
			}
			inst := p.parseInstruction(l)
			inst.leading = pending
			inst.parent = block
			block.instructions = append(block.instructions, inst)
			pending = nil
		}
	}
}

func (p *parser) parseInstruction(l logical) *Instruction {
	body := strings.TrimLeft(l.text, " \t")
	code, comment := splitComment(body)

	inst := &Instruction{
		indent:  l.text[:len(l.text)-len(body)],
		comment: comment,
		record:  strings.HasPrefix(code, "#dbg_"),
		module:  p.m,
		pos:     l.pos,
	}
	if inst.record {
		inst.text = code
	} else {
		inst.text, inst.attachments = splitTrailingAttachments(code)
		if commas := topLevelCommas(inst.text); len(commas) > 0 {
			last := strings.TrimSpace(inst.text[commas[len(commas)-1]+1:])
			if strings.HasPrefix(last, "!") {
				p.m.reporter.Phase(ReportParse).Report(l.pos, "malformed metadata attachment %q", last)
			}
		}
	}

	p.uses = append(p.uses, use{pos: l.pos, text: code})
	return inst
}

// --- Globals and metadata -------------------------------------------------------------------------------------------

func (p *parser) parseGlobal(l logical) {
	code, comment := splitComment(strings.TrimLeft(l.text, " \t"))
	text, atts := splitTrailingAttachments(code)

	var name string
	if m := globalNameRe.FindStringSubmatch(code); m != nil {
		name = strings.Trim(m[1], `"`)
	}

	g := &GlobalVar{
		name:        name,
		text:        text,
		attachments: atts,
		comment:     comment,
	}
	p.flush()
	p.m.entities = append(p.m.entities, g)
	p.m.globals = append(p.m.globals, g)
	p.uses = append(p.uses, use{pos: l.pos, text: code})
}

func (p *parser) parseMetadata(l logical, trimmed string) error {
	p.flush()

	if m := mdDefRe.FindStringSubmatch(trimmed); m != nil {
		return p.parseNode(l, m[1], m[2])
	}

	if m := namedMDRe.FindStringSubmatch(trimmed); m != nil {
		code, _ := splitComment(trimmed)
		p.m.entities = append(p.m.entities, namedNode{text: l.text})
		p.uses = append(p.uses, use{pos: l.pos, text: code})
		return nil
	}

	return errorf(l.pos, "expected metadata definition")
}

func (p *parser) parseNode(l logical, idText, body string) error {
	id, _ := nodeID("!" + idText)
	if _, ok := p.m.metadata[id]; ok {
		return errorf(l.pos, "redefinition of metadata '!%d'", id)
	}

	body, _ = splitComment(body)
	n := &MDNode{
		ID:     id,
		line:   l.text,
		module: p.m,
	}
	if rest, ok := strings.CutPrefix(body, "distinct "); ok {
		n.Distinct = true
		body = strings.TrimSpace(rest)
	}
	if m := mdKindRe.FindStringSubmatch(body); m != nil {
		n.Kind = m[1]
		n.fields = parseFields(body)
	}
	for _, ref := range scanNodeRefs(body) {
		n.refs = append(n.refs, ref.id)
	}

	p.m.metadata[id] = n
	p.m.entities = append(p.m.entities, n)

	code, _ := splitComment(strings.TrimLeft(l.text, " \t"))
	p.uses = append(p.uses, use{pos: l.pos, text: code})
	return nil
}

// --- Resolution -----------------------------------------------------------------------------------------------------

// resolve checks metadata references and debug attachment kinds.
func (p *parser) resolve() error {
	for _, u := range p.uses {
		for _, ref := range scanNodeRefs(u.text) {
			if _, ok := p.m.metadata[ref.id]; ok {
				continue
			}
			return errorf(offsetPos(u, ref.offset), "use of undefined metadata '!%d'", ref.id)
		}
	}

	rep := p.m.reporter.Phase(ReportResolve)
	for _, f := range p.m.functions {
		for _, a := range f.attachments {
			if a.Kind == "dbg" && f.module.subprogram(a.Node) == nil {
				rep.Report(f.pos, "function @%s has a !dbg attachment which is not a subprogram", f.name)
			}
		}

		for _, b := range f.blocks {
			for _, inst := range b.instructions {
				node, ok := inst.Metadata("dbg")
				if ok && p.m.location(node) == nil {
					rep.Report(inst.pos, "!dbg attachment %s is not a location", node)
				}
			}
		}
	}

	return nil
}

// offsetPos returns the position of a byte offset within a use. Use text
// starts at the use position.
func offsetPos(u use, offset int) Pos {
	pos := u.pos
	text := u.text[:offset]
	if k := strings.LastIndexByte(text, '\n'); k >= 0 {
		pos.Line += strings.Count(text, "\n")
		pos.Col = offset - k
		return pos
	}

	pos.Col += offset
	return pos
}
