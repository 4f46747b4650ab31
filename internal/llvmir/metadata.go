package llvmir

import (
	"strconv"
	"strings"
)

// maxScopeDepth bounds walks over scope and inlining links, malformed input
// may loop.
const maxScopeDepth = 1024

// MDNode is a numbered metadata definition.
type MDNode struct {
	// ID is the node number, 12 for "!12".
	ID int

	// Distinct is set for "distinct !..." definitions.
	Distinct bool

	// Kind is the specialized node kind, like "DILocation". It is empty
	// for tuples and other generic nodes.
	Kind string

	line   string
	fields map[string]string
	refs   []int
	module *Module
}

func (*MDNode) isEntity() {}

// Ref returns how the node is referenced in IR text: "!12".
func (n *MDNode) Ref() string {
	return "!" + strconv.Itoa(n.ID)
}

// Field returns the raw value of a specialized node field.
func (n *MDNode) Field(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.fields[name]
	return v, ok
}

// StringField returns the decoded value of a string field.
func (n *MDNode) StringField(name string) (string, bool) {
	v, ok := n.Field(name)
	if !ok {
		return "", false
	}
	return unquote(v)
}

// UintField returns the value of an unsigned integer field, zero when it is
// missing or is not a number.
func (n *MDNode) UintField(name string) uint {
	v, ok := n.Field(name)
	if !ok {
		return 0
	}
	res, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint(res)
}

// NodeField returns the node a field refers to, nil for missing fields,
// "null" and inline values.
func (n *MDNode) NodeField(name string) *MDNode {
	v, ok := n.Field(name)
	if !ok {
		return nil
	}
	id, ok := nodeID(v)
	if !ok {
		return nil
	}
	return n.module.metadata[id]
}

// References returns IDs of nodes this one refers to.
func (n *MDNode) References() []int {
	return n.refs
}

// parseFields extracts "key: value" pairs of a specialized node body like
// "!DILocation(line: 3, scope: !5)".
func parseFields(body string) map[string]string {
	open := strings.IndexByte(body, '(')
	closing := strings.LastIndexByte(body, ')')
	if open < 0 || closing < open {
		return nil
	}
	inner := body[open+1 : closing]

	fields := map[string]string{}
	prev := 0
	for _, c := range append(topLevelCommas(inner), len(inner)) {
		key, value, ok := strings.Cut(inner[prev:c], ":")
		prev = c + 1
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !isIdent(key) {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

// --- Debug info views -----------------------------------------------------------------------------------------------

// DILocation is a debug location: a source position within a scope,
// possibly inlined at another location.
type DILocation struct {
	node *MDNode
}

func (m *Module) location(ref string) *DILocation {
	id, ok := nodeID(ref)
	if !ok {
		return nil
	}
	return asLocation(m.metadata[id])
}

func asLocation(n *MDNode) *DILocation {
	if n == nil || n.Kind != "DILocation" {
		return nil
	}
	return &DILocation{node: n}
}

// Node returns the underlying metadata node.
func (l *DILocation) Node() *MDNode {
	return l.node
}

// Line returns the source line, zero when unknown.
func (l *DILocation) Line() uint {
	return l.node.UintField("line")
}

// Column returns the source column, zero when unknown.
func (l *DILocation) Column() uint {
	return l.node.UintField("column")
}

// Scope returns the lexical scope of the location.
func (l *DILocation) Scope() *MDNode {
	return l.node.NodeField("scope")
}

// InlinedAt returns the location of the call site this location was
// inlined into, nil for code that was not inlined.
func (l *DILocation) InlinedAt() *DILocation {
	return asLocation(l.node.NodeField("inlinedAt"))
}

// Filename returns the file name of the location's scope.
func (l *DILocation) Filename() string {
	return ScopeFilename(l.Scope())
}

// FunctionName returns the name of the nearest named enclosing scope,
// lexical blocks are skipped.
func (l *DILocation) FunctionName() string {
	return ScopeName(l.Scope())
}

// DISubprogram describes a function for a debugger.
type DISubprogram struct {
	node *MDNode
}

func (m *Module) subprogram(ref string) *DISubprogram {
	id, ok := nodeID(ref)
	if !ok {
		return nil
	}
	n := m.metadata[id]
	if n == nil || n.Kind != "DISubprogram" {
		return nil
	}
	return &DISubprogram{node: n}
}

// Node returns the underlying metadata node.
func (s *DISubprogram) Node() *MDNode {
	return s.node
}

// Name returns the source-level function name.
func (s *DISubprogram) Name() string {
	name, _ := s.node.StringField("name")
	return name
}

// Filename returns the name of the file the function is declared in.
func (s *DISubprogram) Filename() string {
	return ScopeFilename(s.node)
}

// Line returns the declaration line, zero when unknown.
func (s *DISubprogram) Line() uint {
	return s.node.UintField("line")
}

// ScopeName returns the name of scope or of its nearest named parent.
func ScopeName(scope *MDNode) string {
	for i := 0; scope != nil && i < maxScopeDepth; i++ {
		if scope.Kind != "DIFile" {
			if name, ok := scope.StringField("name"); ok {
				return name
			}
		}
		scope = scope.NodeField("scope")
	}
	return ""
}

// ScopeFilename returns the file name of a scope. File nodes are scopes of
// their own.
func ScopeFilename(scope *MDNode) string {
	if scope == nil {
		return ""
	}

	file := scope
	if scope.Kind != "DIFile" {
		file = scope.NodeField("file")
	}
	name, _ := file.StringField("filename")
	return name
}
