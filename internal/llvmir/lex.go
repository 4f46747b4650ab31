package llvmir

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	labelRe      = regexp.MustCompile(`^(?:[-a-zA-Z$._0-9]+|"[^"]*"):$`)
	attachmentRe = regexp.MustCompile(`^!([A-Za-z._][-A-Za-z0-9._]*)\s+(!\S.*)$`)
	attachKindRe = regexp.MustCompile(`^![A-Za-z._][-A-Za-z0-9._]*$`)
	globalNameRe = regexp.MustCompile(`@("(?:[^"\\]|\\.)*"|[-a-zA-Z$._0-9]+)`)
	mdDefRe      = regexp.MustCompile(`(?s)^!(\d+)\s*=\s*(.*)$`)
	namedMDRe    = regexp.MustCompile(`(?s)^!([-a-zA-Z$._][-a-zA-Z$._0-9]*)\s*=\s*(.*)$`)
	mdKindRe     = regexp.MustCompile(`^!([A-Za-z][A-Za-z0-9]*)\(`)

	debugCallRe   = regexp.MustCompile(`^(?:(?:tail|musttail|notail)\s+)?call\b[^@]*@llvm\.dbg\.(?:declare|value|assign)\(`)
	debugRecordRe = regexp.MustCompile(`^#dbg_(?:declare|value|assign)\(`)
)

// skipString returns the offset right after the string literal opening at i.
// Unterminated literals run to the end of s.
func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// splitComment splits a line into its code and the trailing comment. The
// comment keeps the whitespace in front of the ';'.
func splitComment(s string) (code, comment string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipString(s, i) - 1
		case ';':
			code = strings.TrimRight(s[:i], " \t")
			return code, s[len(code):]
		}
	}
	return s, ""
}

// balance returns how many round and square brackets the line leaves open.
func balance(s string) int {
	code, _ := splitComment(s)

	var depth int
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '"':
			i = skipString(code, i) - 1
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
	}
	return depth
}

// topLevelCommas returns offsets of commas not nested in brackets or strings.
func topLevelCommas(s string) []int {
	var (
		res   []int
		depth int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipString(s, i) - 1
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				res = append(res, i)
			}
		}
	}
	return res
}

type span struct {
	start int
	end   int
}

// topLevelFields splits s on whitespace not nested in brackets or strings.
func topLevelFields(s string) []span {
	var (
		res   []span
		depth int
		start = -1
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			if depth == 0 && start >= 0 {
				res = append(res, span{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}

		switch c {
		case '"':
			i = skipString(s, i) - 1
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		}
	}
	if start >= 0 {
		res = append(res, span{start: start, end: len(s)})
	}
	return res
}

// splitTrailingAttachments cuts ", !kind !node" items off the end of an
// instruction or global variable.
func splitTrailingAttachments(code string) (string, []Attachment) {
	var atts []Attachment

	end := len(code)
	commas := topLevelCommas(code)
	for k := len(commas) - 1; k >= 0; k-- {
		m := attachmentRe.FindStringSubmatch(strings.TrimSpace(code[commas[k]+1 : end]))
		if m == nil {
			break
		}
		atts = append(atts, Attachment{Kind: m[1], Node: strings.TrimSpace(m[2])})
		end = commas[k]
	}

	slices.Reverse(atts)
	return strings.TrimRight(code[:end], " \t"), atts
}

// splitHeaderAttachments cuts "!kind !node" pairs off the end of a function
// header.
func splitHeaderAttachments(code string) (string, []Attachment) {
	var atts []Attachment

	fields := topLevelFields(code)
	end := len(code)
	for k := len(fields); k >= 2; k -= 2 {
		kind := code[fields[k-2].start:fields[k-2].end]
		node := code[fields[k-1].start:fields[k-1].end]
		if !attachKindRe.MatchString(kind) || !isNodeValue(node) {
			break
		}
		atts = append(atts, Attachment{Kind: kind[1:], Node: node})
		end = fields[k-2].start
	}

	slices.Reverse(atts)
	return strings.TrimRight(code[:end], " \t"), atts
}

// isNodeValue tells if s is a metadata value: a node reference, an inline
// tuple or a metadata string.
func isNodeValue(s string) bool {
	if len(s) < 2 || s[0] != '!' {
		return false
	}
	c := s[1]
	return c == '{' || c == '"' || (c >= '0' && c <= '9')
}

// nodeID returns the ID of a plain "!N" reference.
func nodeID(s string) (int, bool) {
	if len(s) < 2 || s[0] != '!' {
		return 0, false
	}
	id, err := strconv.Atoi(s[1:])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// nodeRef is a "!N" occurrence in some text.
type nodeRef struct {
	id     int
	offset int
}

// scanNodeRefs finds all "!N" references outside string literals.
func scanNodeRefs(s string) []nodeRef {
	var res []nodeRef
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipString(s, i) - 1
		case '!':
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j == i+1 {
				continue
			}
			if id, err := strconv.Atoi(s[i+1 : j]); err == nil {
				res = append(res, nodeRef{id: id, offset: i})
			}
			i = j - 1
		}
	}
	return res
}

// unquote decodes an LLVM string literal: backslash followed by two hex
// digits or by another backslash.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s, true
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\\' {
			b.WriteByte('\\')
			i++
			continue
		}
		if i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte('\\')
	}
	return b.String(), true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
