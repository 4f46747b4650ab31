package lineinfo

import (
	"strings"
)

// Repeat returns pattern concatenated n times. The result is built by doubling
// an accumulator, so deep indentation costs a logarithmic number of copies.
func Repeat(pattern string, n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1 || pattern == "":
		return pattern
	}

	total := len(pattern) * n

	var b strings.Builder
	b.Grow(total)
	b.WriteString(pattern)
	for b.Len()*2 <= total {
		b.WriteString(b.String())
	}
	b.WriteString(b.String()[:total-b.Len()])

	return b.String()
}
