package lineinfo

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SourceReader fetches single lines of source files.
type SourceReader struct {
	baseDir string
}

// NewSourceReader is [SourceReader] constructor. baseDir is where paths are
// looked up when they cannot be opened as they are, empty disables the
// fallback.
func NewSourceReader(baseDir string) *SourceReader {
	return &SourceReader{baseDir: baseDir}
}

// ReadLine returns the raw text of the given 1-based line without its line
// terminator. An empty string means the line is not available.
func (r *SourceReader) ReadLine(path string, line uint) string {
	if r == nil || line == 0 {
		return ""
	}

	file, err := os.Open(path)
	if err != nil {
		if r.baseDir == "" {
			return ""
		}

		file, err = os.Open(filepath.Join(r.baseDir, path))
		if err != nil {
			return ""
		}
	}
	defer file.Close()

	rd := bufio.NewReader(file)
	for i := uint(1); ; i++ {
		text, err := rd.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			return ""
		}

		if i == line {
			return strings.TrimSuffix(text, "\n")
		}

		if err == io.EOF {
			return ""
		}
	}
}

// TrimLeft removes leading whitespace of the "C" locale.
func TrimLeft(s string) string {
	return strings.TrimLeft(s, " \t\n\v\f\r")
}
