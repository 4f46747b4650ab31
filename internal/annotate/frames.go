package annotate

import (
	"github.com/maleadt/IRViewer/internal/lineinfo"
	"github.com/maleadt/IRViewer/internal/llvmir"
)

// maxInlineDepth bounds inlinedAt walks, a cyclic chain in malformed input
// would never end otherwise.
const maxInlineDepth = 4096

// Frames builds the frame chain of a location by walking its inlinedAt
// links. The location itself comes first.
func Frames(loc *llvmir.DILocation) lineinfo.Chain {
	var chain lineinfo.Chain
	for ; loc != nil && len(chain) < maxInlineDepth; loc = loc.InlinedAt() {
		chain = append(chain, lineinfo.Frame{
			Function: loc.FunctionName(),
			File:     loc.Filename(),
			Line:     lineinfo.Line(loc.Line()),
		})
	}
	return chain
}

// SubprogramFrame returns a single frame chain pointing at the function
// declaration.
func SubprogramFrame(sp *llvmir.DISubprogram) lineinfo.Chain {
	return lineinfo.Chain{{
		Function: sp.Name(),
		File:     sp.Filename(),
		Line:     lineinfo.Line(sp.Line()),
	}}
}
