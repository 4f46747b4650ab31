// Package lineinfo renders inlining context of IR instructions as nested
// comment blocks.
//
// Every instruction of an optimized module may carry a chain of frames: the
// source position of the instruction itself and, for inlined code, the call
// sites it was inlined through, up to the function being printed. Printing
// the whole chain for every instruction buries the IR, so [Printer] keeps the
// context it already displayed and writes only the difference:
//
//	┌ ; outer at src/outer.c:10                 int y = inner(x);
//	│ ┌ ; inner at src/inner.c:3                return a * 2;
//	│ │   %1 = shl i32 %0, 1
//	│ ├ ; src/inner.c:4                         return a + 1;
//	│ │   %2 = add i32 %1, 1
//
// Headers (┌) open a frame at some depth, continuations (├) report a new
// line inside a frame that stays open. Paths are shortened with
// [PathResolver] and, when the source file is reachable, the referenced line
// is appended at a fixed column with [SourceReader].
//
// None of the helpers here fail: an unreadable source file or a path that
// cannot be canonicalized just means less decoration.
package lineinfo
