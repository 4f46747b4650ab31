// Package llvmir is a lightweight model of textual LLVM IR modules.
//
// It understands as much of the .ll syntax as annotating and stripping debug
// info requires and keeps everything else as opaque text:
//
//   - Module is an ordered list of top-level entities. Source filename,
//     target triples, type definitions, attribute groups, comments and blank
//     lines are kept verbatim.
//   - Global variables and functions are global objects carrying metadata
//     attachments ("!dbg !12").
//   - Functions are split into blocks and instructions. An instruction is
//     its text plus trailing metadata attachments.
//   - Metadata definitions ("!12 = !DILocation(...)") are indexed by their
//     IDs, specialized nodes have their fields parsed so debug locations,
//     scopes and subprograms can be resolved.
//
// The package does not check types, values or any other IR semantics. Print
// writes a module back, calling an AnnotationWriter at function entry, in
// front of every instruction and at the end of every block. Metadata nodes
// nothing refers to anymore are dropped from the output, like the LLVM printer
// does.
package llvmir
