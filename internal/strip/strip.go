// Package strip removes debug information from a module while archiving
// what is still needed to annotate it.
package strip

import (
	"github.com/go-logr/logr"

	"github.com/maleadt/IRViewer/internal/llvmir"
)

// Archive keeps debug info taken off a module.
type Archive struct {
	// Locations maps instructions to the debug locations they had. Every
	// instruction that survived stripping has an entry, nil stands for
	// "no location".
	Locations map[*llvmir.Instruction]*llvmir.DILocation

	// Subprograms maps functions to their debug descriptors.
	Subprograms map[*llvmir.Function]*llvmir.DISubprogram
}

// NewArchive is [Archive] constructor.
func NewArchive() *Archive {
	return &Archive{
		Locations:   map[*llvmir.Instruction]*llvmir.DILocation{},
		Subprograms: map[*llvmir.Function]*llvmir.DISubprogram{},
	}
}

// Location returns the archived location of an instruction.
func (a *Archive) Location(inst *llvmir.Instruction) *llvmir.DILocation {
	if a == nil {
		return nil
	}
	return a.Locations[inst]
}

// Subprogram returns the archived descriptor of a function.
func (a *Archive) Subprogram(f *llvmir.Function) *llvmir.DISubprogram {
	if a == nil {
		return nil
	}
	return a.Subprograms[f]
}

// Stats counts what a run has done.
type Stats struct {
	Functions   int
	Markers     int
	Attachments int
	Locations   int
	Globals     int
}

// Run strips all metadata attachments and debug markers off the module.
//
// Locations of instructions and subprograms of functions are archived first.
// Markers are collected per block and erased after the block was walked.
func Run(m *llvmir.Module, log logr.Logger) (*Archive, Stats) {
	archive := NewArchive()

	var stats Stats
	for _, f := range m.Functions() {
		if sp := f.Subprogram(); sp != nil {
			archive.Subprograms[f] = sp
		}
		stats.Functions++

		for _, b := range f.Blocks() {
			var markers []*llvmir.Instruction
			for _, inst := range b.Instructions() {
				if inst.IsDebugMarker() {
					markers = append(markers, inst)
					continue
				}

				for _, a := range inst.MetadataOtherThanDebugLoc() {
					inst.SetMetadata(a.Kind, "")
					stats.Attachments++
				}

				loc := inst.DebugLoc()
				archive.Locations[inst] = loc
				if loc != nil {
					stats.Locations++
				}
				inst.SetDebugLoc(nil)
			}

			b.Erase(markers...)
			stats.Markers += len(markers)
		}

		log.V(2).Info("function stripped", "function", f.Name(), "blocks", len(f.Blocks()))
	}

	for _, g := range m.GlobalObjects() {
		if len(g.Attachments()) == 0 {
			continue
		}
		g.ClearMetadata()
		stats.Globals++
	}

	log.V(1).Info(
		"debug info stripped",
		"functions", stats.Functions,
		"markers", stats.Markers,
		"attachments", stats.Attachments,
		"locations", stats.Locations,
		"globals", stats.Globals,
	)
	return archive, stats
}
