package strip

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/maleadt/IRViewer/internal/llvmir"
)

const module = `@counter = global i32 0, !dbg !0

define void @f(ptr %p) !dbg !3 {
entry:
  call void @llvm.dbg.value(metadata ptr %p, metadata !6, metadata !DIExpression()), !dbg !7
  store i32 1, ptr %p, align 4, !dbg !7, !tbaa !8, !nontemporal !9
  ret void
}

declare void @llvm.dbg.value(metadata, metadata, metadata)

!llvm.dbg.cu = !{!2}

!0 = !DIGlobalVariableExpression(var: !1, expr: !DIExpression())
!1 = distinct !DIGlobalVariable(name: "counter", scope: !2, file: !4)
!2 = distinct !DICompileUnit(language: DW_LANG_C99, file: !4)
!3 = distinct !DISubprogram(name: "f", scope: !4, file: !4, line: 2, unit: !2)
!4 = !DIFile(filename: "f.c", directory: "/src")
!6 = !DILocalVariable(name: "p", scope: !3, file: !4, line: 2)
!7 = !DILocation(line: 3, column: 5, scope: !3)
!8 = !{!"int"}
!9 = !{i32 1}
`

func TestRun(t *testing.T) {
	m, err := llvmir.Parse("f.ll", []byte(module))
	require.NoError(t, err)

	f := m.Functions()[0]
	insts := f.Blocks()[0].Instructions()
	store, ret := insts[1], insts[2]
	before := store.DebugLoc()
	require.NotNil(t, before)

	archive, stats := Run(m, testr.New(t))

	require.Equal(t, Stats{
		Functions:   2,
		Markers:     1,
		Attachments: 2,
		Locations:   1,
		Globals:     2,
	}, stats)

	insts = f.Blocks()[0].Instructions()
	require.Equal(t, []*llvmir.Instruction{store, ret}, insts)
	for _, inst := range insts {
		require.Empty(t, inst.Attachments(), inst.String())
		require.Nil(t, inst.DebugLoc())
	}

	require.Contains(t, archive.Locations, store)
	require.Same(t, before.Node(), archive.Location(store).Node())
	require.Equal(t, uint(3), archive.Location(store).Line())

	require.Contains(t, archive.Locations, ret)
	require.Nil(t, archive.Location(ret))

	require.Len(t, archive.Subprograms, 1)
	require.Equal(t, "f", archive.Subprogram(f).Name())
	require.Nil(t, archive.Subprogram(m.Functions()[1]))

	for _, g := range m.GlobalObjects() {
		require.Empty(t, g.Attachments(), g.Name())
	}
	require.Nil(t, f.Subprogram())
}

func TestRunWithoutDebugInfo(t *testing.T) {
	m, err := llvmir.Parse("plain.ll", []byte("define i32 @id(i32 %x) {\n  ret i32 %x\n}\n"))
	require.NoError(t, err)

	archive, stats := Run(m, logr.Discard())
	require.Equal(t, Stats{Functions: 1}, stats)
	require.Len(t, archive.Locations, 1)
	require.Empty(t, archive.Subprograms)
}

func TestNilArchive(t *testing.T) {
	var a *Archive
	require.Nil(t, a.Location(nil))
	require.Nil(t, a.Subprogram(nil))
}
