package main

import (
	"bytes"
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirkon/deepequal"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

//go:embed testdata
var cliTestCases embed.FS

// unpack writes archive files except input.ll and want into dir.
func unpack(t *testing.T, dir string, archive *txtar.Archive) (input, want []byte) {
	t.Helper()

	for _, f := range archive.Files {
		switch f.Name {
		case "input.ll":
			input = bytes.ReplaceAll(f.Data, []byte("$WORK"), []byte(dir))
		case "want":
			want = f.Data
		default:
			name := filepath.Join(dir, filepath.FromSlash(f.Name))
			require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
			require.NoError(t, os.WriteFile(name, f.Data, 0o644))
		}
	}

	return input, want
}

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestIRViewer(t *testing.T) {
	files, err := cliTestCases.ReadDir("testdata/cases")
	if err != nil {
		t.Fatal("list test cases:", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "case_") {
			continue
		}

		t.Run(strings.TrimSuffix(file.Name(), ".txtar"), func(t *testing.T) {
			data, err := cliTestCases.ReadFile(path.Join("testdata/cases", file.Name()))
			if err != nil {
				t.Fatalf("read file %s: %s", file.Name(), err)
			}

			dir := t.TempDir()
			input, want := unpack(t, dir, txtar.Parse(data))
			inputPath := filepath.Join(dir, "input.ll")
			require.NoError(t, os.WriteFile(inputPath, input, 0o644))

			env := envOf(map[string]string{
				"JULIA_LOAD_PATH": dir,
				"JULIA_BASE_DIR":  filepath.Join(dir, "lib"),
			})

			var stdout, stderr bytes.Buffer
			code := run([]string{inputPath, "-"}, &stdout, &stderr, env)
			require.Equal(t, 0, code, stderr.String())
			require.Empty(t, stderr.String())

			if got := stdout.String(); got != string(want) {
				deepequal.SideBySide(t, "output", strings.Split(string(want), "\n"), strings.Split(got, "\n"))
				t.FailNow()
			}
		})
	}
}

func TestRunWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.ll")
	output := filepath.Join(dir, "out.ll")
	require.NoError(t, os.WriteFile(input, []byte("define void @f() {\n  ret void\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("stale content which is longer than the module\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{input, output}, &stdout, &stderr, envOf(nil)), stderr.String())
	require.Empty(t, stdout.String())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "define void @f() {\n  ret void\n}\n", string(got))
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "no arguments",
		},
		{
			name: "one argument",
			args: []string{"in.ll"},
		},
		{
			name: "three arguments",
			args: []string{"in.ll", "out.ll", "extra"},
		},
		{
			name: "unknown flag",
			args: []string{"--colour", "in.ll", "-"},
		},
		{
			name: "short help",
			args: []string{"-h"},
		},
		{
			name: "long help with arguments",
			args: []string{"--help", "in.ll", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.Equal(t, 1, run(tt.args, &stdout, &stderr, envOf(nil)))
			require.Empty(t, stdout.String())
			require.Contains(t, stderr.String(), "Usage:")
			require.Contains(t, stderr.String(), "irviewer INPUT OUTPUT")
		})
	}
}

func TestRunParseError(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.ll")
	output := filepath.Join(dir, "out.ll")
	require.NoError(t, os.WriteFile(input, []byte("source_filename = \"x\"\nnonsense\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 1, run([]string{input, output}, &stdout, &stderr, envOf(nil)))
	require.Equal(t, "irviewer: "+input+":2:1: error: expected top-level entity\n", stderr.String())

	_, err := os.Stat(output)
	require.True(t, os.IsNotExist(err), "no output must be produced")
}

func TestRunMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.ll"), "-"}, &stdout, &stderr, envOf(nil))
	require.Equal(t, 1, code)
	require.True(t, strings.HasPrefix(stderr.String(), "irviewer: read module: "), stderr.String())
}

func TestRunConfigAndVerbose(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "irviewer.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("markers: ascii\nsource_column: 10\n"), 0o644))

	const module = `define void @f() !dbg !1 {
  ret void, !dbg !2
}
!0 = !DIFile(filename: "f.c", directory: "")
!1 = distinct !DISubprogram(name: "f", file: !0, line: 1)
!2 = !DILocation(line: 2, scope: !1)
`
	input := filepath.Join(dir, "f.ll")
	require.NoError(t, os.WriteFile(input, []byte(module), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", "--config", cfg, input, "-"}, &stdout, &stderr, envOf(nil))
	require.Equal(t, 0, code, stderr.String())

	require.Equal(t, "/ ; f at f.c:1\ndefine void @f() {\n+ ; f.c:2\n|   ret void\n}\n", stdout.String())
	require.Contains(t, stderr.String(), "config loaded")
	require.Contains(t, stderr.String(), "module parsed")
	require.Contains(t, stderr.String(), "debug info stripped")
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "irviewer.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("source_column: -1\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", cfg, "in.ll", "-"}, &stdout, &stderr, envOf(nil))
	require.Equal(t, 1, code)
	require.Equal(t, "irviewer: validate config: source column must be positive, got -1\n", stderr.String())
}
