package lineinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveWithin(t *testing.T) {
	tests := []struct {
		name string
		path string
		root string
		want string
	}{
		{
			name: "under root",
			path: "/no/such/root/base/array.jl",
			root: "/no/such/root",
			want: "base/array.jl",
		},
		{
			name: "root with trailing separator",
			path: "/no/such/root/base/array.jl",
			root: "/no/such/root/",
			want: "base/array.jl",
		},
		{
			name: "sibling sharing a prefix",
			path: "/no/such/rootless/array.jl",
			root: "/no/such/root",
			want: "/no/such/rootless/array.jl",
		},
		{
			name: "outside of root",
			path: "/elsewhere/array.jl",
			root: "/no/such/root",
			want: "/elsewhere/array.jl",
		},
		{
			name: "path equal to root",
			path: "/no/such/root",
			root: "/no/such/root",
			want: "/no/such/root",
		},
		{
			name: "relative path",
			path: "array.jl",
			root: "/no/such/root",
			want: "array.jl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveWithin(tt.path, tt.root))
		})
	}
}

func TestResolveWithinSymlinks(t *testing.T) {
	dir := t.TempDir()
	realRoot := filepath.Join(dir, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(realRoot, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(realRoot, "src", "kernel.c"), []byte("int x;\n"), 0o644))

	link := filepath.Join(dir, "link")
	if err := os.Symlink(realRoot, link); err != nil {
		t.Skipf("symlinks are not supported: %v", err)
	}

	// The path goes through the link, the root does not: only the canonical
	// forms share a prefix.
	got := ResolveWithin(filepath.Join(link, "src", "kernel.c"), realRoot)
	require.Equal(t, filepath.Join("src", "kernel.c"), got)
}

func TestPathResolverWithoutRoot(t *testing.T) {
	var nilResolver *PathResolver
	require.Equal(t, "/a/b/c.c", nilResolver.Resolve("/a/b/c.c"))
	require.Equal(t, "/a/b/c.c", NewPathResolver("").Resolve("/a/b/c.c"))
	require.Equal(t, "c.c", NewPathResolver("/a/b").Resolve("/a/b/c.c"))
}

func TestShortestKeepsFirstOnTie(t *testing.T) {
	require.Equal(t, "ab", shortest([]string{"ab", "cd", "abc"}))
	require.Equal(t, "x", shortest([]string{"ab", "x", "y"}))
}
