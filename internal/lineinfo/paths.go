package lineinfo

import (
	"os"
	"path/filepath"
	"strings"
)

// PathResolver shortens source paths for display.
type PathResolver struct {
	root string
}

// NewPathResolver is [PathResolver] constructor. The root is the default
// search root paths are shortened against, empty means none.
func NewPathResolver(root string) *PathResolver {
	return &PathResolver{root: root}
}

// Resolve returns the shortest display form of path against the resolver's
// root. Without a root the path is returned unchanged.
func (r *PathResolver) Resolve(path string) string {
	if r == nil || r.root == "" {
		return path
	}

	return ResolveWithin(path, r.root)
}

// ResolveWithin returns the shortest of these candidates:
//
//   - path itself;
//   - path relative to root, when path lies under root;
//   - the canonical form of path;
//   - the canonical form of path relative to the canonical root.
//
// Candidates that cannot be computed are skipped. On equal lengths the
// earlier candidate wins.
func ResolveWithin(path, root string) string {
	candidates := []string{path}

	if rel, ok := trimRoot(path, root); ok {
		candidates = append(candidates, rel)
	}

	if realPath, err := canonical(path); err == nil {
		candidates = append(candidates, realPath)

		if realRoot, err := canonical(root); err == nil {
			if rel, ok := trimRoot(realPath, realRoot); ok {
				candidates = append(candidates, rel)
			}
		}
	}

	return shortest(candidates)
}

func trimRoot(path, root string) (string, bool) {
	if root == "" || !strings.HasPrefix(path, root) {
		return "", false
	}

	rest := path[len(root):]
	if !os.IsPathSeparator(root[len(root)-1]) {
		if rest == "" || !os.IsPathSeparator(rest[0]) {
			return "", false
		}
		rest = rest[1:]
	}

	if rest == "" {
		return "", false
	}

	return rest, true
}

func canonical(path string) (string, error) {
	if path == "" {
		return "", os.ErrNotExist
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}

	return filepath.Abs(resolved)
}

func shortest(candidates []string) string {
	res := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(res) {
			res = c
		}
	}

	return res
}
