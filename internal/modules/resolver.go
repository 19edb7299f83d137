package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/atlas-lang/atlas/internal/diag"
)

// sourceExt is the canonical Atlas source file extension.
const sourceExt = ".atl"

// Resolver turns an import specifier (`"./math"`, `"../lib/util"`,
// `"/lib/util"`) into a canonical absolute path, probing the bare path,
// the path with `.atl` appended, and `path/index.atl` in that order.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at the project root directory,
// used to resolve specifiers that start with "/".
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Resolver{root: abs}, nil
}

// Resolve resolves specifier, which appeared inside fromPath, to a
// canonical absolute path. fromSpan is attached to the AT5002 diagnostic
// raised when no candidate file exists.
func (r *Resolver) Resolve(specifier, fromPath string, fromSpan diag.Span) (string, *diag.Diagnostic) {
	var base string
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		base = filepath.Join(filepath.Dir(fromPath), specifier)
	case strings.HasPrefix(specifier, "/"):
		base = filepath.Join(r.root, strings.TrimPrefix(specifier, "/"))
	default:
		// Bare specifiers resolve the same as a relative import, per the
		// original's path resolver (no separate package-lookup path).
		base = filepath.Join(filepath.Dir(fromPath), specifier)
	}
	base = filepath.Clean(base)

	for _, candidate := range candidates(base) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	d := diag.New(diag.ErrModuleNotFound, fromSpan, "Module not found: %q", specifier).
		WithLabel(fromSpan, "no such module").
		WithHelp("checked %s, %s and %s", base, base+sourceExt, filepath.Join(base, "index"+sourceExt))
	return "", d
}

// candidates returns the probe order for a resolved base path: the bare
// path (for specifiers that already name a file, e.g. "./lib.atl"), the
// path with the source extension appended, then the directory's index file.
func candidates(base string) []string {
	out := []string{base}
	if !strings.HasSuffix(base, sourceExt) {
		out = append(out, base+sourceExt)
	}
	out = append(out, filepath.Join(base, "index"+sourceExt))
	return out
}
