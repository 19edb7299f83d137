package modules

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/lexer"
	"github.com/atlas-lang/atlas/internal/parser"
)

// Loader loads a module file and every module it (transitively) imports,
// then returns them in dependency-first order. It caches every module it
// loads by canonical path, so re-importing the same path — directly or
// through a diamond dependency — returns the cached Module exactly once.
type Loader struct {
	resolver *Resolver

	cache   map[string]*Module
	deps    map[string][]string
	loading map[string]bool
	// order records the sequence in which paths were first discovered,
	// so the topological sort's zero-in-degree queue is seeded in a
	// deterministic, source-import order instead of Go's randomized map
	// iteration order.
	order []string

	group singleflight.Group
}

// NewLoader creates a Loader rooted at the given project root, used to
// resolve "/"-prefixed absolute import specifiers.
func NewLoader(root string) (*Loader, error) {
	r, err := NewResolver(root)
	if err != nil {
		return nil, err
	}
	return &Loader{
		resolver: r,
		cache:    make(map[string]*Module),
		deps:     make(map[string][]string),
		loading:  make(map[string]bool),
	}, nil
}

// Load loads entryPoint and every module it transitively imports, and
// returns them in the order they must be initialized (dependencies
// before dependents). Concurrent calls for the same entry point are
// coalesced: only one actually walks the graph, and all callers observe
// its result.
func (l *Loader) Load(entryPoint string) ([]*Module, error) {
	abs, err := filepath.Abs(entryPoint)
	if err != nil {
		return nil, err
	}
	v, err, _ := l.group.Do(abs, func() (interface{}, error) {
		if err := l.loadRecursive(abs); err != nil {
			return nil, err
		}
		ordered, err := l.topologicalSort(abs)
		if err != nil {
			return nil, err
		}
		modules := make([]*Module, len(ordered))
		for i, path := range ordered {
			mod, ok := l.cache[path]
			if !ok {
				return nil, fmt.Errorf("modules: %s missing from cache after load", path)
			}
			modules[i] = mod
		}
		return modules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Module), nil
}

// GetModule returns a previously loaded module from cache, if any.
func (l *Loader) GetModule(path string) (*Module, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	m, ok := l.cache[abs]
	return m, ok
}

func (l *Loader) loadRecursive(absPath string) error {
	if _, ok := l.cache[absPath]; ok {
		return nil
	}
	if l.loading[absPath] {
		span := diag.Dummy
		return newDiagErr(diag.New(diag.ErrModuleCycle, span, "Circular dependency detected").
			WithLabel(span, "module: %s", absPath).
			WithHelp("refactor to remove circular dependencies between modules"))
	}

	l.order = append(l.order, absPath)
	l.loading[absPath] = true
	defer delete(l.loading, absPath)

	mod, err := l.loadAndParse(absPath)
	if err != nil {
		return err
	}

	var depPaths []string
	seen := make(map[string]bool)
	for _, imp := range mod.Imports {
		depPath, d := l.resolver.Resolve(imp.Path, absPath, imp.Sp)
		if d != nil {
			return newDiagErr(d)
		}
		if seen[depPath] {
			continue
		}
		seen[depPath] = true
		depPaths = append(depPaths, depPath)
		if err := l.loadRecursive(depPath); err != nil {
			return err
		}
	}

	l.deps[absPath] = depPaths
	l.cache[absPath] = mod
	return nil
}

func (l *Loader) loadAndParse(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		span := diag.Dummy
		return nil, newDiagErr(diag.New(diag.ErrModuleNotFound, span, "Failed to read module file: %s", err).
			WithLabel(span, "path: %s", path).
			WithHelp("ensure the file exists and you have read permissions"))
	}
	source := string(data)

	toks, lexDiags := lexer.New(source).Tokenize()
	if lexDiags.HasErrors() {
		return nil, newDiagErr(lexDiags...)
	}

	p := parser.New(toks)
	prog := p.ParseProgram()
	prog.File = path
	if p.Diagnostics().HasErrors() {
		return nil, newDiagErr(p.Diagnostics()...)
	}

	return &Module{
		Path:    path,
		Source:  source,
		AST:     prog,
		Exports: extractExports(prog),
		Imports: extractImports(prog),
	}, nil
}

// topologicalSort performs Kahn's algorithm over the subgraph reachable
// from entry, restricted to exactly that subgraph so unrelated modules
// left over from a previous Load call on this Loader never leak in.
func (l *Loader) topologicalSort(entry string) ([]string, error) {
	reachable := l.findReachable(entry)

	inDegree := make(map[string]int, len(reachable))
	for node := range reachable {
		inDegree[node] = 0
	}
	for from := range reachable {
		for _, dep := range l.deps[from] {
			if reachable[dep] {
				inDegree[from]++
			}
		}
	}

	var queue []string
	for _, node := range l.order {
		if !reachable[node] {
			continue
		}
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, from := range l.order {
			if !reachable[from] {
				continue
			}
			for _, dep := range l.deps[from] {
				if dep != node {
					continue
				}
				inDegree[from]--
				if inDegree[from] == 0 {
					queue = append(queue, from)
				}
			}
		}
	}

	if len(sorted) != len(reachable) {
		span := diag.Dummy
		return nil, newDiagErr(diag.New(diag.ErrModuleCycle, span, "Circular dependency detected during topological sort").
			WithHelp("refactor your modules to remove circular imports - modules cannot import each other in a cycle"))
	}
	return sorted, nil
}

func (l *Loader) findReachable(entry string) map[string]bool {
	reachable := make(map[string]bool)
	stack := []string{entry}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[node] {
			continue
		}
		reachable[node] = true
		stack = append(stack, l.deps[node]...)
	}
	return reachable
}

// diagErr adapts a diag.List to the error interface so the loader's
// internal recursion can return ordinary Go errors while still letting
// callers recover the structured diagnostics with errors.As.
type diagErr struct {
	diags diag.List
}

func newDiagErr(ds ...*diag.Diagnostic) *diagErr { return &diagErr{diags: ds} }

func (e *diagErr) Error() string {
	if len(e.diags) == 0 {
		return "module error"
	}
	return e.diags[0].Error()
}

// Diagnostics returns the underlying diagnostic list.
func (e *diagErr) Diagnostics() diag.List { return e.diags }
