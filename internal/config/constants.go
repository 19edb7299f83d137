// Package config carries build metadata and shared name constants used
// across the CLI, diagnostics renderer, and prelude — the same role
// funxy's internal/config plays for its own source extensions and
// builtin names.
package config

// Version is the current Atlas version. Set at build time via
// -ldflags "-X github.com/atlas-lang/atlas/internal/config.Version=...".
var Version = "0.1.0"

// SourceFileExt is Atlas's recognized source file extension.
const SourceFileExt = ".atl"

// BytecodeFileExt is the compiled-bundle extension produced by `atlas
// compile` and consumed by `atlas exec`.
const BytecodeFileExt = ".atb"

// CompileCacheFile names the SQLite-backed bytecode cache `atlas
// compile` keeps next to a project's entry file, keyed by content hash,
// so recompiling an unchanged source file is a cache hit instead of a
// full lex/parse/bind/check/compile pass.
const CompileCacheFile = ".atlas-cache.sqlite"

// HasSourceExt reports whether path ends in the recognized source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// TrimSourceExt removes a trailing source extension from name, if present.
func TrimSourceExt(name string) string {
	if HasSourceExt(name) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// Prelude builtin names. No other package refers to these constants;
// the interpreter's prelude and the binder's shadow check (AT1012) spell
// the names out themselves.
const (
	PrintFuncName = "print"
	LenFuncName   = "len"
	StrFuncName   = "str"
	PushFuncName  = "push"
	ParseNumberFuncName = "parse_number"
)

// ShadowedPreludeNames lists the builtins that may not be redeclared at
// global scope (spec.md §8 invariant 6 — binding produces AT1012).
var ShadowedPreludeNames = []string{PrintFuncName, LenFuncName, StrFuncName}

// ResourceLimits mirrors the runtime's advisory execution bounds
// (spec.md §5): zero means "no limit enforced".
type ResourceLimits struct {
	MaxExecutionTimeMillis int64
	MaxMemoryBytes         int64
}

// IsTestMode mirrors funxy's config.IsTestMode flag. Nothing in this
// module sets it, so it stays false.
var IsTestMode = false
