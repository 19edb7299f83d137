package interpreter

// Environment is a lexical scope: a map of bindings chained to an outer
// scope. Because Atlas execution is single-threaded (cooperative
// debugging aside), Environment carries no mutex — unlike the teacher's
// evaluator, which protects its scope chain for goroutine-shared
// closures.
type Environment struct {
	vars  map[string]*binding
	outer *Environment
}

type binding struct {
	value   Value
	mutable bool
}

// NewEnvironment creates a top-level (global) scope.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]*binding)}
}

// NewEnclosedEnvironment creates a child scope nested inside outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{vars: make(map[string]*binding), outer: outer}
}

// Define introduces a new binding in this scope, shadowing any binding
// of the same name in an outer scope.
func (e *Environment) Define(name string, v Value, mutable bool) {
	e.vars[name] = &binding{value: v, mutable: mutable}
}

// Get looks up name in this scope, then each outer scope in turn.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.vars[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Assign rebinds an existing name to a new value, searching outward
// through enclosing scopes. It reports ok=false if name is undefined or
// was declared with `let` (immutable).
func (e *Environment) Assign(name string, v Value) bool {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.vars[name]; ok {
			if !b.mutable {
				return false
			}
			b.value = v
			return true
		}
	}
	return false
}

// IsMutable reports whether name, if defined, was declared with `var`.
func (e *Environment) IsMutable(name string) bool {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.vars[name]; ok {
			return b.mutable
		}
	}
	return false
}
