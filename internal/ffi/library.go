package ffi

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// LibraryLoader owns every dlopen'd handle for one runtime instance.
// Handles are shared and symbols looked up lazily and cached, exactly
// as spec.md §5 requires ("FFI library handles are shared across a
// LibraryLoader; symbols are looked up lazily and cached").
type LibraryLoader struct {
	mu      sync.Mutex
	handles map[string]uintptr
	symbols map[string]uintptr // "libname\x00symname" -> address
}

// NewLibraryLoader returns an empty loader.
func NewLibraryLoader() *LibraryLoader {
	return &LibraryLoader{
		handles: make(map[string]uintptr),
		symbols: make(map[string]uintptr),
	}
}

// handle returns libName's dlopen handle, opening it on first use.
func (l *LibraryLoader) handle(libName string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.handles[libName]; ok {
		return h, nil
	}
	h, err := purego.Dlopen(libName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("ffi: cannot open library %q: %w", libName, err)
	}
	l.handles[libName] = h
	return h, nil
}

// Symbol resolves symName in libName, caching the result so a repeated
// extern declaration against the same library+symbol pair does not
// re-run dlsym.
func (l *LibraryLoader) Symbol(libName, symName string) (uintptr, error) {
	key := libName + "\x00" + symName
	l.mu.Lock()
	if addr, ok := l.symbols[key]; ok {
		l.mu.Unlock()
		return addr, nil
	}
	l.mu.Unlock()

	h, err := l.handle(libName)
	if err != nil {
		return 0, err
	}
	addr, err := purego.Dlsym(h, symName)
	if err != nil {
		return 0, fmt.Errorf("ffi: symbol %q not found in %q: %w", symName, libName, err)
	}
	l.mu.Lock()
	l.symbols[key] = addr
	l.mu.Unlock()
	return addr, nil
}
