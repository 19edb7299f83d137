package modules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModule(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+".atl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadSimpleModule(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "main", `export fn greet(name: string) -> string { return "hi"; }`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(root, "main.atl")
	mods, err := l.Load(entry)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mods) != 1 {
		t.Fatalf("expected 1 module, got %d", len(mods))
	}
	if len(mods[0].Exports) != 1 || mods[0].Exports[0] != "greet" {
		t.Fatalf("expected export [greet], got %v", mods[0].Exports)
	}
}

func TestLoadWithDependencies(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "math", `export fn add(a: number, b: number) -> number { return a + b; }`)
	writeModule(t, root, "main", `import { add } from "./math";
export fn calculate() -> number { return add(1, 2); }`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	mods, err := l.Load(filepath.Join(root, "main.atl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(mods))
	}
	if filepath.Base(mods[0].Path) != "math.atl" {
		t.Fatalf("expected math.atl first, got %s", mods[0].Path)
	}
	if filepath.Base(mods[1].Path) != "main.atl" {
		t.Fatalf("expected main.atl last, got %s", mods[1].Path)
	}
}

func TestDiamondDependencyLoadsOnce(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "d", `export let x = 1;`)
	writeModule(t, root, "b", `import { x } from "./d";
export let b = x;`)
	writeModule(t, root, "c", `import { x } from "./d";
export let c = x;`)
	writeModule(t, root, "a", `import { b } from "./b";
import { c } from "./c";
export let a = b + c;`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	mods, err := l.Load(filepath.Join(root, "a.atl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mods) != 4 {
		t.Fatalf("expected 4 modules, got %d", len(mods))
	}
	if filepath.Base(mods[0].Path) != "d.atl" {
		t.Fatalf("expected d.atl first, got %s", mods[0].Path)
	}
	if filepath.Base(mods[len(mods)-1].Path) != "a.atl" {
		t.Fatalf("expected a.atl last, got %s", mods[len(mods)-1].Path)
	}
}

func TestCircularDependencyDetected(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a", `import { b } from "./b";
export let a = 1;`)
	writeModule(t, root, "b", `import { a } from "./a";
export let b = 2;`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.Load(filepath.Join(root, "a.atl"))
	if err == nil {
		t.Fatal("expected circular dependency error")
	}
}

func TestModuleNotFound(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "main", `import { x } from "./missing";`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.Load(filepath.Join(root, "main.atl"))
	if err == nil {
		t.Fatal("expected module-not-found error")
	}
	de, ok := err.(*diagErr)
	if !ok {
		t.Fatalf("expected *diagErr, got %T", err)
	}
	if len(de.Diagnostics()) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestSelfImportRejected(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "main", `import { x } from "./main";
export let x = 1;`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.Load(filepath.Join(root, "main.atl"))
	if err == nil {
		t.Fatal("expected self-import cycle error")
	}
}

func TestNamespaceImport(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "lib", `export fn foo() -> void {}`)
	writeModule(t, root, "main", `import * as lib from "./lib";`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	mods, err := l.Load(filepath.Join(root, "main.atl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(mods))
	}
}

func TestAbsolutePathImport(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	if err := os.Mkdir(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeModule(t, libDir, "util", `export fn helper() -> void {}`)
	writeModule(t, root, "main", `import { helper } from "/lib/util";`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	mods, err := l.Load(filepath.Join(root, "main.atl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(mods))
	}
}

func TestReusingLoaderCachesSharedDependency(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "shared", `export let shared = 0;`)
	writeModule(t, root, "a", `import { shared } from "./shared";
export let a = 1;`)
	writeModule(t, root, "b", `import { shared } from "./shared";
export let b = 2;`)

	l, err := NewLoader(root)
	if err != nil {
		t.Fatal(err)
	}
	modsA, err := l.Load(filepath.Join(root, "a.atl"))
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	if len(modsA) != 2 {
		t.Fatalf("expected 2 modules for a, got %d", len(modsA))
	}
	modsB, err := l.Load(filepath.Join(root, "b.atl"))
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if len(modsB) != 2 {
		t.Fatalf("expected 2 modules for b, got %d", len(modsB))
	}
	shared, ok := l.GetModule(filepath.Join(root, "shared.atl"))
	if !ok {
		t.Fatal("expected shared module to be cached")
	}
	if len(shared.Exports) != 1 {
		t.Fatalf("expected 1 export, got %v", shared.Exports)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := OpenDiskCache(file)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	source := "export fn f() -> void {}"
	hash := Hash(source)
	blob := []byte{0x41, 0x54, 0x42, 0x00}

	if _, ok := c.Get("main.atl", hash); ok {
		t.Fatal("expected cache miss before Put")
	}
	if err := c.Put("main.atl", hash, blob); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get("main.atl", hash)
	if !ok {
		t.Fatal("expected cache hit after Put")
	}
	if string(got) != string(blob) {
		t.Fatalf("expected %v, got %v", blob, got)
	}
}
