package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCheckAcceptsWellTypedProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.atl", "var x: number = 1 + 2;\n")
	if code := cmdCheck([]string{path}); code != ExitOK {
		t.Fatalf("expected ExitOK, got %d", code)
	}
}

func TestCheckReportsDiagnosticErrorsAsExitCodeOne(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.atl", "var x: number = \"nope\";\n")
	if code := cmdCheck([]string{path}); code != ExitDiagnostic {
		t.Fatalf("expected ExitDiagnostic, got %d", code)
	}
}

func TestCheckMissingFileIsUsageError(t *testing.T) {
	if code := cmdCheck([]string{filepath.Join(t.TempDir(), "missing.atl")}); code != ExitUsage {
		t.Fatalf("expected ExitUsage, got %d", code)
	}
}

func TestRunExecutesSimpleProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.atl", "var x = 1;\nvar y = 2;\nprint(x + y);\n")
	if code := cmdRun([]string{path}); code != ExitOK {
		t.Fatalf("expected ExitOK, got %d", code)
	}
}

func TestRunWithImportSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "math.atl", `export fn add(a: number, b: number) -> number { return a + b; }`)
	path := writeSource(t, dir, "main.atl", `import { add } from "./math";
print(add(1, 2));
`)
	if code := cmdRun([]string{path}); code != ExitOK {
		t.Fatalf("expected ExitOK, got %d", code)
	}
}

func TestCompileThenExecRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.atl", "print(40 + 2);\n")
	out := filepath.Join(dir, "main.atb")

	if code := cmdCompile([]string{src, "-o", out}); code != ExitOK {
		t.Fatalf("expected ExitOK from compile, got %d", code)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected bytecode file to exist: %v", err)
	}
	if code := cmdExec([]string{out}); code != ExitOK {
		t.Fatalf("expected ExitOK from exec, got %d", code)
	}
}

func TestCompileIsCacheHitOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.atl", "print(1 + 1);\n")
	out := filepath.Join(dir, "main.atb")

	if code := cmdCompile([]string{src, "-o", out}); code != ExitOK {
		t.Fatalf("expected ExitOK from first compile, got %d", code)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}

	if code := cmdCompile([]string{src, "-o", out}); code != ExitOK {
		t.Fatalf("expected ExitOK from cached compile, got %d", code)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("expected cache hit to reproduce identical bytecode bytes")
	}
}

func TestRunMissingFileIsUsageError(t *testing.T) {
	if code := cmdRun([]string{filepath.Join(t.TempDir(), "missing.atl")}); code != ExitUsage {
		t.Fatalf("expected ExitUsage, got %d", code)
	}
}

func TestDispatchUnknownCommandIsUsageError(t *testing.T) {
	if code := Run([]string{"frobnicate"}); code != ExitUsage {
		t.Fatalf("expected ExitUsage, got %d", code)
	}
}

func TestDispatchNoArgsIsUsageError(t *testing.T) {
	if code := Run(nil); code != ExitUsage {
		t.Fatalf("expected ExitUsage, got %d", code)
	}
}
