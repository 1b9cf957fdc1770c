package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bob-lang/bob/internal/config"
)

func runPiped(t *testing.T, source string) (code int, out, errOut string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code = Run(nil, strings.NewReader(source), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPipedProgram(t *testing.T) {
	code, out, errOut := runPiped(t, `
func square(n) { return n * n }
print("result:", square(7))
`)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if out != "result: 49\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunPipedParseError(t *testing.T) {
	code, _, errOut := runPiped(t, "var = 1")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "ParseError:") {
		t.Errorf("expected ParseError on stderr, got %q", errOut)
	}
}

func TestRunPipedRuntimeError(t *testing.T) {
	code, _, errOut := runPiped(t, "var x = 1\nvar y = 1 / 0")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "RuntimeError at 2:") {
		t.Errorf("expected located RuntimeError on stderr, got %q", errOut)
	}
	if !strings.Contains(errOut, "division by zero") {
		t.Errorf("expected cause on stderr, got %q", errOut)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.bob")
	if err := os.WriteFile(path, []byte("print(1 + 2)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := Run([]string{path}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if stdout.String() != "3\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRunFileResolvesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script"+config.SourceFileExt)
	if err := os.WriteFile(path, []byte("print(7)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := Run([]string{filepath.Join(dir, "script")}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if stdout.String() != "7\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"no-such-script.bob"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "could not open file") {
		t.Errorf("expected open error on stderr, got %q", stderr.String())
	}
}

// A non-terminal reader without a file argument executes the whole stream as
// one program instead of entering the REPL.
func TestPipedInputSkipsRepl(t *testing.T) {
	code, out, _ := runPiped(t, "print(42)")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.Contains(out, "Bob interactive shell") {
		t.Errorf("banner printed for piped input: %q", out)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("expected program output, got %q", out)
	}
}

func TestParallelProgramThroughDriver(t *testing.T) {
	code, out, errOut := runPiped(t, `
atomic_store("sum", 0)
parallel (var i = 1; i <= 1000; i++) {
	atomic_add("sum", i)
}
print(atomic_load("sum"))
`)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, errOut)
	}
	if out != "500500\n" {
		t.Errorf("unexpected output %q", out)
	}
}
