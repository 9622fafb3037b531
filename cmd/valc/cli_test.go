package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildBinary compiles the valc CLI into a fresh temp dir for each test,
// mirroring the teacher's cmd/dwscript/*_test.go "go build -o ... ." pattern.
func buildBinary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	binary := filepath.Join(dir, "valc")
	cmd := exec.Command("go", "build", "-o", binary, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build valc: %v\n%s", err, out)
	}
	return binary
}

func runValc(t *testing.T, binary string, stdin string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Stdin = bytes.NewBufferString(stdin)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run valc: %v", err)
	}
	return outBuf.String(), errBuf.String(), exitCode
}

func TestLexSubcommandTokenizesStdin(t *testing.T) {
	binary := buildBinary(t)
	out, _, code := runValc(t, binary, "let x: number = 1;", "lex")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out == "" {
		t.Errorf("expected token output, got empty string")
	}
}

func TestParseSubcommandReportsParseErrors(t *testing.T) {
	binary := buildBinary(t)
	_, stderr, code := runValc(t, binary, "let = 1;", "parse")
	if code == 0 {
		t.Fatalf("expected a non-zero exit for a parse error")
	}
	if stderr == "" {
		t.Errorf("expected a diagnostic on stderr, got none")
	}
}

func TestCheckSubcommandReportsTypeErrors(t *testing.T) {
	binary := buildBinary(t)
	_, stderr, code := runValc(t, binary, "let x: number = 'hi';", "check")
	if code == 0 {
		t.Fatalf("expected a non-zero exit for a type error")
	}
	if stderr == "" {
		t.Errorf("expected a diagnostic on stderr, got none")
	}
}

func TestCheckSubcommandAcceptsValidProgram(t *testing.T) {
	binary := buildBinary(t)
	_, stderr, code := runValc(t, binary, "let x: number = 1; let y: number = x + 1;", "check")
	if code != 0 {
		t.Fatalf("expected exit 0 for a valid program, got %d, stderr: %s", code, stderr)
	}
}

func TestBuildSubcommandEmitsLLVMIR(t *testing.T) {
	binary := buildBinary(t)
	out, stderr, code := runValc(t, binary, "let x: number = 1;", "build")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d, stderr: %s", code, stderr)
	}
	if !bytes.Contains([]byte(out), []byte("define i32 @main()")) {
		t.Errorf("expected emitted IR to contain a main entry point, got:\n%s", out)
	}
}

func TestBuildSubcommandWritesToOutputFile(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	outFile := filepath.Join(dir, "out.ll")

	cmd := exec.Command(binary, "build", "-o", outFile)
	cmd.Stdin = bytes.NewBufferString("let x: number = 1;")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("valc build failed: %v\n%s", err, out)
	}

	content, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("expected output file to be written: %v", err)
	}
	if len(content) == 0 {
		t.Errorf("expected non-empty IR output file")
	}
}

func TestVersionSubcommandReportsVersion(t *testing.T) {
	binary := buildBinary(t)
	out, _, code := runValc(t, binary, "", "version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out == "" {
		t.Errorf("expected version output, got empty string")
	}
}
