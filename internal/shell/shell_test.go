package shell

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// writeScript creates an executable shell script standing in for the
// tested binary.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "js")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeShell answers the standard probes like a debug js shell without
// getBuildConfiguration support beyond the flags listed.
func fakeShell(t *testing.T, debug, moreDet, asan string) string {
	t.Helper()
	return writeScript(t, `case "$2" in
"getBuildConfiguration()") exit 0 ;;
"Components") exit 3 ;;
*'"debug"'*) echo `+debug+` ;;
*more-deterministic*) echo `+moreDet+` ;;
*asan*) echo `+asan+` ;;
esac
exit 0`)
}

func TestParseFileType(t *testing.T) {
	tests := []struct {
		filetype string
		want     string
		wantErr  bool
	}{
		{" ELF 64-bit LSB executable, x86-64", "64", false},
		{" ELF 32-bit LSB executable, Intel 80386", "32", false},
		{" Mach-O executable i386", "32", false},
		{" Mach-O universal binary with 2 architectures", "", true},
		{" ASCII text", "", true},
	}
	for _, tt := range tests {
		got, err := parseFileType(tt.filetype)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseFileType(%q): expected error", tt.filetype)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFileType(%q): %v", tt.filetype, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFileType(%q) = %q, want %q", tt.filetype, got, tt.want)
		}
	}
}

func TestArchOf(t *testing.T) {
	if _, err := exec.LookPath("file"); err != nil {
		t.Skip("file(1) not installed")
	}
	bin, err := exec.LookPath("sh")
	if err != nil {
		t.Fatal(err)
	}
	arch, err := ArchOf(bin)
	if err != nil {
		t.Fatalf("ArchOf: %v", err)
	}
	if arch != "32" && arch != "64" {
		t.Errorf("ArchOf = %q, want 32 or 64", arch)
	}
}

func TestSupports_ExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    bool
		wantErr bool
	}{
		{"supported", "exit 0", true, false},
		{"usage-error", "exit 1", false, false},
		{"old-usage-error", "exit 2", false, false},
		{"script-error", "exit 3", false, false},
		{"out-of-contract", "exit 7", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := writeScript(t, tt.body)
			got, err := Supports(bin, []string{"-e", "foo()"})
			if tt.wantErr {
				var ece ExitCodeError
				if !errors.As(err, &ece) {
					t.Fatalf("err = %v, want ExitCodeError", err)
				}
				if ece.Code != 7 {
					t.Errorf("Code = %d, want 7", ece.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Supports: %v", err)
			}
			if got != tt.want {
				t.Errorf("Supports = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupports_MissingBinary(t *testing.T) {
	if _, err := Supports(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatal("expected spawn failure")
	}
}

func TestQueryBuildFlag(t *testing.T) {
	bin := fakeShell(t, "true", "false", "false")
	debug, err := QueryBuildFlag(bin, "debug")
	if err != nil {
		t.Fatalf("QueryBuildFlag: %v", err)
	}
	if !debug {
		t.Error("debug = false, want true")
	}
	asan, err := QueryBuildFlag(bin, "asan")
	if err != nil {
		t.Fatalf("QueryBuildFlag: %v", err)
	}
	if asan {
		t.Error("asan = true, want false")
	}
}

func TestShellKind(t *testing.T) {
	js := fakeShell(t, "true", "false", "false")
	kind, err := ShellKind(js)
	if err != nil {
		t.Fatalf("ShellKind: %v", err)
	}
	if kind != "js-shell" {
		t.Errorf("kind = %q, want js-shell", kind)
	}

	xpc := writeScript(t, "exit 0")
	kind, err = ShellKind(xpc)
	if err != nil {
		t.Fatalf("ShellKind: %v", err)
	}
	if kind != "xpcshell" {
		t.Errorf("kind = %q, want xpcshell", kind)
	}
}

func TestVerify_Match(t *testing.T) {
	bin := fakeShell(t, "true", "false", "false")
	err := Verify(bin, BuildOptions{Debug: true})
	if err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify_DebugMismatch(t *testing.T) {
	bin := fakeShell(t, "true", "false", "false")
	err := Verify(bin, BuildOptions{Debug: false})
	if err == nil {
		t.Fatal("expected debug mismatch")
	}
	if !strings.Contains(err.Error(), "debug flag mismatch") {
		t.Errorf("error = %q", err)
	}
}

func TestVerify_BuildFlagMismatch(t *testing.T) {
	bin := fakeShell(t, "true", "true", "false")
	err := Verify(bin, BuildOptions{Debug: true, MoreDeterministic: false})
	if err == nil {
		t.Fatal("expected more-deterministic mismatch")
	}
}

func TestValgrindCmd(t *testing.T) {
	cmd := ValgrindCmd(77)
	if cmd[0] != "valgrind" {
		t.Errorf("cmd[0] = %q, want valgrind", cmd[0])
	}
	found := false
	for _, arg := range cmd {
		if arg == "--error-exitcode=77" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing --error-exitcode=77 in %v", cmd)
	}
}
