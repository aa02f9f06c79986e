// Package shell verifies that a tested shell binary matches its
// expected build configuration before fuzzing begins. The probes are
// stateless and deliberately bypass the triage runner: they must not
// produce triage logs.
package shell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoReadelf is returned when the ABI tag inspection utility is not
// installed. This is a hard failure, not a silent skip.
var ErrNoReadelf = errors.New("readelf not found at /usr/bin/readelf")

const readelfBin = "/usr/bin/readelf"

// ExitCodeError reports a probe exit code outside the recognized
// supported/not-supported classes.
type ExitCodeError struct {
	Probe string
	Code  int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("unexpected exit code %d from %s probe", e.Code, e.Probe)
}

// captureCombined runs argv with the binary's directory on the library
// path and returns combined output plus the exit code. A nonzero exit
// is not an error; a spawn failure is.
func captureCombined(argv []string, binary string) (string, int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = envWithLibPath(binary)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", 0, fmt.Errorf("executing %s: %w", argv[0], err)
		}
		return out.String(), exitErr.ExitCode(), nil
	}
	return out.String(), 0, nil
}

// envWithLibPath extends the environment so the shell finds shared
// libraries shipped next to it.
func envWithLibPath(binary string) []string {
	dir := filepath.Dir(binary)
	abs, err := filepath.Abs(dir)
	if err == nil {
		dir = abs
	}
	env := os.Environ()
	env = append(env, "LD_LIBRARY_PATH="+dir)
	return env
}

// ArchOf reports whether the binary is a 32- or 64-bit build, using
// file(1). Multi-architecture binaries are rejected.
func ArchOf(binary string) (string, error) {
	out, _, err := captureCombined([]string{"file", binary}, binary)
	if err != nil {
		return "", err
	}
	_, filetype, ok := strings.Cut(out, ":")
	if !ok {
		return "", fmt.Errorf("unparseable file(1) output %q", out)
	}
	return parseFileType(filetype)
}

func parseFileType(filetype string) (string, error) {
	if strings.Contains(filetype, "universal binary") {
		return "", fmt.Errorf("multiple-architecture binaries are not supported")
	}
	has32 := strings.Contains(filetype, "32-bit") || strings.Contains(filetype, "i386")
	has64 := strings.Contains(filetype, "64-bit")
	switch {
	case has32 && !has64:
		return "32", nil
	case has64 && !has32:
		return "64", nil
	default:
		return "", fmt.Errorf("cannot determine bitness from %q", strings.TrimSpace(filetype))
	}
}

// Supports probes whether the shell accepts the given arguments.
// Exit 0 means supported. Exits 1 through 3 all mean "not supported":
// usage errors and script errors vary across shell vintages but stay in
// that range. Anything else breaks the probe contract and is a hard
// error.
func Supports(binary string, args []string) (bool, error) {
	_, code, err := captureCombined(append([]string{binary}, args...), binary)
	if err != nil {
		return false, err
	}
	switch {
	case code == 0:
		return true, nil
	case code >= 1 && code <= 3:
		return false, nil
	default:
		return false, ExitCodeError{Probe: strings.Join(args, " "), Code: code}
	}
}

// SupportsBuildConfiguration reports whether the shell implements
// getBuildConfiguration().
func SupportsBuildConfiguration(binary string) (bool, error) {
	return Supports(binary, []string{"-e", "getBuildConfiguration()"})
}

// QueryBuildFlag reports whether the shell was compiled with the named
// build flag, via getBuildConfiguration().
func QueryBuildFlag(binary, flag string) (bool, error) {
	expr := fmt.Sprintf(`print(getBuildConfiguration()[%q])`, flag)
	out, _, err := captureCombined([]string{binary, "-e", expr}, binary)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "true"), nil
}

// ShellKind distinguishes a plain js shell from an xpcshell by probing
// for the Components global.
func ShellKind(binary string) (string, error) {
	isXpc, err := Supports(binary, []string{"-e", "Components"})
	if err != nil {
		return "", err
	}
	if isXpc {
		return "xpcshell", nil
	}
	return "js-shell", nil
}

// HasHardFpABI inspects the ELF ABI tags for hardfp calling
// convention support on ARM builds.
func HasHardFpABI(binary string) (bool, error) {
	if _, err := os.Stat(readelfBin); err != nil {
		return false, ErrNoReadelf
	}
	out, _, err := captureCombined([]string{readelfBin, "-A", binary}, binary)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "Tag_ABI_VFP_args: VFP registers"), nil
}

// ValgrindCmd builds the argv prefix for running the shell under
// valgrind, reserving errorCode for valgrind-detected errors so they
// stay distinguishable from shell exits.
func ValgrindCmd(errorCode int) []string {
	return []string{
		"valgrind",
		fmt.Sprintf("--error-exitcode=%d", errorCode),
		"--smc-check=all-non-file",
		"--vex-iropt-register-updates=allregs-at-mem-access",
		"--gen-suppressions=all",
		"--leak-check=full",
		"--errors-for-leak-kinds=definite",
		"--show-leak-kinds=definite",
		"--show-possibly-lost=no",
		"--num-callers=50",
	}
}
