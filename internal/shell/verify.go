package shell

import "fmt"

// BuildOptions describes how the tested shell is expected to have been
// built.
type BuildOptions struct {
	Arch              string // "32" or "64"
	Debug             bool
	ASan              bool
	MoreDeterministic bool
	HardFp            *bool // ARM only; nil skips the check
}

// Verify asserts that the binary matches the expected build
// configuration. Any mismatch is a hard error intended to stop the
// fuzzing session before it starts.
func Verify(binary string, opts BuildOptions) error {
	if opts.Arch != "" {
		arch, err := ArchOf(binary)
		if err != nil {
			return fmt.Errorf("verifying architecture: %w", err)
		}
		if arch != opts.Arch {
			return fmt.Errorf("architecture mismatch: binary is %s-bit, expected %s-bit", arch, opts.Arch)
		}
	}

	// Debug and opt are probed separately because hybrid debug-opt
	// builds exist.
	debug, err := QueryBuildFlag(binary, "debug")
	if err != nil {
		return fmt.Errorf("verifying debug flag: %w", err)
	}
	if debug != opts.Debug {
		return fmt.Errorf("debug flag mismatch: binary reports %v, expected %v", debug, opts.Debug)
	}

	if opts.HardFp != nil {
		hardfp, err := HasHardFpABI(binary)
		if err != nil {
			return fmt.Errorf("verifying hardfp ABI: %w", err)
		}
		if hardfp != *opts.HardFp {
			return fmt.Errorf("hardfp mismatch: binary reports %v, expected %v", hardfp, *opts.HardFp)
		}
	}

	// The remaining flags only exist where getBuildConfiguration does.
	hasCfg, err := SupportsBuildConfiguration(binary)
	if err != nil {
		return fmt.Errorf("probing getBuildConfiguration: %w", err)
	}
	if !hasCfg {
		return nil
	}

	for flag, want := range map[string]bool{
		"more-deterministic": opts.MoreDeterministic,
		"asan":               opts.ASan,
	} {
		got, err := QueryBuildFlag(binary, flag)
		if err != nil {
			return fmt.Errorf("verifying %s flag: %w", flag, err)
		}
		if got != want {
			return fmt.Errorf("%s flag mismatch: binary reports %v, expected %v", flag, got, want)
		}
	}

	return nil
}
