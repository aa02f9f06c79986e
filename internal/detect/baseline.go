// Package detect implements the assertion, crash, and allocator-error
// detectors consulted during triage. The assertion and crash detectors
// compare the log against a baseline of known (ignorable) signatures
// loaded once from a directory; the allocator detector is stateless.
package detect

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Signature file names expected under the known path.
const (
	assertionsFile = "assertions.txt"
	crashesFile    = "crashes.txt"
)

// Baseline holds the known signatures. It is built once and read-only
// afterwards, so detectors sharing it are safe across sequential runs.
type Baseline struct {
	assertions []string
	crashes    []string
}

// Load reads the baseline from knownPath. The directory must exist;
// the individual signature files are optional and an absent file means
// no known signatures of that kind. Lines are trimmed, blank lines and
// '#' comments are skipped.
func Load(knownPath string) (*Baseline, error) {
	info, err := os.Stat(knownPath)
	if err != nil {
		return nil, fmt.Errorf("known path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("known path %s is not a directory", knownPath)
	}

	a, err := readSignatures(filepath.Join(knownPath, assertionsFile))
	if err != nil {
		return nil, err
	}
	c, err := readSignatures(filepath.Join(knownPath, crashesFile))
	if err != nil {
		return nil, err
	}
	return &Baseline{assertions: a, crashes: c}, nil
}

// Empty returns a baseline with no known signatures: every detected
// assertion or crash is treated as novel.
func Empty() *Baseline {
	return &Baseline{}
}

func readSignatures(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading signatures: %w", err)
	}
	defer f.Close()

	var sigs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sigs = append(sigs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading signatures %s: %w", path, err)
	}
	return sigs, nil
}

// knownMatch reports whether any known signature occurs in s.
func knownMatch(known []string, s string) bool {
	for _, sig := range known {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

// eachLine runs fn over every line of the log at path.
func eachLine(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fn(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning log: %w", err)
	}
	return nil
}
