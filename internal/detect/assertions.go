package detect

import "strings"

// Assertion line prefixes as printed by the shell. SpiderMonkey-style
// builds print "Assertion failure: <cond>, at <file>:<line>"; Windows
// CRT builds print "Assertion failed:".
var assertionMarkers = []string{
	"Assertion failure:",
	"Assertion failed",
}

// Assertions flags assertion failures whose text is not covered by the
// baseline's known assertion signatures.
type Assertions struct {
	base *Baseline
}

func NewAssertions(base *Baseline) *Assertions {
	return &Assertions{base: base}
}

// Amiss reports whether the log holds a novel assertion failure.
func (d *Assertions) Amiss(logPath string) (bool, error) {
	novel := false
	err := eachLine(logPath, func(line string) {
		if !isAssertionLine(line) {
			return
		}
		if !knownMatch(d.base.assertions, line) {
			novel = true
		}
	})
	if err != nil {
		return false, err
	}
	return novel, nil
}

func isAssertionLine(line string) bool {
	for _, m := range assertionMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
