package detect

// Crashes decides whether a crashed run matches a known crash
// signature. It is only consulted when the runner reports a crash, so
// "no signature matched" means the crash is novel.
type Crashes struct {
	base *Baseline
}

func NewCrashes(base *Baseline) *Crashes {
	return &Crashes{base: base}
}

// Amiss reports whether the crash is novel. crashMsg is the runner's
// failure message (signal description); both it and every log line are
// checked against the known crash signatures, so a recognized stack
// frame anywhere in the log marks the crash as known.
func (d *Crashes) Amiss(logPath, crashMsg string) (bool, error) {
	if knownMatch(d.base.crashes, crashMsg) {
		return false, nil
	}
	known := false
	err := eachLine(logPath, func(line string) {
		if knownMatch(d.base.crashes, line) {
			known = true
		}
	})
	if err != nil {
		return false, err
	}
	return !known, nil
}
