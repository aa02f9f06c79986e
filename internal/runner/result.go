package runner

// Status classifies how a tested process terminated.
type Status int

const (
	// Normal means the process exited with code 0.
	Normal Status = iota
	// Crashed means the process was terminated by a fatal signal.
	Crashed
	// TimedOut means the process was killed when the timeout elapsed.
	TimedOut
	// Abnormal means the process exited with a nonzero code that is not
	// a recognized crash.
	Abnormal
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Crashed:
		return "crashed"
	case TimedOut:
		return "timed-out"
	case Abnormal:
		return "abnormal"
	default:
		return "unknown"
	}
}

// RunResult holds the normalized outcome of one shell execution.
// It is immutable after Run returns.
type RunResult struct {
	RunID          string  // unique identifier for this run
	Status         Status  // how the process terminated
	Msg            string  // human-readable exit description
	ExitCode       int     // raw exit code (0 for crashes and timeouts)
	ElapsedSeconds float64 // wall-clock time from start to termination
	LogPath        string  // combined stdout+stderr, fully written on return
	Truncated      bool    // true if the log hit the output cap
}
