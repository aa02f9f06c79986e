package detect

import "strings"

// Allocator corruption markers across glibc, macOS malloc, and the
// sanitizer allocator.
var mallocMarkers = []string{
	"szone_error",
	"*** glibc detected ***",
	"double free or corruption",
	"corrupted double-linked list",
	"malloc: *** error for object",
	"invalid next size",
	"attempting double-free",
	"allocator is out of memory",
}

// Malloc flags allocator errors in the log. It carries no baseline:
// an allocator error is never ignorable.
type Malloc struct{}

func NewMalloc() Malloc {
	return Malloc{}
}

// Amiss reports whether any allocator error marker occurs in the log.
func (Malloc) Amiss(logPath string) (bool, error) {
	found := false
	err := eachLine(logPath, func(line string) {
		for _, m := range mallocMarkers {
			if strings.Contains(line, m) {
				found = true
				return
			}
		}
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
