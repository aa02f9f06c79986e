// Package shelltriage holds module-wide metadata.
package shelltriage

// Version is the shelltriage release version.
const Version = "0.2.0"
