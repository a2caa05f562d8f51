package pbfwriter

import "fmt"

// invariant panics if cond is false. Used for the PBF encoder's fatal
// assertions (spec.md §7: "Invariant violations ... fatal assertion —
// these indicate a bug, not bad data"), as opposed to the errors this
// package returns for genuine I/O failures.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic("pbfwriter: " + fmt.Sprintf(format, args...))
	}
}
