//go:build debug

// Package check holds invariant assertions that only fire in binaries built
// with -tags debug.
package check

import "fmt"

func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("invariant violated: " + fmt.Sprintf(format, args...))
	}
}
