//go:build debug

package core

import "fmt"

func Assert(cond bool, msg string, args ...interface{}) bool {
	if !cond {
		panic(fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(msg, args...)))
	}
	return cond
}
