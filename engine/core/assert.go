//go:build !debug

package core

// Assert logs the failure and lets the caller carry on. Build with -tags debug
// to turn failed assertions into panics.
func Assert(cond bool, msg string, args ...interface{}) bool {
	if !cond {
		LogError("assertion failed: "+msg, args...)
	}
	return cond
}
