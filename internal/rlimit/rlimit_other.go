//go:build !unix

package rlimit

// RaiseNoFile does nothing on platforms without resource limits.
func RaiseNoFile() (uint64, error) {
	return 0, nil
}
