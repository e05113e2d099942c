//go:build unix

package rlimit

import "golang.org/x/sys/unix"

// RaiseNoFile lifts the soft limit of open descriptors up to the hard one, as every
// served connection holds one socket and one file at once. Returns the resulting
// soft limit.
func RaiseNoFile() (uint64, error) {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, err
	}

	if limit.Cur >= limit.Max {
		return limit.Cur, nil
	}

	raised := limit
	raised.Cur = limit.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &raised); err != nil {
		return limit.Cur, err
	}

	return raised.Cur, nil
}
