//go:build windows

package lockedfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// Windows locks cover an explicit byte range rather than the whole file;
// allBytes spans the maximum extent.
const allBytes = ^uint32(0)

func lock(f *os.File, m Mode) error {
	var flags uint32
	if m == Exclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, allBytes, allBytes, new(windows.Overlapped))
}

func unlock(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, allBytes, allBytes, new(windows.Overlapped))
}
