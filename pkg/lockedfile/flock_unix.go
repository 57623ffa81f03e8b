//go:build unix

package lockedfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// lock takes a flock on the whole file, retrying when a signal interrupts
// the wait.
func lock(f *os.File, m Mode) error {
	how := unix.LOCK_SH
	if m == Exclusive {
		how = unix.LOCK_EX
	}
	for {
		err := unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}

// unlock releases the flock held on f.
func unlock(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		if err != unix.EINTR {
			return err
		}
	}
}
