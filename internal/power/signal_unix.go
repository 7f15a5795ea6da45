//go:build unix

package power

import "golang.org/x/sys/unix"

var (
	terminateSignal = unix.SIGTERM
	killSignal      = unix.SIGKILL
)
