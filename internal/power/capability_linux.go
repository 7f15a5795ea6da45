//go:build linux

package power

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Detect returns the systemd-inhibit capability.
func Detect() Capability {
	return Capability{
		Supported: true,
		Platform:  "linux",
		Command:   "systemd-inhibit",
		Args: []string{
			"--what=idle:sleep",
			"--who=awake",
			"--why=Keep awake enabled",
			"sleep", "infinity",
		},
	}
}

// Kernel sends SIGTERM to the child when the parent dies, so it cannot
// outlive us.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}
}
