//go:build darwin

package power

import (
	"os"
	"strconv"
	"syscall"
)

// Detect returns the caffeinate capability.
//
// -d: prevent display sleep
// -i: prevent idle sleep
// -w <pid>: exit automatically when this process dies
func Detect() Capability {
	return Capability{
		Supported: true,
		Platform:  "darwin",
		Command:   "caffeinate",
		Args:      []string{"-di", "-w", strconv.Itoa(os.Getpid())},
	}
}

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
