//go:build !darwin && !linux

package power

import (
	"runtime"
	"syscall"
)

// Detect reports that keeping awake is not supported here.
func Detect() Capability {
	return Capability{Platform: runtime.GOOS}
}

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
