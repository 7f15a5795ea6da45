// Package power starts and signals the external process that keeps the
// machine awake.
package power

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// KillWait bounds how long Kill waits for the process to be reaped.
const KillWait = 2 * time.Second

// ErrKillTimeout indicates the process was signalled but did not exit
// within KillWait.
var ErrKillTimeout = errors.New("process did not exit after kill")

// Capability describes how this platform keeps the machine awake. It is
// resolved once at startup by Detect.
type Capability struct {
	// Supported is false on platforms without a sleep inhibitor.
	Supported bool
	// Platform is the GOOS the capability was resolved for.
	Platform string
	// Command and Args form the fixed argument vector. No shell is involved.
	Command string
	Args    []string
}

func (c Capability) String() string {
	if !c.Supported {
		return "unsupported on " + c.Platform
	}
	return strings.Join(append([]string{c.Command}, c.Args...), " ")
}

// Process is a running external process.
type Process interface {
	PID() int
	// Terminate asks the process to exit.
	Terminate() error
	// Kill forces the process to exit and waits for it to be reaped.
	Kill() error
}

// Spawner starts external processes.
type Spawner interface {
	Spawn(command string, args []string) (Process, error)
}

// SpawnError reports a process that could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// SignalError reports a terminate or kill that could not be delivered.
// Err is os.ErrProcessDone when the process had already exited.
type SignalError struct {
	Signal string
	PID    int
	Err    error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s pid %d: %v", e.Signal, e.PID, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}
