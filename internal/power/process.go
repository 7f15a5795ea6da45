package power

import (
	"os"
	"os/exec"
	"time"
)

// ExecSpawner starts processes with os/exec.
type ExecSpawner struct{}

// Spawn resolves command on PATH and starts it with args. It returns as
// soon as the process is running; a goroutine reaps it so it never
// becomes a zombie.
func (ExecSpawner) Spawn(command string, args []string) (Process, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	return p.signal("terminate", terminateSignal)
}

func (p *execProcess) Kill() error {
	if err := p.signal("kill", killSignal); err != nil {
		return err
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(KillWait):
		return &SignalError{Signal: "kill", PID: p.PID(), Err: ErrKillTimeout}
	}
}

func (p *execProcess) signal(name string, sig os.Signal) error {
	select {
	case <-p.done:
		return &SignalError{Signal: name, PID: p.PID(), Err: os.ErrProcessDone}
	default:
	}
	if err := p.cmd.Process.Signal(sig); err != nil {
		return &SignalError{Signal: name, PID: p.PID(), Err: err}
	}
	return nil
}
