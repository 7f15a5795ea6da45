package menu

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is the part of *tea.Program the renderer needs.
type Program interface {
	Send(msg tea.Msg)
	Quit()
}

// Renderer forwards labels and the exit request to a running program.
// Until Attach is called they are dropped.
type Renderer struct {
	mu   sync.Mutex
	prog Program
}

// Attach sets the program to forward to.
func (r *Renderer) Attach(p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prog = p
}

func (r *Renderer) program() Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prog
}

// SetMenuLabel sends a LabelMsg. Send blocks until the event loop takes
// the message, which is safe because Update never calls the controller.
func (r *Renderer) SetMenuLabel(text string) {
	if p := r.program(); p != nil {
		p.Send(LabelMsg(text))
	}
}

// ExitApplication stops the program. The exit code is reported by the
// caller once Run returns.
func (r *Renderer) ExitApplication(int) {
	if p := r.program(); p != nil {
		p.Quit()
	}
}
