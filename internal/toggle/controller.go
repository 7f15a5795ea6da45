// Package toggle implements the keep-awake state machine. The state is
// Enabled exactly when the store holds a process handle.
package toggle

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/scienceol/awake/internal/power"
	"github.com/scienceol/awake/internal/slot"
)

var (
	// ErrUnsupported is returned when the platform cannot keep the machine awake.
	ErrUnsupported = errors.New("keep awake is not supported on this platform")

	// ErrQuitting is returned for events that arrive after Quit drained the store.
	ErrQuitting = errors.New("application is quitting")
)

// Options configures a Controller.
type Options struct {
	Store      *slot.Store[power.Process]
	Spawner    power.Spawner
	Capability power.Capability
	Renderer   LabelRenderer
	Exiter     Exiter
	Logger     *slog.Logger
}

// Controller drives the external process from Activate and Quit events.
type Controller struct {
	store    *slot.Store[power.Process]
	spawner  power.Spawner
	cap      power.Capability
	renderer LabelRenderer
	exiter   Exiter
	log      *slog.Logger

	exitOnce sync.Once
}

// New creates a Controller. A nil Store, Renderer or Logger is replaced
// by an empty store, a no-op renderer and slog.Default().
func New(opts Options) *Controller {
	c := &Controller{
		store:    opts.Store,
		spawner:  opts.Spawner,
		cap:      opts.Capability,
		renderer: opts.Renderer,
		exiter:   opts.Exiter,
		log:      opts.Logger,
	}
	if c.store == nil {
		c.store = slot.New[power.Process]()
	}
	if c.renderer == nil {
		c.renderer = RendererFunc(func(string) {})
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Handle dispatches a front-end event.
func (c *Controller) Handle(ev Event) error {
	switch ev {
	case EventActivate:
		return c.Activate()
	case EventQuit:
		return c.Quit()
	default:
		return fmt.Errorf("unknown event %d", int(ev))
	}
}

// State returns Enabled if a process is held.
func (c *Controller) State() State {
	if c.store.Occupied() {
		return Enabled
	}
	return Disabled
}

// Label returns the action label for the current state.
func (c *Controller) Label() string {
	return LabelFor(c.State())
}

// Activate flips the toggle. From Disabled it spawns the process; from
// Enabled it terminates it. A failed spawn leaves the state Disabled and
// the label untouched. A failed terminate is logged and the state still
// becomes Disabled.
func (c *Controller) Activate() error {
	if !c.cap.Supported {
		c.log.Info("keep awake unsupported", "platform", c.cap.Platform)
		return ErrUnsupported
	}
	return c.store.Do(func(s *slot.Slot[power.Process]) error {
		if s.Drained() {
			return ErrQuitting
		}
		if !s.Occupied() {
			return c.enable(s)
		}

		p, _ := s.Take()
		err := p.Terminate()
		if err != nil {
			c.log.Warn("terminate failed", "pid", p.PID(), "error", err)
		} else {
			c.log.Info("keep awake disabled", "pid", p.PID())
		}
		c.renderer.SetMenuLabel(LabelEnable)
		return err
	})
}

// Bootstrap enables keeping awake at startup. Unlike Activate it never
// turns an enabled toggle off.
func (c *Controller) Bootstrap() error {
	if !c.cap.Supported {
		c.log.Info("keep awake unsupported", "platform", c.cap.Platform)
		return ErrUnsupported
	}
	return c.store.Do(func(s *slot.Slot[power.Process]) error {
		if s.Drained() {
			return ErrQuitting
		}
		if s.Occupied() {
			return nil
		}
		return c.enable(s)
	})
}

// enable spawns the process into the empty slot s. Caller holds the lock.
func (c *Controller) enable(s *slot.Slot[power.Process]) error {
	p, err := c.spawner.Spawn(c.cap.Command, c.cap.Args)
	if err != nil {
		c.log.Warn("spawn failed", "command", c.cap.Command, "error", err)
		return err
	}
	if err := s.Put(p); err != nil {
		// Unreachable while the lock is held and the slot was checked.
		_ = p.Kill()
		return err
	}
	c.log.Info("keep awake enabled", "command", c.cap.String(), "pid", p.PID())
	c.renderer.SetMenuLabel(LabelDisable)
	return nil
}

// Quit drains the store, kills the process if one is held and asks the
// application to exit. The label is not updated. Events arriving after
// Quit fail with ErrQuitting.
func (c *Controller) Quit() error {
	err := c.store.Do(func(s *slot.Slot[power.Process]) error {
		p, ok := s.Drain()
		if !ok {
			return nil
		}
		err := p.Kill()
		switch {
		case err == nil:
			c.log.Info("process killed", "pid", p.PID())
		case errors.Is(err, os.ErrProcessDone):
			c.log.Info("process already exited", "pid", p.PID())
		default:
			c.log.Error("kill failed, process may outlive the application", "pid", p.PID(), "error", err)
		}
		return err
	})

	c.exitOnce.Do(func() {
		if c.exiter != nil {
			c.exiter.ExitApplication(0)
		}
	})
	return err
}
