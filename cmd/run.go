package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scienceol/awake/internal/config"
	"github.com/scienceol/awake/internal/control"
	"github.com/scienceol/awake/internal/logging"
	"github.com/scienceol/awake/internal/menu"
	"github.com/scienceol/awake/internal/power"
	"github.com/scienceol/awake/internal/slot"
	"github.com/scienceol/awake/internal/toggle"
	"github.com/scienceol/awake/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"vawter.tech/stopper"
)

const stopGrace = 2 * time.Second

var (
	flagLogLevel string
	flagLogFile  string
	flagControl  string
	flagNoStart  bool
	flagHeadless bool
)

func addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&flagLogFile, "log-file", "", "Log file (default: ~/.awake/awake.log)")
	fs.StringVar(&flagControl, "control", "", "Serve the websocket control channel on this loopback address (e.g. 127.0.0.1:7465)")
	fs.BoolVar(&flagNoStart, "no-start", false, "Do not keep awake until toggled on")
	fs.BoolVar(&flagHeadless, "headless", false, "Run without the terminal menu")
}

func runOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:    flagLogLevel,
		LogFile:     flagLogFile,
		ControlAddr: flagControl,
		NoStart:     flagNoStart,
		Headless:    flagHeadless,
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the machine awake and show the toggle menu",
	Long: `Starts the sleep inhibitor (unless --no-start) and shows a menu with
the toggle action and Quit. Quitting, Ctrl+C and SIGTERM always stop the
inhibitor before exiting.

With --control, other programs can send activate/quit/status over a
websocket and receive every label change.`,
	RunE: runApp,
}

// exitSignal records the exit request from the controller.
type exitSignal struct {
	once sync.Once
	code int
	done chan struct{}
}

func (e *exitSignal) ExitApplication(code int) {
	e.once.Do(func() {
		e.code = code
		close(e.done)
	})
}

func runApp(cmd *cobra.Command, args []string) error {
	cfgPath := configPath()
	cfg, err := config.Load(cfgPath, runOverrides())
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level := new(slog.LevelVar)
	level.Set(logging.ParseLevel(cfg.LogLevel))
	logger, closeLog, err := logging.Setup(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	capability := power.Detect()

	ui.Banner(version)
	fmt.Fprintln(os.Stderr)
	ui.KeyValue("Inhibitor", capability.String())
	ui.KeyValue("Log file", cfg.LogFile)

	sctx := stopper.WithContext(cmd.Context())
	defer func() {
		sctx.Stop(stopGrace)
		_ = sctx.Wait()
	}()

	exit := &exitSignal{done: make(chan struct{})}
	renderers := toggle.MultiRenderer{}
	exiters := []toggle.Exiter{exit}

	var menuRenderer *menu.Renderer
	if cfg.Headless {
		renderers = append(renderers, ui.Console{})
	} else {
		menuRenderer = &menu.Renderer{}
		renderers = append(renderers, menuRenderer)
		exiters = append(exiters, menuRenderer)
	}

	var ctrlSrv *control.Server
	if cfg.ControlAddr != "" {
		ctrlSrv = control.New(logger)
		renderers = append(renderers, ctrlSrv)
	}

	ctrl := toggle.New(toggle.Options{
		Store:      slot.New[power.Process](),
		Spawner:    power.ExecSpawner{},
		Capability: capability,
		Renderer:   renderers,
		Exiter: toggle.ExiterFunc(func(code int) {
			for _, e := range exiters {
				e.ExitApplication(code)
			}
		}),
		Logger: logger,
	})
	// Whatever ends the run, the inhibitor does not outlive it.
	defer ctrl.Quit()

	if ctrlSrv != nil {
		ctrlSrv.SetController(ctrl)
		addr, err := ctrlSrv.Serve(sctx, cfg.ControlAddr)
		if err != nil {
			return err
		}
		ui.KeyValue("Control", "ws://"+addr.String()+control.Path)
	}
	ui.Separator()

	if err := config.Watch(sctx, cfgPath, func(c *config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", "path", cfgPath, "error", err)
			return
		}
		if !logging.ValidLevel(c.LogLevel) {
			logger.Warn("config reload: invalid log level", "level", c.LogLevel)
			return
		}
		level.Set(logging.ParseLevel(c.LogLevel))
		logger.Info("log level changed", "level", c.LogLevel)
	}); err != nil {
		logger.Debug("config watch disabled", "path", cfgPath, "error", err)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	sctx.Go(func(sctx *stopper.Context) error {
		select {
		case sig := <-sigCh:
			logger.Info("signal received", "signal", sig.String())
			_ = ctrl.Quit()
		case <-sctx.Stopping():
		}
		return nil
	})

	if !capability.Supported {
		ui.Warn("Keeping awake is not supported on %s", capability.Platform)
	}

	bootstrap := func() {
		if cfg.ActivateOnStart {
			// Logged by the controller on failure.
			_ = ctrl.Bootstrap()
		}
	}

	if cfg.Headless {
		ui.Info("Running headless, Ctrl+C to quit")
		bootstrap()
		<-exit.done
	} else {
		model := menu.New(ctrl, ctrl.Label(), func() tea.Msg {
			bootstrap()
			return nil
		})
		prog := tea.NewProgram(model, tea.WithoutSignalHandler())
		menuRenderer.Attach(prog)
		if _, err := prog.Run(); err != nil {
			return fmt.Errorf("menu: %w", err)
		}
	}

	select {
	case <-exit.done:
		logger.Info("exiting", "code", exit.code)
	default:
		logger.Info("menu closed")
	}
	return nil
}
