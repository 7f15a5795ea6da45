package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ~/.awake/config.yaml)")
	addRunFlags(rootCmd.PersistentFlags())
}

var rootCmd = &cobra.Command{
	Use:   "awake",
	Short: "Keep this machine from sleeping, toggled from a menu",
	Long: `awake keeps the machine awake by holding a single sleep inhibitor
process (caffeinate on macOS, systemd-inhibit on Linux). A terminal menu
flips it on and off; quitting always stops the process.

Running awake without a subcommand is the same as "awake run".`,
	SilenceUsage: true,
	RunE:         runApp,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
