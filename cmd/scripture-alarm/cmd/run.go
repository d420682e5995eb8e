package cmd

import (
	"github.com/spf13/cobra"

	"github.com/covertcloak/scripture-alarm/internal/service/daemon"
)

var (
	// runOptions collects the daemon flag overrides.
	runOptions daemon.Options

	// runCmd starts the daemon.
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the alarm daemon.",
		Long: `Arms every enabled alarm, serves the control API and rings alarms when
they fire. Only one daemon may use a state file at a time.

Stop it with Ctrl+C or SIGTERM; ringing alarms are silenced and the volume
is restored before it exits.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signalContext()
			defer stop()

			runOptions.ConfigPath = configPath

			return daemon.Run(ctx, &runOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().StringVarP(&runOptions.ListenAddress, "listen", "l", "", "control API listen address")
	runCmd.Flags().StringVarP(&runOptions.StateFile, "state-file", "s", "", "path of the state file")
	runCmd.Flags().StringVar(&runOptions.BibleDB, "bible-db", "", "path of the SQLite scripture database")
}
