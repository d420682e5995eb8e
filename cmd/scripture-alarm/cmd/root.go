package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/covertcloak/scripture-alarm/internal/config"
	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the log level from the configuration file.
	logLevel string

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "scripture-alarm",
		Short: "Alarm clock that wakes you by reading scripture aloud.",
		Long: `Scripture alarm keeps a list of alarms and, when one fires, vibrates,
raises the volume gradually and reads a verse aloud until it is dismissed.

Run the daemon with "scripture-alarm run". The other commands edit the alarm
list or control a ringing alarm and talk to the daemon when it is running.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok && logLevel != "" {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd, alarmCmd, booksCmd, prefsCmd)
	rootCmd.AddCommand(controlCommands()...)
}

// signalContext is cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// optionalID parses the optional alarm id argument; none means 0.
func optionalID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}

	return parseID(args[0])
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid alarm id %q", arg)
	}

	return id, nil
}
