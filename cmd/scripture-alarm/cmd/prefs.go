package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/covertcloak/scripture-alarm/internal/service/manager"
)

var (
	// prefsCmd shows the speech preferences.
	prefsCmd = &cobra.Command{
		Use:   "prefs",
		Short: "Show the speech preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				m.ShowPreferences(ctx)

				return nil
			})
		},
	}

	prefsSetCmd = &cobra.Command{
		Use:   "set <rate|pitch|voice|name> <value>",
		Short: "Change a speech preference; it applies to the next alarm.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.SetPreference(ctx, args[0], args[1])
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	prefsCmd.AddCommand(prefsSetCmd)
}
