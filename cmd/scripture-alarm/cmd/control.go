package cmd

import (
	"github.com/spf13/cobra"

	"github.com/covertcloak/scripture-alarm/internal/service/client"
)

// serverAddress overrides the daemon address for control commands.
//
//nolint:gochecknoglobals // Cobra flag storage.
var serverAddress string

// controlCommands builds dismiss, snooze, read-again and status.
func controlCommands() []*cobra.Command {
	newCommand := func(use, short string, action client.Action, takesID bool) *cobra.Command {
		positional := cobra.NoArgs
		if takesID {
			positional = cobra.MaximumNArgs(1)
		}

		command := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  positional,
			RunE: func(cmd *cobra.Command, args []string) error {
				alarmID, err := optionalID(args)
				if err != nil {
					return err
				}

				ctx, stop := signalContext()
				defer stop()

				return client.Run(ctx, &client.Options{
					ConfigPath:    configPath,
					ServerAddress: serverAddress,
					Action:        action,
					AlarmID:       alarmID,
					Out:           cmd.OutOrStdout(),
				})
			},
		}

		command.Flags().StringVarP(&serverAddress, "server", "a", "", "daemon address (default from settings)")

		return command
	}

	return []*cobra.Command{
		newCommand("dismiss [alarm-id]", "Dismiss the ringing alarm, or all of them.", client.ActionDismiss, true),
		newCommand("snooze [alarm-id]", "Snooze the ringing alarm, or all of them.", client.ActionSnooze, true),
		newCommand("read-again [alarm-id]", "Read the verse of the ringing alarm again.", client.ActionReadAgain, true),
		newCommand("status", "Show ringing alarms and armed timers.", client.ActionStatus, false),
		newCommand("reload", "Make the daemon re-read the alarm list.", client.ActionReload, false),
	}
}
