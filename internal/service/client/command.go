package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/fatih/color"

	"github.com/covertcloak/scripture-alarm/internal/api/grpc/control"
	"github.com/covertcloak/scripture-alarm/internal/config"
	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// Action is one control request sent to the daemon.
type Action string

// Supported actions.
const (
	ActionDismiss   Action = "dismiss"
	ActionSnooze    Action = "snooze"
	ActionReadAgain Action = "read-again"
	ActionStatus    Action = "status"
	ActionReload    Action = "reload"
)

// Options configures a control request.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the daemon address from config when specified.
	ServerAddress string

	// Action selects the request.
	Action Action

	// AlarmID addresses one alert; 0 addresses every active alert.
	AlarmID int

	// Out receives the human-readable result; os.Stdout when nil.
	Out io.Writer
}

// errUnknownAction is returned for an Action outside the supported set.
var errUnknownAction = errors.New("unknown control action")

// Run connects to the daemon and performs opts.Action.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "scripture-alarm-control")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use daemon address from options if provided, otherwise use config.
	address := cfg.ListenAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	client, err := control.Dial(ctx, address, control.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Sending control request", "address", address, "action", opts.Action, "alarm_id", opts.AlarmID)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return perform(ctx, client, opts.Action, opts.AlarmID, out)
}

func perform(ctx context.Context, client *control.Client, action Action, alarmID int, out io.Writer) error {
	switch action {
	case ActionDismiss:
		count, err := client.Dismiss(ctx, alarmID)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "Dismissed %s\n", plural(count, "alert"))
	case ActionSnooze:
		snoozed, err := client.Snooze(ctx, alarmID)
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(snoozed))
		for id := range snoozed {
			ids = append(ids, id)
		}

		slices.Sort(ids)

		for _, id := range ids {
			_, _ = fmt.Fprintf(out, "Alarm %d snoozed until %s\n", id, snoozed[id].Local().Format(time.Kitchen))
		}
	case ActionReadAgain:
		count, err := client.ReadAgain(ctx, alarmID)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "Reading again for %s\n", plural(count, "alert"))
	case ActionStatus:
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}

		writeStatus(out, status)
	case ActionReload:
		if err := client.Reload(ctx); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, "Alarms reloaded")
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}

	return nil
}

// writeStatus prints active alerts first, highlighted, then the armed timers.
func writeStatus(out io.Writer, status *control.Status) {
	ringing := color.New(color.FgRed, color.Bold)

	if len(status.Sessions) == 0 {
		_, _ = fmt.Fprintln(out, "No active alerts")
	}

	for _, s := range status.Sessions {
		line := fmt.Sprintf("Alarm %d %q ringing since %s [%s]",
			s.AlarmID, s.Label, s.StartedAt.Local().Format(time.Kitchen), s.State)
		if s.Degraded {
			line += " (speech unavailable)"
		}

		_, _ = ringing.Fprintln(out, line)

		if s.Reference != "" {
			_, _ = fmt.Fprintf(out, "  %s: %s\n", s.Reference, s.Text)
		}
	}

	if len(status.Timers) == 0 {
		_, _ = fmt.Fprintln(out, "No alarms armed")

		return
	}

	for _, entry := range status.Timers {
		_, _ = fmt.Fprintf(out, "Alarm %d fires %s\n", entry.AlarmID, entry.FiresAt.Local().Format("Mon Jan 2 3:04 PM"))
	}
}

func plural(count int, noun string) string {
	if count == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", count, noun)
}
