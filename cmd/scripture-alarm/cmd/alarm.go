package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/service/manager"
)

// alarmFlags holds the values of the add and edit flags.
type alarmFlags struct {
	label      string
	days       string
	source     string
	category   string
	book       string
	chapter    int
	sequential bool
	disabled   bool
}

func (f *alarmFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.label, "label", "", "label shown with the alarm")
	flags.StringVar(&f.days, "days", "", `weekdays, e.g. "mon,wed,fri", "weekdays", "weekends", "daily" or "once"`)
	flags.StringVar(&f.source, "source", "",
		"scripture source: category, full-bible, old-testament, new-testament, specific-book, specific-chapter")
	flags.StringVar(&f.category, "category", "", "curated category for the category source, e.g. morning, psalms")
	flags.StringVar(&f.book, "book", "", "book for the specific-book and specific-chapter sources")
	flags.IntVar(&f.chapter, "chapter", 0, "chapter for the specific-chapter source")
	flags.BoolVar(&f.sequential, "sequential", false, "read the curated verses in order instead of at random")
	flags.BoolVar(&f.disabled, "disabled", false, "store the alarm switched off")
}

// apply copies the flags that were set onto r. With all it copies every flag.
func (f *alarmFlags) apply(flags *pflag.FlagSet, r *alarm.Record, all bool) error {
	changed := func(name string) bool {
		return all || flags.Changed(name)
	}

	if changed("label") {
		r.Label = f.label
	}

	if changed("days") {
		days, err := alarm.ParseDays(f.days)
		if err != nil {
			return err
		}

		r.Days = days
	}

	if changed("source") || changed("category") || changed("book") || changed("chapter") {
		source, category, book, chapter := f.source, f.category, f.book, f.chapter

		// Unchanged parts of the selector keep their stored values.
		if !changed("source") {
			source = string(r.Content.Source)
		}

		if !changed("category") {
			category = string(r.Content.Category)
		}

		if !changed("book") {
			book = r.Content.Book
		}

		if !changed("chapter") {
			chapter = r.Content.Chapter
		}

		sel, err := manager.ParseSelector(source, category, book, chapter)
		if err != nil {
			return err
		}

		r.Content = sel
	}

	if changed("sequential") {
		r.Sequential = f.sequential
	}

	if changed("disabled") {
		r.Enabled = !f.disabled
	}

	return nil
}

var (
	// alarmOptions collects the state file overrides of alarm commands.
	alarmOptions manager.Options

	addFlags  alarmFlags
	editFlags alarmFlags

	// alarmCmd groups the alarm list commands.
	alarmCmd = &cobra.Command{
		Use:   "alarm",
		Short: "Add, edit, list and remove alarms.",
	}

	alarmAddCmd = &cobra.Command{
		Use:   "add <time>",
		Short: "Add an alarm, e.g. `alarm add 6:30 --days weekdays --category morning`.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute, err := manager.ParseClock(args[0])
			if err != nil {
				return err
			}

			r := alarm.Record{Hour: hour, Minute: minute}
			if err = addFlags.apply(cmd.Flags(), &r, true); err != nil {
				return err
			}

			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				_, err := m.Add(ctx, r)

				return err
			})
		},
	}

	alarmEditCmd = &cobra.Command{
		Use:   "edit <alarm-id> [time]",
		Short: "Change an alarm; only the given flags are changed.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			hour, minute := -1, -1
			if len(args) == 2 {
				if hour, minute, err = manager.ParseClock(args[1]); err != nil {
					return err
				}
			}

			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				_, err := m.Edit(ctx, id, func(r *alarm.Record) error {
					if hour >= 0 {
						r.Hour, r.Minute = hour, minute
					}

					return editFlags.apply(cmd.Flags(), r, false)
				})

				return err
			})
		},
	}

	alarmListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.List(ctx)
			})
		},
	}

	alarmEnableCmd  = switchCommand("enable", "Switch an alarm on.", true)
	alarmDisableCmd = switchCommand("disable", "Switch an alarm off and cancel its timer.", false)

	alarmRemoveCmd = &cobra.Command{
		Use:     "remove <alarm-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.Remove(ctx, id)
			})
		},
	}

	// booksCmd lists the books of the scripture database.
	booksCmd = &cobra.Command{
		Use:   "books",
		Short: "List the books of the scripture database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				return m.Books(ctx)
			})
		},
	}
)

func switchCommand(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <alarm-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withManager(cmd, func(ctx context.Context, m *manager.Manager) error {
				_, err := m.SetEnabled(ctx, id, enabled)

				return err
			})
		},
	}
}

// withManager opens the state file for the duration of fn.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, m *manager.Manager) error) (err error) {
	ctx, stop := signalContext()
	defer stop()

	opts := alarmOptions
	opts.ConfigPath = configPath
	opts.Out = cmd.OutOrStdout()

	m, err := manager.Open(ctx, &opts)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, m.Close())
	}()

	return fn(ctx, m)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, command := range []*cobra.Command{alarmCmd, booksCmd, prefsCmd} {
		command.PersistentFlags().StringVarP(&alarmOptions.StateFile, "state-file", "s", "", "path of the state file")
		command.PersistentFlags().StringVar(&alarmOptions.BibleDB, "bible-db", "", "path of the SQLite scripture database")
	}

	addFlags.register(alarmAddCmd.Flags())
	editFlags.register(alarmEditCmd.Flags())

	alarmCmd.AddCommand(alarmAddCmd, alarmEditCmd, alarmListCmd, alarmEnableCmd, alarmDisableCmd, alarmRemoveCmd)
}
