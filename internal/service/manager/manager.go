package manager

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/covertcloak/scripture-alarm/internal/api/grpc/control"
	"github.com/covertcloak/scripture-alarm/internal/config"
	"github.com/covertcloak/scripture-alarm/internal/content"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/preferences"
	"github.com/covertcloak/scripture-alarm/internal/repository/alarms"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

// Options configures the manager.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// StateFile overrides the state file from the settings.
	StateFile string
	// BibleDB overrides the scripture database from the settings.
	BibleDB string
	// Out receives listings and confirmations; os.Stdout when nil.
	Out io.Writer
}

// Notifier tells a running daemon that the store changed.
type Notifier func(ctx context.Context) error

// Manager edits alarms and preferences.
type Manager struct {
	records alarms.Repository
	prefs   *preferences.Store
	// bible validates book and chapter selectors; nil without a database.
	bible  *content.Bible
	notify Notifier
	out    io.Writer
}

// errNoBible is returned by Books when no scripture database is configured.
var errNoBible = errors.New("no scripture database configured (set bible_db)")

// Open loads the settings and opens the state file and optional database.
func Open(ctx context.Context, opts *Options) (*Manager, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.StateFile != "" {
		cfg.StateFile = opts.StateFile
	}

	if opts.BibleDB != "" {
		cfg.BibleDB = opts.BibleDB
	}

	var bible *content.Bible

	if cfg.BibleDB != "" {
		bible, err = content.OpenBible(ctx, cfg.BibleDB)
		if err != nil {
			return nil, err
		}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	store := kv.NewFileStore(cfg.StateFile)

	return &Manager{
		records: alarms.New(store),
		prefs:   preferences.New(store),
		bible:   bible,
		notify:  DaemonNotifier(cfg.ListenAddress, cfg.Timeout),
		out:     out,
	}, nil
}

// New builds a manager from its parts.
func New(records alarms.Repository, prefs *preferences.Store, bible *content.Bible, notify Notifier, out io.Writer) *Manager {
	return &Manager{
		records: records,
		prefs:   prefs,
		bible:   bible,
		notify:  notify,
		out:     out,
	}
}

// DaemonNotifier asks the daemon at address to reload its alarms.
func DaemonNotifier(address string, timeout time.Duration) Notifier {
	return func(ctx context.Context) error {
		client, err := control.Dial(ctx, address, control.WithCallTimeout(timeout))
		if err != nil {
			return err
		}

		defer func() {
			_ = client.Close()
		}()

		return client.Reload(ctx)
	}
}

// Close releases the scripture database.
func (m *Manager) Close() error {
	if m.bible == nil {
		return nil
	}

	return m.bible.Close()
}

// Add validates and stores a new alarm; its id is allocated by the store.
func (m *Manager) Add(ctx context.Context, r alarm.Record) (alarm.Record, error) {
	if err := m.check(ctx, r); err != nil {
		return alarm.Record{}, err
	}

	created, err := m.records.Create(ctx, r)
	if err != nil {
		return alarm.Record{}, fmt.Errorf("create alarm: %w", err)
	}

	_, _ = fmt.Fprintf(m.out, "Added alarm %d: %s\n", created.ID, describe(created))
	m.changed(ctx)

	return created, nil
}

// Edit applies change to the stored alarm id and saves it.
func (m *Manager) Edit(ctx context.Context, id int, change func(*alarm.Record) error) (alarm.Record, error) {
	r, err := m.records.Get(ctx, id)
	if err != nil {
		return alarm.Record{}, fmt.Errorf("load alarm %d: %w", id, err)
	}

	if err = change(&r); err != nil {
		return alarm.Record{}, err
	}

	r.ID = id

	if err = m.check(ctx, r); err != nil {
		return alarm.Record{}, err
	}

	if err = m.records.Upsert(ctx, r); err != nil {
		return alarm.Record{}, fmt.Errorf("save alarm %d: %w", id, err)
	}

	_, _ = fmt.Fprintf(m.out, "Updated alarm %d: %s\n", id, describe(r))
	m.changed(ctx)

	return r, nil
}

// SetEnabled switches an alarm on or off. Switching off cancels its timer.
func (m *Manager) SetEnabled(ctx context.Context, id int, enabled bool) (alarm.Record, error) {
	return m.Edit(ctx, id, func(r *alarm.Record) error {
		r.Enabled = enabled

		return nil
	})
}

// Remove deletes an alarm.
func (m *Manager) Remove(ctx context.Context, id int) error {
	if _, err := m.records.Get(ctx, id); err != nil {
		return fmt.Errorf("load alarm %d: %w", id, err)
	}

	if err := m.records.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove alarm %d: %w", id, err)
	}

	_, _ = fmt.Fprintf(m.out, "Removed alarm %d\n", id)
	m.changed(ctx)

	return nil
}

// List prints the alarms ordered by time of day. Enabled alarms are green,
// disabled ones dimmed.
func (m *Manager) List(ctx context.Context) error {
	records, err := m.records.List(ctx)
	if err != nil {
		return fmt.Errorf("list alarms: %w", err)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(m.out, "No alarms")

		return nil
	}

	slices.SortFunc(records, func(a, b alarm.Record) int {
		return cmp.Or(
			cmp.Compare(a.Hour*60+a.Minute, b.Hour*60+b.Minute),
			cmp.Compare(a.ID, b.ID),
		)
	})

	on := color.New(color.FgGreen)
	off := color.New(color.Faint)

	_, _ = fmt.Fprintf(m.out, "%-4s %-9s %-5s %-22s %-24s %s\n", "ID", "TIME", "STATE", "DAYS", "SCRIPTURE", "LABEL")

	for _, r := range records {
		state, paint := "on", on
		if !r.Enabled {
			state, paint = "off", off
		}

		scripture := r.Content.String()
		if r.Sequential {
			scripture += " (in order)"
		}

		_, _ = paint.Fprintf(m.out, "%-4d %-9s %-5s %-22s %-24s %s\n",
			r.ID, r.TimeString(), state, r.Days.String(), scripture, r.Label)
	}

	return nil
}

// Books prints the books of the scripture database with their chapter counts.
func (m *Manager) Books(ctx context.Context) error {
	if m.bible == nil {
		return errNoBible
	}

	books, err := m.bible.Books(ctx)
	if err != nil {
		return err
	}

	for _, b := range books {
		_, _ = fmt.Fprintf(m.out, "%-18s %-14s %3d chapters\n", b.Name, b.Testament, b.ChapterCount)
	}

	return nil
}

// check validates r and, with a database, that its book and chapter exist.
func (m *Manager) check(ctx context.Context, r alarm.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if r.Content.Source == alarm.SourceCategory {
		return nil
	}

	if m.bible == nil {
		logger.Warnf(ctx, "No scripture database configured, %s will be read from the built-in verses", r.Content)

		return nil
	}

	return m.bible.CheckSelector(ctx, r.Content)
}

// changed notifies the daemon. A daemon that is not running reads the
// store when it starts, so failures are only reported.
func (m *Manager) changed(ctx context.Context) {
	if m.notify == nil {
		return
	}

	if err := m.notify(ctx); err != nil {
		logger.WarnKV(ctx, "Daemon not reachable, changes apply when it starts", "error", err)
	}
}

func describe(r alarm.Record) string {
	parts := []string{r.TimeString(), r.Days.String(), r.Content.String()}
	if r.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", r.Label))
	}

	if !r.Enabled {
		parts = append(parts, "disabled")
	}

	return strings.Join(parts, ", ")
}
