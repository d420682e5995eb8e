package manager

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covertcloak/scripture-alarm/internal/content"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/preferences"
	"github.com/covertcloak/scripture-alarm/internal/repository/alarms"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

type fixture struct {
	manager  *Manager
	records  *alarms.Store
	prefs    *preferences.Store
	out      *bytes.Buffer
	notified int
}

func newFixture(t *testing.T, bible *content.Bible) *fixture {
	t.Helper()

	store := kv.NewFileStore(filepath.Join(t.TempDir(), "state.yaml"))
	f := &fixture{
		records: alarms.New(store),
		prefs:   preferences.New(store),
		out:     new(bytes.Buffer),
	}

	f.manager = New(f.records, f.prefs, bible, func(context.Context) error {
		f.notified++

		return errors.New("connection refused")
	}, f.out)

	return f
}

func openTestBible(t *testing.T) *content.Bible {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bible.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	_, err = db.Exec(`
CREATE TABLE books (id INTEGER PRIMARY KEY, name TEXT, abbreviation TEXT, testament TEXT, chapter_count INTEGER);
CREATE TABLE verses (book_id INTEGER, chapter INTEGER, verse INTEGER, text TEXT);
INSERT INTO books VALUES (19, 'Psalms', 'Ps', 'Old Testament', 150);
INSERT INTO verses VALUES (19, 23, 1, 'The LORD is my shepherd; I shall not want.');
`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	bible, err := content.OpenBible(context.Background(), path)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bible.Close()
	})

	return bible
}

// TestManager_AddEditRemove walks one alarm through its lifecycle and
// notifies the daemon after every change even when it is unreachable.
func TestManager_AddEditRemove(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.manager.Add(ctx, alarm.Record{
		Hour:    7,
		Enabled: true,
		Label:   "Morning",
		Days:    alarm.Weekdays,
		Content: alarm.ByCategory(alarm.CategoryMorning),
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.Equal(t, "Added alarm 1: 7:00 AM, Weekdays, category morning, \"Morning\"\n", f.out.String())

	edited, err := f.manager.Edit(ctx, created.ID, func(r *alarm.Record) error {
		r.Minute = 15

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 15, edited.Minute)

	disabled, err := f.manager.SetEnabled(ctx, created.ID, false)
	require.NoError(t, err)
	require.False(t, disabled.Enabled)

	stored, err := f.records.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, disabled, stored)

	require.NoError(t, f.manager.Remove(ctx, created.ID))
	require.ErrorIs(t, f.manager.Remove(ctx, created.ID), alarms.ErrNotFound)
	require.Equal(t, 4, f.notified)
}

// TestManager_RejectsInvalid keeps bad records out of the store.
func TestManager_RejectsInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.manager.Add(ctx, alarm.Record{Hour: 24, Content: alarm.FullBible()})
	require.ErrorIs(t, err, alarm.ErrInvalidRecord)

	_, err = f.manager.Edit(ctx, 42, func(*alarm.Record) error { return nil })
	require.ErrorIs(t, err, alarms.ErrNotFound)

	records, err := f.records.List(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Zero(t, f.notified)
}

// TestManager_ChecksBookAgainstDatabase validates book and chapter names.
func TestManager_ChecksBookAgainstDatabase(t *testing.T) {
	t.Parallel()

	f := newFixture(t, openTestBible(t))
	ctx := context.Background()

	_, err := f.manager.Add(ctx, alarm.Record{Hour: 6, Content: alarm.SpecificChapter("Psalms", 23)})
	require.NoError(t, err)

	_, err = f.manager.Add(ctx, alarm.Record{Hour: 6, Content: alarm.SpecificChapter("Psalms", 151)})
	require.ErrorIs(t, err, content.ErrNoVerse)

	_, err = f.manager.Add(ctx, alarm.Record{Hour: 6, Content: alarm.SpecificBook("Hezekiah")})
	require.ErrorIs(t, err, content.ErrNoVerse)

	f.out.Reset()
	require.NoError(t, f.manager.Books(ctx))
	require.Contains(t, f.out.String(), "Psalms")
	require.Contains(t, f.out.String(), "150 chapters")
}

// TestManager_BooksWithoutDatabase reports the missing setting.
func TestManager_BooksWithoutDatabase(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.ErrorIs(t, f.manager.Books(context.Background()), errNoBible)
}

// TestManager_List orders by time of day.
func TestManager_List(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.manager.List(ctx))
	require.Equal(t, "No alarms\n", f.out.String())

	for _, r := range []alarm.Record{
		{Hour: 21, Enabled: true, Label: "Evening", Content: alarm.ByCategory(alarm.CategoryPsalms)},
		{Hour: 6, Minute: 30, Label: "Early", Days: alarm.EveryDay, Content: alarm.FullBible(), Sequential: true},
	} {
		_, err := f.manager.Add(ctx, r)
		require.NoError(t, err)
	}

	f.out.Reset()
	require.NoError(t, f.manager.List(ctx))

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "ID"))
	require.Contains(t, lines[1], "6:30 AM")
	require.Contains(t, lines[1], "off")
	require.Contains(t, lines[1], "Every day")
	require.Contains(t, lines[1], "(in order)")
	require.Contains(t, lines[2], "9:00 PM")
	require.Contains(t, lines[2], "on")
}

// TestManager_Preferences stores and shows speech preferences.
func TestManager_Preferences(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.manager.SetPreference(ctx, "rate", "1.2"))
	require.NoError(t, f.manager.SetPreference(ctx, "Name", " Ruth "))
	require.Error(t, f.manager.SetPreference(ctx, "pitch", "-1"))
	require.Error(t, f.manager.SetPreference(ctx, "pitch", "high"))
	require.ErrorIs(t, f.manager.SetPreference(ctx, "volume", "11"), errUnknownPreference)

	speech := f.prefs.Load(ctx)
	require.InDelta(t, 1.2, speech.Rate, 1e-9)
	require.Equal(t, "Ruth", speech.UserName)

	f.out.Reset()
	f.manager.ShowPreferences(ctx)
	require.Contains(t, f.out.String(), "rate   1.20")
	require.Contains(t, f.out.String(), "pitch  1.00")
	require.Contains(t, f.out.String(), "voice  (engine default)")
	require.Contains(t, f.out.String(), "name   Ruth")
}
