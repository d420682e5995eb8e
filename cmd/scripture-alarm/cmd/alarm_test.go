package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

func parseAlarmFlags(t *testing.T, args ...string) (*alarmFlags, *pflag.FlagSet) {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	values := new(alarmFlags)
	values.register(flags)

	require.NoError(t, flags.Parse(args))

	return values, flags
}

// TestAlarmFlags_AddUsesEveryFlag builds a complete record for add.
func TestAlarmFlags_AddUsesEveryFlag(t *testing.T) {
	t.Parallel()

	values, flags := parseAlarmFlags(t, "--days", "weekdays", "--category", "morning", "--label", "Up")

	r := alarm.Record{Hour: 6}
	require.NoError(t, values.apply(flags, &r, true))
	require.Equal(t, alarm.Record{
		Hour:    6,
		Enabled: true,
		Label:   "Up",
		Days:    alarm.Weekdays,
		Content: alarm.ByCategory(alarm.CategoryMorning),
	}, r)
}

// TestAlarmFlags_EditKeepsUnchangedFields touches only the given flags.
func TestAlarmFlags_EditKeepsUnchangedFields(t *testing.T) {
	t.Parallel()

	stored := alarm.Record{
		ID:      3,
		Hour:    7,
		Enabled: true,
		Label:   "Keep me",
		Days:    alarm.Weekends,
		Content: alarm.SpecificChapter("John", 3),
	}

	values, flags := parseAlarmFlags(t, "--chapter", "11", "--disabled")

	r := stored
	require.NoError(t, values.apply(flags, &r, false))
	require.Equal(t, "Keep me", r.Label)
	require.Equal(t, alarm.Weekends, r.Days)
	require.Equal(t, alarm.SpecificChapter("John", 11), r.Content)
	require.False(t, r.Enabled)
}

// TestAlarmFlags_RejectsBadValues surfaces parse errors.
func TestAlarmFlags_RejectsBadValues(t *testing.T) {
	t.Parallel()

	values, flags := parseAlarmFlags(t, "--days", "someday")
	require.Error(t, values.apply(flags, new(alarm.Record), false))

	values, flags = parseAlarmFlags(t, "--source", "specific-book")
	require.Error(t, values.apply(flags, new(alarm.Record), false))
}

// TestParseID accepts positive integers only.
func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("12")
	require.NoError(t, err)
	require.Equal(t, 12, id)

	for _, bad := range []string{"0", "-3", "x"} {
		_, err = parseID(bad)
		require.Error(t, err, bad)
	}

	id, err = optionalID(nil)
	require.NoError(t, err)
	require.Zero(t, id)
}
