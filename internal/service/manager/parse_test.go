package manager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

// TestParseClock accepts 24-hour and 12-hour forms.
func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in           string
		hour, minute int
	}{
		{in: "7:05", hour: 7, minute: 5},
		{in: "07:05", hour: 7, minute: 5},
		{in: "19:30", hour: 19, minute: 30},
		{in: "7:05 pm", hour: 19, minute: 5},
		{in: "12:00AM", hour: 0, minute: 0},
		{in: "6am", hour: 6, minute: 0},
	}

	for _, tt := range tests {
		hour, minute, err := ParseClock(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.hour, hour, tt.in)
		require.Equal(t, tt.minute, minute, tt.in)
	}

	for _, bad := range []string{"", "25:00", "7:60", "noon"} {
		_, _, err := ParseClock(bad)
		require.ErrorIs(t, err, errInvalidClock, bad)
	}
}

// TestParseSelector maps flag values onto selectors.
func TestParseSelector(t *testing.T) {
	t.Parallel()

	sel, err := ParseSelector("", "", "", 0)
	require.NoError(t, err)
	require.Equal(t, alarm.ByCategory(alarm.CategoryGeneral), sel)

	sel, err = ParseSelector("category", "psalms", "", 0)
	require.NoError(t, err)
	require.Equal(t, alarm.ByCategory(alarm.CategoryPsalms), sel)

	sel, err = ParseSelector("specific-chapter", "", " John ", 3)
	require.NoError(t, err)
	require.Equal(t, alarm.SpecificChapter("John", 3), sel)

	sel, err = ParseSelector("new_testament", "", "", 0)
	require.NoError(t, err)
	require.Equal(t, alarm.NewTestament(), sel)

	_, err = ParseSelector("apocrypha", "", "", 0)
	require.ErrorIs(t, err, alarm.ErrUnknownSource)

	_, err = ParseSelector("specific-chapter", "", "John", 0)
	require.Error(t, err)
}
