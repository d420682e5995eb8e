package manager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

// errInvalidClock is returned for a time of day that cannot be parsed.
var errInvalidClock = errors.New("invalid time of day")

// clockLayouts are tried in order; input is upper-cased first.
//
//nolint:gochecknoglobals // Read-only parse table.
var clockLayouts = []string{"15:04", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// ParseClock parses "7:05", "19:05", "7:05 PM" or "7pm" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	token := strings.ToUpper(strings.TrimSpace(s))

	for _, layout := range clockLayouts {
		t, parseErr := time.Parse(layout, token)
		if parseErr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}

	return 0, 0, fmt.Errorf("%w: %q", errInvalidClock, s)
}

// ParseSelector builds a content selector from command line values. An empty
// source means a curated category, GENERAL when category is empty too.
func ParseSelector(source, category, book string, chapter int) (alarm.ContentSelector, error) {
	src := alarm.SourceCategory

	if strings.TrimSpace(source) != "" {
		parsed, err := alarm.ParseSource(source)
		if err != nil {
			return alarm.ContentSelector{}, err
		}

		src = parsed
	}

	var sel alarm.ContentSelector

	switch src {
	case alarm.SourceCategory:
		c := alarm.CategoryGeneral

		if strings.TrimSpace(category) != "" {
			parsed, err := alarm.ParseCategory(category)
			if err != nil {
				return alarm.ContentSelector{}, err
			}

			c = parsed
		}

		sel = alarm.ByCategory(c)
	case alarm.SourceFullBible:
		sel = alarm.FullBible()
	case alarm.SourceOldTestament:
		sel = alarm.OldTestament()
	case alarm.SourceNewTestament:
		sel = alarm.NewTestament()
	case alarm.SourceSpecificBook:
		sel = alarm.SpecificBook(strings.TrimSpace(book))
	case alarm.SourceSpecificChapter:
		sel = alarm.SpecificChapter(strings.TrimSpace(book), chapter)
	}

	if err := sel.Validate(); err != nil {
		return alarm.ContentSelector{}, err
	}

	return sel, nil
}
