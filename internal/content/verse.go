package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

// ErrNoVerse is returned when a provider has nothing matching the selector.
var ErrNoVerse = errors.New("no matching verse")

// Verse is one scripture verse.
type Verse struct {
	Book     string
	Chapter  int
	Verse    int
	Text     string
	Category alarm.Category
}

// Reference formats the verse location, e.g. "John 3:16".
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// Provider returns random verses matching a selector.
type Provider interface {
	RandomVerse(ctx context.Context, sel alarm.ContentSelector) (Verse, error)
}

// DefaultVerse is read when every provider fails.
func DefaultVerse() Verse {
	return Verse{
		Book:     "Psalm",
		Chapter:  23,
		Verse:    1,
		Text:     "The Lord is my shepherd; I shall not want.",
		Category: alarm.CategoryPsalms,
	}
}
