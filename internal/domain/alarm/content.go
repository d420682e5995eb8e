package alarm

import (
	"errors"
	"fmt"
	"strings"
)

// Source selects which part of the scripture an alarm reads from.
type Source string

// Supported scripture sources.
const (
	SourceCategory        Source = "CATEGORY"
	SourceFullBible       Source = "FULL_BIBLE"
	SourceOldTestament    Source = "OLD_TESTAMENT"
	SourceNewTestament    Source = "NEW_TESTAMENT"
	SourceSpecificBook    Source = "SPECIFIC_BOOK"
	SourceSpecificChapter Source = "SPECIFIC_CHAPTER"
)

// Category is a curated verse category.
type Category string

// Curated verse categories. CategoryGeneral is the baseline.
const (
	CategoryGeneral       Category = "GENERAL"
	CategoryMorning       Category = "MORNING"
	CategoryEncouragement Category = "ENCOURAGEMENT"
	CategoryGospelMatthew Category = "GOSPEL_MATTHEW"
	CategoryGospelMark    Category = "GOSPEL_MARK"
	CategoryGospelLuke    Category = "GOSPEL_LUKE"
	CategoryGospelJohn    Category = "GOSPEL_JOHN"
	CategoryPsalms        Category = "PSALMS"
	CategoryProverbs      Category = "PROVERBS"
)

var (
	// ErrUnknownSource is returned when a source token is not recognised.
	ErrUnknownSource = errors.New("unknown scripture source")
	// ErrUnknownCategory is returned when a category token is not recognised.
	ErrUnknownCategory = errors.New("unknown verse category")
	// errBookRequired is returned when a book-scoped selector has no book.
	errBookRequired = errors.New("book must be provided")
	// errChapterRequired is returned when a chapter selector has no chapter.
	errChapterRequired = errors.New("chapter must be positive")
)

// Categories returns every curated category in display order.
func Categories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryMorning,
		CategoryEncouragement,
		CategoryGospelMatthew,
		CategoryGospelMark,
		CategoryGospelLuke,
		CategoryGospelJohn,
		CategoryPsalms,
		CategoryProverbs,
	}
}

// Sources returns every scripture source in display order.
func Sources() []Source {
	return []Source{
		SourceCategory,
		SourceFullBible,
		SourceOldTestament,
		SourceNewTestament,
		SourceSpecificBook,
		SourceSpecificChapter,
	}
}

// ParseCategory converts a token into a Category (case-insensitive).
func ParseCategory(s string) (Category, error) {
	token := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range Categories() {
		if c == token {
			return c, nil
		}
	}

	return CategoryGeneral, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseSource converts a token into a Source (case-insensitive, '-' allowed for '_').
func ParseSource(s string) (Source, error) {
	token := Source(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, src := range Sources() {
		if src == token {
			return src, nil
		}
	}

	return SourceCategory, fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// ContentSelector chooses which content query runs when an alarm fires.
// Only the fields relevant to Source are meaningful; constructors keep the
// others at their baseline values so selectors compare equal after a
// persistence round trip.
type ContentSelector struct {
	// Source is the variant tag.
	Source Source
	// Category is used by SourceCategory.
	Category Category
	// Book is used by SourceSpecificBook and SourceSpecificChapter.
	Book string
	// Chapter is used by SourceSpecificChapter (1-based).
	Chapter int
}

// ByCategory selects a curated category.
func ByCategory(c Category) ContentSelector {
	return ContentSelector{Source: SourceCategory, Category: c}
}

// FullBible selects any verse of the whole bible.
func FullBible() ContentSelector {
	return ContentSelector{Source: SourceFullBible, Category: CategoryGeneral}
}

// OldTestament selects any verse of the Old Testament.
func OldTestament() ContentSelector {
	return ContentSelector{Source: SourceOldTestament, Category: CategoryGeneral}
}

// NewTestament selects any verse of the New Testament.
func NewTestament() ContentSelector {
	return ContentSelector{Source: SourceNewTestament, Category: CategoryGeneral}
}

// SpecificBook selects any verse of one book.
func SpecificBook(book string) ContentSelector {
	return ContentSelector{Source: SourceSpecificBook, Category: CategoryGeneral, Book: book}
}

// SpecificChapter selects any verse of one chapter of a book.
func SpecificChapter(book string, chapter int) ContentSelector {
	return ContentSelector{Source: SourceSpecificChapter, Category: CategoryGeneral, Book: book, Chapter: chapter}
}

// Validate checks that the variant has the fields it needs.
func (c ContentSelector) Validate() error {
	switch c.Source {
	case SourceCategory:
		if _, err := ParseCategory(string(c.Category)); err != nil {
			return err
		}
	case SourceFullBible, SourceOldTestament, SourceNewTestament:
	case SourceSpecificBook:
		if strings.TrimSpace(c.Book) == "" {
			return errBookRequired
		}
	case SourceSpecificChapter:
		if strings.TrimSpace(c.Book) == "" {
			return errBookRequired
		}

		if c.Chapter <= 0 {
			return errChapterRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}

	return nil
}

// String describes the selector for logs and listings.
func (c ContentSelector) String() string {
	switch c.Source {
	case SourceCategory:
		return "category " + strings.ToLower(string(c.Category))
	case SourceFullBible:
		return "full bible"
	case SourceOldTestament:
		return "old testament"
	case SourceNewTestament:
		return "new testament"
	case SourceSpecificBook:
		return c.Book
	case SourceSpecificChapter:
		return fmt.Sprintf("%s %d", c.Book, c.Chapter)
	default:
		return string(c.Source)
	}
}
