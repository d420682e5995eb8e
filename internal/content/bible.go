package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

// Testament names as stored in the books table.
const (
	TestamentOld = "Old Testament"
	TestamentNew = "New Testament"
)

// Book is one row of the books table.
type Book struct {
	ID           int
	Name         string
	Abbreviation string
	Testament    string
	ChapterCount int
}

// Bible serves verses from a read-only SQLite scripture database with tables
// books(id, name, abbreviation, testament, chapter_count) and
// verses(book_id, chapter, verse, text).
type Bible struct {
	db   *sql.DB
	path string
}

// OpenBible opens the database at path in read-only mode and checks it.
func OpenBible(ctx context.Context, path string) (*Bible, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("bible database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open bible database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping bible database: %w", err)
	}

	return &Bible{db: db, path: path}, nil
}

// Close releases the database handle.
func (b *Bible) Close() error {
	return b.db.Close()
}

// RandomVerse picks one verse from the part of the bible sel describes.
// Curated categories are not stored in the database and yield ErrNoVerse.
func (b *Bible) RandomVerse(ctx context.Context, sel alarm.ContentSelector) (Verse, error) {
	const base = `SELECT b.name, v.chapter, v.verse, v.text
	FROM verses v
	JOIN books b ON v.book_id = b.id`

	var (
		where string
		args  []any
	)

	switch sel.Source {
	case alarm.SourceFullBible:
	case alarm.SourceOldTestament:
		where, args = " WHERE b.testament = ?", []any{TestamentOld}
	case alarm.SourceNewTestament:
		where, args = " WHERE b.testament = ?", []any{TestamentNew}
	case alarm.SourceSpecificBook:
		where, args = " WHERE b.name = ? COLLATE NOCASE", []any{sel.Book}
	case alarm.SourceSpecificChapter:
		where, args = " WHERE b.name = ? COLLATE NOCASE AND v.chapter = ?", []any{sel.Book, sel.Chapter}
	default:
		return Verse{}, fmt.Errorf("%w: %s", ErrNoVerse, sel)
	}

	row := b.db.QueryRowContext(ctx, base+where+" ORDER BY RANDOM() LIMIT 1", args...)

	v := Verse{Category: alarm.CategoryGeneral}
	if err := row.Scan(&v.Book, &v.Chapter, &v.Verse, &v.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Verse{}, fmt.Errorf("%w: %s", ErrNoVerse, sel)
		}

		return Verse{}, fmt.Errorf("query verse: %w", err)
	}

	return v, nil
}

// Books lists every book in canonical order.
func (b *Bible) Books(ctx context.Context) ([]Book, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, name, abbreviation, testament, chapter_count FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []Book

	for rows.Next() {
		var book Book
		if err = rows.Scan(&book.ID, &book.Name, &book.Abbreviation, &book.Testament, &book.ChapterCount); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}

		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

// ChapterCount returns the number of chapters of a book, or 0 for an unknown book.
func (b *Bible) ChapterCount(ctx context.Context, book string) (int, error) {
	var count int

	err := b.db.QueryRowContext(ctx,
		`SELECT chapter_count FROM books WHERE name = ? COLLATE NOCASE`, book).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("query chapter count: %w", err)
	}

	return count, nil
}

// CheckSelector verifies that the book and chapter named by sel exist.
func (b *Bible) CheckSelector(ctx context.Context, sel alarm.ContentSelector) error {
	if sel.Source != alarm.SourceSpecificBook && sel.Source != alarm.SourceSpecificChapter {
		return nil
	}

	count, err := b.ChapterCount(ctx, sel.Book)
	if err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: unknown book %q", ErrNoVerse, sel.Book)
	}

	if sel.Source == alarm.SourceSpecificChapter && sel.Chapter > count {
		return fmt.Errorf("%w: %s has %d chapters", ErrNoVerse, sel.Book, count)
	}

	return nil
}
