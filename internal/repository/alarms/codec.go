package alarms

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/covertcloak/scripture-alarm/internal/domain/alarm"
)

const (
	// recordSeparator joins encoded records.
	recordSeparator = "|"
	// fieldSeparator joins the fields of one record.
	fieldSeparator = ","
	// daySeparator joins weekday numbers inside the days field.
	daySeparator = ";"

	// minFields is the number of fields every record must have.
	minFields = 8
)

// Field positions within an encoded record.
const (
	fieldID = iota
	fieldHour
	fieldMinute
	fieldEnabled
	fieldLabel
	fieldDays
	fieldCategory
	fieldSequential
	fieldSource
	fieldBook
	fieldChapter
)

var (
	// errFieldCount is returned for a segment with too few fields.
	errFieldCount = errors.New("too few fields")
	// errDayOutOfRange is returned for a weekday number outside 1..7.
	errDayOutOfRange = errors.New("weekday out of range")
)

// textEscaper protects free-text fields from the reserved separators.
//
//nolint:gochecknoglobals // Immutable replacer shared by every encode call.
var textEscaper = strings.NewReplacer(
	"%", "%25",
	fieldSeparator, "%2C",
	recordSeparator, "%7C",
	"\n", "%0A",
)

// Encode serialises records in order.
func Encode(records []domain.Record) string {
	segments := make([]string, 0, len(records))
	for _, r := range records {
		segments = append(segments, encodeRecord(r))
	}

	return strings.Join(segments, recordSeparator)
}

// Decode parses an encoded list, silently dropping malformed segments.
func Decode(data string) []domain.Record {
	if strings.TrimSpace(data) == "" {
		return nil
	}

	segments := strings.Split(data, recordSeparator)
	records := make([]domain.Record, 0, len(segments))

	for _, segment := range segments {
		r, err := decodeRecord(segment)
		if err != nil {
			continue
		}

		records = append(records, r)
	}

	return records
}

// encodeRecord renders one record. Weekdays use 1 for Sunday through 7 for Saturday.
func encodeRecord(r domain.Record) string {
	days := make([]string, 0, 7)
	for _, day := range r.Days.List() {
		days = append(days, strconv.Itoa(int(day)+1))
	}

	category := r.Content.Category
	if category == "" {
		category = domain.CategoryGeneral
	}

	source := r.Content.Source
	if source == "" {
		source = domain.SourceCategory
	}

	fields := []string{
		strconv.Itoa(r.ID),
		strconv.Itoa(r.Hour),
		strconv.Itoa(r.Minute),
		strconv.FormatBool(r.Enabled),
		textEscaper.Replace(r.Label),
		strings.Join(days, daySeparator),
		string(category),
		strconv.FormatBool(r.Sequential),
		string(source),
		textEscaper.Replace(r.Content.Book),
		strconv.Itoa(r.Content.Chapter),
	}

	return strings.Join(fields, fieldSeparator)
}

// decodeRecord parses one segment. Trailing optional fields may be missing.
func decodeRecord(segment string) (domain.Record, error) {
	parts := strings.Split(segment, fieldSeparator)
	if len(parts) < minFields {
		return domain.Record{}, fmt.Errorf("%w: %d", errFieldCount, len(parts))
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[fieldID]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse id: %w", err)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[fieldHour]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse hour: %w", err)
	}

	minute, err := strconv.Atoi(strings.TrimSpace(parts[fieldMinute]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse minute: %w", err)
	}

	enabled, err := strconv.ParseBool(strings.TrimSpace(parts[fieldEnabled]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse enabled: %w", err)
	}

	days, err := decodeDays(parts[fieldDays])
	if err != nil {
		return domain.Record{}, err
	}

	sequential, err := strconv.ParseBool(strings.TrimSpace(parts[fieldSequential]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse sequential: %w", err)
	}

	// An unknown category degrades to the baseline instead of dropping the record.
	category, _ := domain.ParseCategory(parts[fieldCategory]) //nolint:errcheck // Fallback value is returned with the error.

	content := domain.ContentSelector{
		Source:   domain.SourceCategory,
		Category: category,
	}

	if len(parts) > fieldSource {
		if source, parseErr := domain.ParseSource(parts[fieldSource]); parseErr == nil {
			content.Source = source
		}
	}

	if len(parts) > fieldBook {
		content.Book = unescapeText(parts[fieldBook])
	}

	if len(parts) > fieldChapter {
		if chapter, parseErr := strconv.Atoi(strings.TrimSpace(parts[fieldChapter])); parseErr == nil {
			content.Chapter = chapter
		}
	}

	r := domain.Record{
		ID:         id,
		Hour:       hour,
		Minute:     minute,
		Enabled:    enabled,
		Label:      unescapeText(parts[fieldLabel]),
		Days:       days,
		Content:    content,
		Sequential: sequential,
	}

	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return domain.Record{}, fmt.Errorf("%w: time %02d:%02d", domain.ErrInvalidRecord, r.Hour, r.Minute)
	}

	return r, nil
}

// decodeDays parses the ';'-joined weekday numbers (1 = Sunday).
func decodeDays(field string) (domain.Days, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}

	var days domain.Days

	for _, token := range strings.Split(field, daySeparator) {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return 0, fmt.Errorf("parse weekday: %w", err)
		}

		if n < 1 || n > 7 {
			return 0, fmt.Errorf("%w: %d", errDayOutOfRange, n)
		}

		days = days.With(time.Weekday(n - 1))
	}

	return days, nil
}

// unescapeText reverses textEscaper. Text written before escaping existed
// is returned unchanged when it is not a valid escape sequence.
func unescapeText(s string) string {
	unescaped, err := url.PathUnescape(s)
	if err != nil {
		return s
	}

	return unescaped
}
