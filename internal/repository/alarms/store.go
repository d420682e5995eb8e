package alarms

import (
	"context"
	"errors"
	"fmt"
	"slices"

	domain "github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

// Key is the key-value entry that holds the encoded alarm list.
const Key = "alarms"

// ErrNotFound is returned when no alarm has the requested id.
var ErrNotFound = errors.New("alarm not found")

// Repository abstracts the alarm list for services and tests.
type Repository interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]domain.Record, error)
	// Get returns one record or ErrNotFound.
	Get(ctx context.Context, id int) (domain.Record, error)
	// Upsert replaces the record with the same id or appends it.
	Upsert(ctx context.Context, r domain.Record) error
	// Remove deletes the record; removing an unknown id is not an error.
	Remove(ctx context.Context, id int) error
	// NextID returns max(id)+1, or 1 for an empty list.
	NextID(ctx context.Context) (int, error)
	// Create assigns the next id to r and appends it in one step.
	Create(ctx context.Context, r domain.Record) (domain.Record, error)
}

// Store keeps the alarm list in a kv.Store.
// Every mutation is a single read-modify-write under the kv store's lock.
type Store struct {
	kv kv.Store
}

// New creates a Store on top of a key-value store.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// List loads the whole list. A list that was never written is empty.
func (s *Store) List(ctx context.Context) ([]domain.Record, error) {
	data, err := s.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("load alarms: %w", err)
	}

	return Decode(data), nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id int) (domain.Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return domain.Record{}, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return domain.Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return records[idx], nil
}

// Upsert replaces the record with the same id in place or appends it.
func (s *Store) Upsert(ctx context.Context, r domain.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	return s.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		if idx := indexOf(records, r.ID); idx >= 0 {
			records[idx] = r

			return records, nil
		}

		return append(records, r), nil
	})
}

// Remove deletes the record with the given id if it exists.
func (s *Store) Remove(ctx context.Context, id int) error {
	return s.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		return slices.DeleteFunc(records, func(r domain.Record) bool {
			return r.ID == id
		}), nil
	})
}

// NextID returns one more than the largest stored id.
func (s *Store) NextID(ctx context.Context) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	return nextID(records), nil
}

// Create assigns an id to r and stores it. The id allocation and the
// write happen under the same lock, so concurrent creates never collide.
func (s *Store) Create(ctx context.Context, r domain.Record) (domain.Record, error) {
	err := s.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		r.ID = nextID(records)
		if err := r.Validate(); err != nil {
			return nil, err
		}

		return append(records, r), nil
	})
	if err != nil {
		return domain.Record{}, err
	}

	return r, nil
}

// mutate applies fn to the decoded list and writes the result back.
func (s *Store) mutate(ctx context.Context, fn func([]domain.Record) ([]domain.Record, error)) error {
	err := s.kv.Update(ctx, Key, func(current string, _ bool) (string, error) {
		records, err := fn(Decode(current))
		if err != nil {
			return "", err
		}

		return Encode(records), nil
	})
	if err != nil {
		return fmt.Errorf("save alarms: %w", err)
	}

	return nil
}

func indexOf(records []domain.Record, id int) int {
	return slices.IndexFunc(records, func(r domain.Record) bool {
		return r.ID == id
	})
}

func nextID(records []domain.Record) int {
	highest := 0
	for _, r := range records {
		highest = max(highest, r.ID)
	}

	return highest + 1
}
