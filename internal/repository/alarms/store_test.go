package alarms

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.FileStore) {
	t.Helper()

	backing := kv.NewFileStore(filepath.Join(t.TempDir(), "state.yaml"))

	return New(backing), backing
}

func morningAlarm(id int) domain.Record {
	return domain.Record{
		ID:      id,
		Hour:    7,
		Minute:  0,
		Enabled: true,
		Days:    domain.NewDays(time.Monday, time.Wednesday, time.Friday),
		Content: domain.ByCategory(domain.CategoryMorning),
	}
}

// TestStore_EmptyList verifies a fresh store has no alarms and NextID is 1.
func TestStore_EmptyList(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	id, err := store.NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, id)

	_, err = store.Get(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestStore_UpsertReplacesInPlace verifies order is kept when a record is replaced.
func TestStore_UpsertReplacesInPlace(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, morningAlarm(1)))
	require.NoError(t, store.Upsert(ctx, morningAlarm(5)))

	changed := morningAlarm(1)
	changed.Hour = 9
	changed.Label = "Later"
	require.NoError(t, store.Upsert(ctx, changed))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, changed, records[0])
	require.Equal(t, 5, records[1].ID)

	id, err := store.NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, id)
}

// TestStore_UpsertInvalid verifies invalid records are rejected without writing.
func TestStore_UpsertInvalid(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	bad := morningAlarm(1)
	bad.Hour = 24
	require.ErrorIs(t, store.Upsert(ctx, bad), domain.ErrInvalidRecord)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
}

// TestStore_Remove verifies removal, including of unknown ids.
func TestStore_Remove(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, morningAlarm(1)))
	require.NoError(t, store.Upsert(ctx, morningAlarm(2)))
	require.NoError(t, store.Remove(ctx, 1))
	require.NoError(t, store.Remove(ctx, 42))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 2, records[0].ID)
}

// TestStore_SurvivesCorruptSegment verifies fail-soft loading through the store.
func TestStore_SurvivesCorruptSegment(t *testing.T) {
	t.Parallel()

	store, backing := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backing.Set(ctx, Key, "1,7,0,true,,2;4;6,MORNING,false|abc,xx|2,8,30,false,,,GENERAL,false"))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The next write drops the corrupt segment for good.
	require.NoError(t, store.Upsert(ctx, morningAlarm(3)))

	raw, err := backing.Get(ctx, Key)
	require.NoError(t, err)
	require.NotContains(t, raw, "abc")
}

// TestStore_ConcurrentCreate verifies ids stay unique under concurrent creation.
func TestStore_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 10

	var wg sync.WaitGroup

	errs := make(chan error, writers)

	for range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := store.Create(ctx, morningAlarm(0))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, writers)

	seen := make(map[int]bool, writers)
	for _, r := range records {
		require.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}
}
