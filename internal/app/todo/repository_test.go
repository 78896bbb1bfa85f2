package todo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoapp/server/internal/platform/sqlitedb"
)

func newTestRepository(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := sqlitedb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db)
}

// tickingClock hands out strictly increasing timestamps one second apart.
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func TestAddAndGetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Add(ctx, "user-a", "Buy eggs")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err, "item id should be a uuid")

	got, err := repo.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "user-a", got.UserID)
	assert.Equal(t, "Buy eggs", got.Text)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.CompletedAt)
}

func TestGetUnknownItem(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background(), "user-a", uuid.NewString())
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestOwnershipIsolation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Add(ctx, "user-a", "secret errand")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "user-b", created.ID)
	assert.ErrorIs(t, err, ErrItemNotFound, "another user's item must look nonexistent")

	result, err := repo.Complete(ctx, "user-b", created.ID)
	require.NoError(t, err)
	assert.Equal(t, CompleteNotFound, result)

	deleted, err := repo.Delete(ctx, "user-b", created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// The rightful owner is unaffected.
	got, err := repo.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestCompleteIsIdempotentAndOneWay(t *testing.T) {
	repo := newTestRepository(t)
	repo.Now = tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := repo.Add(ctx, "user-a", "water plants")
	require.NoError(t, err)

	result, err := repo.Complete(ctx, "user-a", created.ID)
	require.NoError(t, err)
	require.Equal(t, CompleteOK, result)

	first, err := repo.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	result, err = repo.Complete(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, CompleteAlreadyDone, result)

	second, err := repo.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt), "completion timestamp must not move")
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepository(t)
	repo.Now = tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := repo.Add(ctx, "user-a", "first")
	require.NoError(t, err)
	second, err := repo.Add(ctx, "user-a", "second")
	require.NoError(t, err)
	third, err := repo.Add(ctx, "user-a", "third")
	require.NoError(t, err)

	// Completing the first item moves it behind the open items.
	result, err := repo.Complete(ctx, "user-a", first.ID)
	require.NoError(t, err)
	require.Equal(t, CompleteOK, result)

	items, err := repo.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, third.ID, items[1].ID)
	assert.Equal(t, first.ID, items[2].ID)
}

func TestListScopedToUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, "user-a", "mine")
	require.NoError(t, err)
	_, err = repo.Add(ctx, "user-b", "theirs")
	require.NoError(t, err)

	items, err := repo.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mine", items[0].Text)
}

func TestSchemaEnsureRecoversAfterCanceledRequest(t *testing.T) {
	repo := newTestRepository(t)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Add(canceled, "user-a", "doomed")
	require.Error(t, err, "a canceled request must fail")

	// The next caller retries the schema creation and succeeds.
	created, err := repo.Add(context.Background(), "user-a", "healthy")
	require.NoError(t, err, "a healthy request after a canceled one must succeed")

	got, err := repo.Get(context.Background(), "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "healthy", got.Text)
}

func TestDeleteThenOperate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Add(ctx, "user-a", "short-lived")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "user-a", created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.Get(ctx, "user-a", created.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	result, err := repo.Complete(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, CompleteNotFound, result)

	deleted, err = repo.Delete(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
