package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrItemNotFound = errors.New("item not found")

// Item is a persisted todo entry. CompletedAt is nil while the item is
// open and is set exactly once when the item is completed.
type Item struct {
	ID          string
	UserID      string
	Text        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CompleteResult is the outcome of a completion attempt.
type CompleteResult int

const (
	CompleteNotFound CompleteResult = iota
	CompleteOK
	CompleteAlreadyDone
)

// Repository is the exclusive custodian of persisted items. Every
// operation is scoped to the owning user; items belonging to other users
// are indistinguishable from items that do not exist.
type Repository interface {
	Add(ctx context.Context, userID, text string) (Item, error)
	Get(ctx context.Context, userID, itemID string) (Item, error)
	List(ctx context.Context, userID string) ([]Item, error)
	Complete(ctx context.Context, userID, itemID string) (CompleteResult, error)
	Delete(ctx context.Context, userID, itemID string) (bool, error)
}

const createItemsSQL = `
CREATE TABLE IF NOT EXISTS todo_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  text TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  completed_at INTEGER
)`

const createUserIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_todo_items_user_id ON todo_items (user_id)`

// SQLRepository stores items in a single SQLite table. The schema is
// created lazily the first time any operation touches the store.
type SQLRepository struct {
	DB  *sqlx.DB
	Now func() time.Time

	mu          sync.Mutex
	schemaReady bool
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// itemRow mirrors the table layout. Timestamps are Unix nanoseconds so
// that ordering and equality survive the round trip untouched.
type itemRow struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	Text        string        `db:"text"`
	CreatedAt   int64         `db:"created_at"`
	CompletedAt sql.NullInt64 `db:"completed_at"`
}

func (row itemRow) toItem() Item {
	item := Item{
		ID:        row.ID,
		UserID:    row.UserID,
		Text:      row.Text,
		CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
	}
	if row.CompletedAt.Valid {
		completed := time.Unix(0, row.CompletedAt.Int64).UTC()
		item.CompletedAt = &completed
	}
	return item
}

// ensureSchema creates the table and index once per process. Only
// success is remembered: a failure (for example the first caller's
// request being canceled mid-DDL) fails that one operation and the next
// caller retries the idempotent CREATE statements.
func (r *SQLRepository) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemaReady {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, createItemsSQL); err != nil {
		return fmt.Errorf("create todo_items table: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, createUserIndexSQL); err != nil {
		return fmt.Errorf("create todo_items index: %w", err)
	}
	r.schemaReady = true
	return nil
}

func (r *SQLRepository) Add(ctx context.Context, userID, text string) (Item, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return Item{}, err
	}

	item := Item{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: r.Now(),
	}

	query, args, err := sq.Insert("todo_items").
		Columns("id", "user_id", "text", "created_at", "completed_at").
		Values(item.ID, item.UserID, item.Text, item.CreatedAt.UnixNano(), nil).
		ToSql()
	if err != nil {
		return Item{}, err
	}
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (r *SQLRepository) Get(ctx context.Context, userID, itemID string) (Item, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return Item{}, err
	}

	query, args, err := sq.Select("id", "user_id", "text", "created_at", "completed_at").
		From("todo_items").
		Where(sq.Eq{"id": itemID, "user_id": userID}).
		ToSql()
	if err != nil {
		return Item{}, err
	}

	var row itemRow
	if err := r.DB.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	return row.toItem(), nil
}

func (r *SQLRepository) List(ctx context.Context, userID string) ([]Item, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query, args, err := sq.Select("id", "user_id", "text", "created_at", "completed_at").
		From("todo_items").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("completed_at IS NOT NULL", "created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []itemRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

// Complete is check-then-set: two concurrent completions of the same item
// may both observe it open, in which case the later write wins. The
// transition is still one-way.
func (r *SQLRepository) Complete(ctx context.Context, userID, itemID string) (CompleteResult, error) {
	item, err := r.Get(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return CompleteNotFound, nil
		}
		return CompleteNotFound, err
	}
	if item.CompletedAt != nil {
		return CompleteAlreadyDone, nil
	}

	query, args, err := sq.Update("todo_items").
		Set("completed_at", r.Now().UnixNano()).
		Where(sq.Eq{"id": itemID, "user_id": userID}).
		ToSql()
	if err != nil {
		return CompleteNotFound, err
	}
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return CompleteNotFound, fmt.Errorf("complete item: %w", err)
	}
	return CompleteOK, nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID, itemID string) (bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return false, err
	}

	query, args, err := sq.Delete("todo_items").
		Where(sq.Eq{"id": itemID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
