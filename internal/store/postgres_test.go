package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier rejoue des résultats préparés à la place d'un pgxpool.Pool
type fakeQuerier struct {
	row     fakeRow
	rows    *fakeRows
	rowsErr error

	lastSQL  string
	lastArgs []any
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.CommandTag{}, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	values  [][]any
	scanErr error
	err     error
	pos     int
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.values[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return assign(r.values[r.pos-1], dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d targets", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *[]byte:
			*d = v.([]byte)
		case *int64:
			*d = v.(int64)
		default:
			return fmt.Errorf("scan: unsupported target %T", dest[i])
		}
	}
	return nil
}

func newFakePostgresStore(q *fakeQuerier) *PostgresStore {
	return &PostgresStore{db: q, table: "kv_store"}
}

func TestPostgresStoreGet(t *testing.T) {
	ctx := context.Background()

	q := &fakeQuerier{row: fakeRow{values: []any{[]byte(`{"points":5}`), int64(3)}}}
	e, err := newFakePostgresStore(q).Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, Entry{Key: "user:1", Value: []byte(`{"points":5}`), Version: 3}, e)
	assert.Contains(t, q.lastSQL, "FROM kv_store")
	assert.Equal(t, []any{"user:1"}, q.lastArgs)

	q = &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err = newFakePostgresStore(q).Get(ctx, "user:1")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("connection reset")
	q = &fakeQuerier{row: fakeRow{err: boom}}
	_, err = newFakePostgresStore(q).Get(ctx, "user:1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "get user:1")
}

func TestPostgresStoreSetWrapsErrors(t *testing.T) {
	boom := errors.New("disk full")
	q := &fakeQuerier{row: fakeRow{err: boom}}

	_, err := newFakePostgresStore(q).Set(context.Background(), "user:1", []byte(`{}`))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "set user:1")
}

func TestPostgresStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()

	q := &fakeQuerier{row: fakeRow{values: []any{int64(1)}}}
	v, err := newFakePostgresStore(q).CompareAndSwap(ctx, "user:1", []byte(`{}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Contains(t, q.lastSQL, "ON CONFLICT (key) DO NOTHING")

	q = &fakeQuerier{row: fakeRow{values: []any{int64(4)}}}
	v, err = newFakePostgresStore(q).CompareAndSwap(ctx, "user:1", []byte(`{}`), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
	assert.Contains(t, q.lastSQL, "WHERE key = $1 AND version = $3")
	assert.Equal(t, int64(3), q.lastArgs[2])

	// Aucune ligne retournée: clé déjà créée ou version périmée
	q = &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err = newFakePostgresStore(q).CompareAndSwap(ctx, "user:1", []byte(`{}`), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)
	_, err = newFakePostgresStore(q).CompareAndSwap(ctx, "user:1", []byte(`{}`), 7)
	assert.ErrorIs(t, err, ErrVersionConflict)

	boom := errors.New("serialization failure")
	q = &fakeQuerier{row: fakeRow{err: boom}}
	_, err = newFakePostgresStore(q).CompareAndSwap(ctx, "user:1", []byte(`{}`), 7)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}

func TestPostgresStoreList(t *testing.T) {
	ctx := context.Background()

	rows := &fakeRows{values: [][]any{
		{"user:1", []byte(`{}`), int64(1)},
		{"user:2", []byte(`{}`), int64(2)},
	}}
	q := &fakeQuerier{rows: rows}
	entries, err := newFakePostgresStore(q).List(ctx, "user_%:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user:2", entries[1].Key)
	assert.Equal(t, []any{`user\_\%:%`}, q.lastArgs)
	assert.True(t, rows.closed)

	boom := errors.New("timeout")
	_, err = newFakePostgresStore(&fakeQuerier{rowsErr: boom}).List(ctx, "user:")
	assert.ErrorIs(t, err, boom)

	rows = &fakeRows{values: [][]any{{"user:1", []byte(`{}`), int64(1)}}, scanErr: boom}
	_, err = newFakePostgresStore(&fakeQuerier{rows: rows}).List(ctx, "user:")
	assert.ErrorIs(t, err, boom)
	assert.True(t, rows.closed)

	rows = &fakeRows{err: boom}
	_, err = newFakePostgresStore(&fakeQuerier{rows: rows}).List(ctx, "user:")
	assert.ErrorIs(t, err, boom)
}

func TestPostgresStoreCloseWithoutPool(t *testing.T) {
	assert.NoError(t, newFakePostgresStore(&fakeQuerier{}).Close())
}
