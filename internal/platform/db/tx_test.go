package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	execs      []string
	execErr    error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("SELECT 1"), f.execErr
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type starter struct {
	tx  *fakeTx
	err error
}

func (s starter) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	tx := &fakeTx{}
	err := WithTx(context.Background(), starter{tx: tx}, pgx.TxOptions{}, func(DBTX) error { return nil })
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	boom := errors.New("boom")
	err := WithTx(context.Background(), starter{tx: tx}, pgx.TxOptions{}, func(DBTX) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestWithTxBeginFailure(t *testing.T) {
	down := errors.New("connection refused")
	called := false
	err := WithTx(context.Background(), starter{err: down}, pgx.TxOptions{}, func(DBTX) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, down)
	assert.False(t, called)
}

func TestMigrateLocksThenAppliesSchema(t *testing.T) {
	tx := &fakeTx{}
	require.NoError(t, Migrate(context.Background(), starter{tx: tx}))
	require.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0], "pg_advisory_xact_lock")
	assert.Equal(t, Schema(), tx.execs[1])
	assert.True(t, tx.committed)

	failing := &fakeTx{execErr: errors.New("syntax error")}
	assert.Error(t, Migrate(context.Background(), starter{tx: failing}))
	assert.True(t, failing.rolledBack)
}
