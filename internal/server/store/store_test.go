package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{DSN: "postgres://test/recipes", ConnectRetries: 3, RetryBase: time.Millisecond}
}

// fakeOpener hands out a sqlmock handle after failing the first failures calls.
type fakeOpener struct {
	failures int32
	calls    atomic.Int32
	released atomic.Int32
	mock     sqlmock.Sqlmock
	db       *sql.DB
}

func newFakeOpener(t *testing.T, failures int32) *fakeOpener {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return &fakeOpener{failures: failures, mock: mock, db: db}
}

func (f *fakeOpener) open(ctx context.Context, opts Options) (*sql.DB, func(), error) {
	if n := f.calls.Add(1); n <= f.failures {
		return nil, nil, errors.New("connection refused")
	}
	return f.db, func() { f.released.Add(1) }, nil
}

func newTestStore(t *testing.T, opts Options, f *fakeOpener) *Store {
	t.Helper()
	s := New(opts, logging.Nop())
	s.open = f.open
	return s
}

func TestOpen_RetriesThenSucceeds(t *testing.T) {
	f := newFakeOpener(t, 2)
	s := newTestStore(t, testOptions(), f)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, int32(3), f.calls.Load())

	db, err := s.DB(context.Background())
	require.NoError(t, err)
	assert.Same(t, f.db, db)
}

func TestOpen_GivesUp(t *testing.T) {
	f := newFakeOpener(t, 100)
	s := newTestStore(t, testOptions(), f)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, int32(4), f.calls.Load(), "one attempt plus three retries")
}

func TestOpen_PermanentErrorNotRetried(t *testing.T) {
	s := New(testOptions(), logging.Nop())
	var calls int
	s.open = func(context.Context, Options) (*sql.DB, func(), error) {
		calls++
		return nil, nil, &permanentError{err: errors.New("cannot parse dsn")}
	}

	err := s.Open(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, 1, calls)
}

func TestOpen_EmptyDSN(t *testing.T) {
	f := newFakeOpener(t, 0)
	s := newTestStore(t, Options{}, f)

	err := s.Open(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Zero(t, f.calls.Load())
}

func TestOpen_OnceUnderConcurrency(t *testing.T) {
	f := newFakeOpener(t, 0)
	s := newTestStore(t, testOptions(), f)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DB(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
}

func TestPing(t *testing.T) {
	f := newFakeOpener(t, 0)
	s := newTestStore(t, testOptions(), f)

	f.mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	f.mock.ExpectPing().WillReturnError(errors.New("gone"))
	err := s.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestClose(t *testing.T) {
	f := newFakeOpener(t, 0)
	s := newTestStore(t, testOptions(), f)
	require.NoError(t, s.Open(context.Background()))

	f.mock.ExpectClose()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")
	assert.Equal(t, int32(1), f.released.Load())

	_, err := s.DB(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreClosed)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	err = s.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestClose_NeverOpened(t *testing.T) {
	f := newFakeOpener(t, 0)
	s := newTestStore(t, testOptions(), f)

	require.NoError(t, s.Close())

	err := s.Open(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreClosed)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, int32(1), f.released.Load(), "handle opened after close is released")
}
