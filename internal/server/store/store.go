// Package store owns the process-wide PostgreSQL handle. A Store is built
// once at startup, handed to every service that needs the database, opened
// lazily on first use and closed at shutdown.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

// Options configures the connection pool and the startup retry policy.
type Options struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	ConnectRetries  uint64
	RetryBase       time.Duration
	PingTimeout     time.Duration
}

// permanentError marks a connect failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

// opener dials the database and returns the handle plus a release func.
type opener func(ctx context.Context, opts Options) (*sql.DB, func(), error)

// Store is safe for concurrent use.
type Store struct {
	opts   Options
	logger logging.Logger
	open   opener

	once    sync.Once
	openErr error

	mu      sync.Mutex
	db      *sql.DB
	release func()
	closed  bool
}

// New returns an unopened Store.
func New(opts Options, l logging.Logger) *Store {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	return &Store{opts: opts, logger: l.With("module", "store"), open: openPgx}
}

// Open connects to the database, retrying with exponential backoff up to
// ConnectRetries extra attempts. Only the first call does any work; later
// calls return the first call's result.
func (s *Store) Open(ctx context.Context) error {
	s.once.Do(func() {
		s.openErr = s.connect(ctx)
	})
	return s.openErr
}

func (s *Store) connect(ctx context.Context) error {
	if s.opts.DSN == "" {
		return fmt.Errorf("%w: database DSN is empty", common.ErrStoreUnavailable)
	}

	backoff := retry.WithMaxRetries(s.opts.ConnectRetries, retry.NewExponential(s.opts.RetryBase))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		db, release, err := s.open(ctx, s.opts)
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if err != nil {
			s.logger.Warn(ctx, "database connect failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			release()
			return common.ErrStoreClosed
		}
		s.db, s.release = db, release
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.logger.Info(ctx, "database connected", "attempts", attempt)
	return nil
}

// DB returns the shared handle, opening the store on first use.
func (s *Store) DB(ctx context.Context) (*sql.DB, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, common.ErrStoreClosed)
	}
	return s.db, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.DB(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the connection pool. It is safe to call more than once and
// on a Store that was never opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.release()
	s.db, s.release = nil, nil
	return err
}

// openPgx builds a pgx pool and exposes it through database/sql so the
// repositories and goose can share it.
func openPgx(ctx context.Context, opts Options) (*sql.DB, func(), error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, nil, &permanentError{err: err}
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = opts.MinConns
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return stdlib.OpenDBFromPool(pool), pool.Close, nil
}
