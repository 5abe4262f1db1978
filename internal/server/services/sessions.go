package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// DefaultSessionDuration is the lifetime of a session when none is configured.
const DefaultSessionDuration = 30 * 24 * time.Hour

// SessionService manages login sessions. Expiry is enforced on read: an
// expired session is deleted the first time it is looked up, and SweepExpired
// clears the rest in bulk.
type SessionService struct {
	store    DBProvider
	repos    repomanager.RepositoryManager
	duration time.Duration
	logger   logging.Logger

	now   func() time.Time
	newID func() (string, error)
}

// NewSessionService builds a SessionService. A non-positive duration falls
// back to DefaultSessionDuration.
func NewSessionService(st DBProvider, m repomanager.RepositoryManager, duration time.Duration, l logging.Logger) *SessionService {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &SessionService{
		store:    st,
		repos:    m,
		duration: duration,
		logger:   l.With("module", "sessions"),
		now:      time.Now,
		newID:    func() (string, error) { return common.MakeRandHexString(common.SessionIDBytes) },
	}
}

// Duration is the lifetime given to new sessions.
func (s *SessionService) Duration() time.Duration {
	return s.duration
}

// Create issues a new session for userID that expires Duration from now.
func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating session id: %w", err)
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.duration),
	}
	if err := s.repos.Sessions(db).Create(ctx, session); err != nil {
		return nil, storeErr("create session", err)
	}

	metrics.RecordSessionCreated()
	s.logger.Debug(ctx, "session created", "user_id", userID, "expires_at", session.ExpiresAt)
	return session, nil
}

// FetchWithUser resolves id to its session and owner. It returns all nils
// when the session is unknown or expired; an expired session is deleted on
// the way out. Only store failures produce an error.
func (s *SessionService) FetchWithUser(ctx context.Context, id string) (*models.Session, *models.User, error) {
	if id == "" {
		metrics.RecordSessionLookup(metrics.LookupMiss)
		return nil, nil, nil
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		metrics.RecordSessionLookup(metrics.LookupError)
		return nil, nil, err
	}

	repo := s.repos.Sessions(db)
	session, user, err := repo.FindWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.RecordSessionLookup(metrics.LookupMiss)
			return nil, nil, nil
		}
		metrics.RecordSessionLookup(metrics.LookupError)
		return nil, nil, storeErr("find session", err)
	}

	if session.ExpiredAt(s.now()) {
		metrics.RecordSessionLookup(metrics.LookupExpired)
		n, err := repo.Delete(ctx, id)
		if err != nil {
			s.logger.Warn(ctx, "failed to delete expired session", "user_id", session.UserID, "error", err)
		} else {
			metrics.RecordSessionsRemoved(metrics.ReasonExpired, n)
		}
		return nil, nil, nil
	}

	metrics.RecordSessionLookup(metrics.LookupHit)
	return session, user, nil
}

// Delete removes a session. Unknown identifiers are ignored.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		return err
	}
	n, err := s.repos.Sessions(db).Delete(ctx, id)
	if err != nil {
		return storeErr("delete session", err)
	}

	metrics.RecordSessionsRemoved(metrics.ReasonLogout, n)
	return nil
}

// DeleteAllForUser signs userID out everywhere and reports how many sessions
// were removed. The owner lookup and the delete share one transaction, so an
// unknown user yields common.ErrorNotFound and removes nothing.
func (s *SessionService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if _, err = s.repos.Users(tx).GetByID(ctx, userID); err != nil {
			return err
		}
		n, err = s.repos.Sessions(tx).DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, err
		}
		return 0, storeErr("revoke sessions", err)
	}

	metrics.RecordSessionsRemoved(metrics.ReasonRevoke, n)
	s.logger.Info(ctx, "sessions revoked", "user_id", userID, "count", n)
	return n, nil
}

// SweepExpired deletes every session that expired before now and returns
// the number removed.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.repos.Sessions(db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storeErr("sweep sessions", err)
	}

	metrics.RecordSessionsRemoved(metrics.ReasonSweep, n)
	return n, nil
}
