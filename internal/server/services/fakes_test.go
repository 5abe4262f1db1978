package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	sessionsrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/sessions"
	usersrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

// fastHasher keeps the digest layout but does a single PBKDF2 round.
func fastHasher() *cryptox.Hasher {
	return cryptox.NewHasher(cryptox.Params{Iterations: 1, SaltLength: 16, KeyLength: 32})
}

// staticDB hands out db, which may be nil for code paths that never touch it
// directly.
type staticDB struct {
	db  *sql.DB
	err error
}

func (p staticDB) DB(context.Context) (*sql.DB, error) { return p.db, p.err }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memUsers is an in-memory users.Repository with a unique email index.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User

	getErr    error
	createErr error
	// hideOnGet makes GetByEmail miss so Create sees the conflict, as when
	// two registrations race past the pre-check.
	hideOnGet bool
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	r.byEmail[u.Email] = &cp
	return u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byEmail[email]
	if !ok || r.hideOnGet {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

// memSessions is an in-memory sessions.Repository joined against memUsers.
type memSessions struct {
	mu    sync.Mutex
	rows  map[string]models.Session
	users *memUsers

	createErr error
	findErr   error
	deleteErr error
	sweepErr  error
}

func newMemSessions(users *memUsers) *memSessions {
	return &memSessions{rows: map[string]models.Session{}, users: users}
}

func (r *memSessions) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.rows[s.ID]; ok {
		return errors.New("duplicate session id")
	}
	s.CreatedAt = time.Now()
	r.rows[s.ID] = *s
	return nil
}

func (r *memSessions) FindWithUser(ctx context.Context, id string) (*models.Session, *models.User, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, nil, r.findErr
	}
	s, ok := r.rows[id]
	r.mu.Unlock()
	if !ok {
		return nil, nil, common.ErrorNotFound
	}
	u, err := r.users.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, nil, common.ErrorNotFound
	}
	return &s, u, nil
}

func (r *memSessions) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *memSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweepErr != nil {
		return 0, r.sweepErr
	}
	var n int64
	for id, s := range r.rows {
		if s.ExpiresAt.Before(before) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.rows {
		if s.UserID == userID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *memSessions) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok
}

func (r *memSessions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeRepoManager struct {
	users    *memUsers
	sessions *memSessions
}

func newFakeRepoManager() *fakeRepoManager {
	u := newMemUsers()
	return &fakeRepoManager{users: u, sessions: newMemSessions(u)}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository    { return m.sessions }
