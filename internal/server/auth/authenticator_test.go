package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	session *models.Session
	user    *models.User
	err     error

	calls  int
	lastID string
}

func (s *stubResolver) FetchWithUser(_ context.Context, id string) (*models.Session, *models.User, error) {
	s.calls++
	s.lastID = id
	return s.session, s.user, s.err
}

func liveResolver() *stubResolver {
	name := "Ada"
	return &stubResolver{
		session: &models.Session{ID: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		user:    &models.User{ID: "u1", Email: "ada@example.com", PasswordHash: "digest", Name: &name},
	}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		resolver  *stubResolver
		wantIdent bool
		wantClear bool
		wantCalls int
	}{
		{name: "no token", token: "", resolver: liveResolver(), wantCalls: 0},
		{name: "valid", token: "tok", resolver: liveResolver(), wantIdent: true, wantCalls: 1},
		{name: "unknown or expired", token: "stale", resolver: &stubResolver{}, wantClear: true, wantCalls: 1},
		{
			name:      "store unavailable",
			token:     "tok",
			resolver:  &stubResolver{err: errors.Join(common.ErrStoreUnavailable, errors.New("dial"))},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthenticator(tt.resolver, logging.Nop())

			res := a.Authenticate(context.Background(), tt.token)

			assert.Equal(t, tt.wantClear, res.ClearToken)
			assert.Equal(t, tt.wantCalls, tt.resolver.calls)
			if !tt.wantIdent {
				assert.Nil(t, res.Identity)
				return
			}
			require.NotNil(t, res.Identity)
			assert.Equal(t, "tok", tt.resolver.lastID)
			assert.Equal(t, "tok", res.Identity.SessionID)
			assert.Equal(t, "u1", res.Identity.User.ID)
			assert.Equal(t, "ada@example.com", res.Identity.User.Email)
		})
	}
}

func TestAuthenticate_IdentityHasNoDigest(t *testing.T) {
	a := NewAuthenticator(liveResolver(), logging.Nop())

	res := a.Authenticate(context.Background(), "tok")
	require.NotNil(t, res.Identity)

	blob, err := json.Marshal(res.Identity)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "digest")
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok)

	_, ok = IdentityFromContext(WithIdentity(ctx, nil))
	assert.False(t, ok)

	want := &Identity{User: models.SafeUser{ID: "u1"}, SessionID: "s1"}
	got, ok := IdentityFromContext(WithIdentity(ctx, want))
	require.True(t, ok)
	assert.Same(t, want, got)
}
