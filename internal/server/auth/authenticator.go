// Package auth turns an inbound session token into the identity a request
// runs as. Transports read the token (cookie, gRPC metadata), call
// Authenticate, and thread the resulting Identity through the context.
package auth

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// SessionResolver resolves a session id to its session and owner. It returns
// all nils for unknown or expired sessions. *services.SessionService
// implements it.
type SessionResolver interface {
	FetchWithUser(ctx context.Context, id string) (*models.Session, *models.User, error)
}

// Identity is the authenticated principal of a request.
type Identity struct {
	User      models.SafeUser
	SessionID string
}

// Result is the outcome of Authenticate. Identity is nil when the request is
// unauthenticated. ClearToken asks the transport to drop the client's token
// because it no longer names a live session.
type Result struct {
	Identity   *Identity
	ClearToken bool
}

type Authenticator struct {
	sessions SessionResolver
	logger   logging.Logger
}

func NewAuthenticator(s SessionResolver, l logging.Logger) *Authenticator {
	return &Authenticator{sessions: s, logger: l.With("module", "authenticator")}
}

// Authenticate never fails the request. A store error leaves the request
// unauthenticated and keeps the token, since the session may still be valid.
func (a *Authenticator) Authenticate(ctx context.Context, token string) Result {
	if token == "" {
		return Result{}
	}

	session, user, err := a.sessions.FetchWithUser(ctx, token)
	if err != nil {
		a.logger.Error(ctx, "session lookup failed", "error", err)
		return Result{}
	}
	if session == nil || user == nil {
		return Result{ClearToken: true}
	}

	return Result{Identity: &Identity{User: user.Safe(), SessionID: session.ID}}
}
