package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// AuthService registers accounts and checks credentials. It does not issue
// sessions; callers pair a successful Login or Register with
// SessionService.Create.
type AuthService struct {
	users  *UserDirectory
	hasher *cryptox.Hasher
	logger logging.Logger

	// dummyDigest is well-formed but matches no password. Login verifies
	// against it for unknown emails so both failure paths cost one derivation.
	dummyDigest string
}

func NewAuthService(users *UserDirectory, hasher *cryptox.Hasher, l logging.Logger) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		logger:      l.With("module", "auth"),
		dummyDigest: base64.StdEncoding.EncodeToString(make([]byte, hasher.DigestLength())),
	}
}

// Register creates an account for email. Password policy is the caller's
// concern; any string, including the empty one, is hashed as given.
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (*models.User, error) {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.RecordRegistration(metrics.ResultExists)
		return nil, common.ErrAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		metrics.RecordRegistration(metrics.ResultError)
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		metrics.RecordRegistration(metrics.ResultError)
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, email, digest, name)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			metrics.RecordRegistration(metrics.ResultExists)
		} else {
			metrics.RecordRegistration(metrics.ResultError)
		}
		return nil, err
	}

	metrics.RecordRegistration(metrics.ResultSuccess)
	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login returns the account for email when password matches. An unknown
// email and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		metrics.RecordLogin(metrics.ResultError)
		return nil, err
	}

	digest := s.dummyDigest
	if u != nil {
		digest = u.PasswordHash
	}

	if !s.hasher.Verify(password, digest) || u == nil {
		metrics.RecordLogin(metrics.ResultInvalid)
		return nil, common.ErrInvalidCredentials
	}

	metrics.RecordLogin(metrics.ResultSuccess)
	return u, nil
}
