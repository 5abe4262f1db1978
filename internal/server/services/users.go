package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// UserDirectory looks up and creates accounts.
type UserDirectory struct {
	store DBProvider
	repos repomanager.RepositoryManager
}

func NewUserDirectory(st DBProvider, m repomanager.RepositoryManager) *UserDirectory {
	return &UserDirectory{store: st, repos: m}
}

// FindByEmail returns common.ErrorNotFound when no account uses email.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	db, err := d.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	u, err := d.repos.Users(db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, storeErr("find user", err)
	}
	return u, nil
}

// Create stores a new account. A taken email yields common.ErrAlreadyExists,
// including when a concurrent registration wins the race.
func (d *UserDirectory) Create(ctx context.Context, email, passwordHash string, name *string) (*models.User, error) {
	db, err := d.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	u, err := d.repos.Users(db).Create(ctx, &models.User{Email: email, PasswordHash: passwordHash, Name: name})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, storeErr("create user", err)
	}
	return u, nil
}
