// Package services contains the server's account and session logic:
// SessionService issues, resolves and expires login sessions, UserDirectory
// looks up and creates accounts, and AuthService implements register and
// login on top of both.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

// DBProvider yields the shared database handle. *store.Store implements it.
type DBProvider interface {
	DB(ctx context.Context) (*sql.DB, error)
}

// storeErr prefixes err with op and marks it as common.ErrStoreUnavailable.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}
