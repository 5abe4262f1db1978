// Package cli is the operator console for recipekeeper: it creates accounts,
// checks credentials, purges expired sessions and signs users out, talking to
// the database directly with the same services the server uses.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/dmitrijs2005/recipekeeper/internal/server/store"
)

const minPasswordLength = 8

var (
	errFieldsRequired   = errors.New("email and password are required")
	errPasswordMismatch = errors.New("passwords don't match")
	errPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

type Accounts interface {
	Register(ctx context.Context, email, password string, name *string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

type Directory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Sessions interface {
	SweepExpired(ctx context.Context) (int64, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

type App struct {
	accounts Accounts
	users    Directory
	sessions Sessions

	reader *bufio.Reader
	out    io.Writer

	store *store.Store
	repos repomanager.RepositoryManager
}

func NewApp(c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stderr, level)

	st := store.New(store.Options{
		DSN:             c.DatabaseDSN,
		MaxConns:        2,
		MinConns:        0,
		MaxConnLifetime: c.DBMaxConnLifetime,
		ConnectRetries:  c.DBConnectRetries,
	}, logger)
	repos := repomanager.NewPostgresRepositoryManager()

	users := services.NewUserDirectory(st, repos)

	return &App{
		accounts: services.NewAuthService(users, cryptox.NewDefaultHasher(), logger),
		users:    users,
		sessions: services.NewSessionService(st, repos, c.SessionDuration, logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		store:    st,
		repos:    repos,
	}, nil
}

// Run opens the store and then either executes command once or, when
// command is empty, starts the interactive console.
func (app *App) Run(ctx context.Context, command string) error {
	if app.store != nil {
		defer app.store.Close()

		if err := app.store.Open(ctx); err != nil {
			return err
		}
		db, err := app.store.DB(ctx)
		if err != nil {
			return err
		}
		if err := app.repos.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
	}

	if command != "" {
		if err := runCommand(ctx, app, command); err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}
		return nil
	}

	printlnFn(helpText)
	runREPL(ctx, app, app.reader)
	return nil
}

func (app *App) readPassword(prompt string) (string, error) {
	pw, err := GetPassword(prompt, app.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (app *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(app.reader, "Email", app.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(app.reader, "Name (optional)", app.out)
	if err != nil {
		return err
	}
	password, err := app.readPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := app.readPassword("Confirm password")
	if err != nil {
		return err
	}

	switch {
	case email == "" || password == "":
		return errFieldsRequired
	case password != confirm:
		return errPasswordMismatch
	case utf8.RuneCountInString(password) < minPasswordLength:
		return errPasswordTooShort
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	u, err := app.accounts.Register(ctx, email, password, namePtr)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return fmt.Errorf("an account with email %s already exists", email)
		}
		return err
	}

	printlnFn("Registered user", u.ID)
	return nil
}

// Verify checks a password without issuing a session.
func (app *App) Verify(ctx context.Context) error {
	email, err := GetSimpleText(app.reader, "Email", app.out)
	if err != nil {
		return err
	}
	password, err := app.readPassword("Password")
	if err != nil {
		return err
	}

	u, err := app.accounts.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			printlnFn("Invalid email or password")
			return nil
		}
		return err
	}

	printlnFn("Credentials valid for user", u.ID)
	return nil
}

func (app *App) Sweep(ctx context.Context) error {
	n, err := app.sessions.SweepExpired(ctx)
	if err != nil {
		return err
	}
	printlnFn("Expired sessions removed:", n)
	return nil
}

// Revoke signs a user out of every session.
func (app *App) Revoke(ctx context.Context) error {
	email, err := GetSimpleText(app.reader, "Email", app.out)
	if err != nil {
		return err
	}

	u, err := app.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such user:", email)
			return nil
		}
		return err
	}

	n, err := app.sessions.DeleteAllForUser(ctx, u.ID)
	if errors.Is(err, common.ErrorNotFound) {
		printlnFn("No such user:", email)
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn("Sessions revoked:", n)
	return nil
}
