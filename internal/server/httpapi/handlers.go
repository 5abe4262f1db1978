package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Accounts registers users and checks credentials. *services.AuthService
// implements it.
type Accounts interface {
	Register(ctx context.Context, email, password string, name *string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// Sessions issues and ends sessions. *services.SessionService implements it.
type Sessions interface {
	Create(ctx context.Context, userID string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	accounts Accounts
	sessions Sessions
	store    Pinger
	cookies  *CookieManager
	logger   logging.Logger
}

func NewHandler(a Accounts, s Sessions, p Pinger, cookies *CookieManager, l logging.Logger) *Handler {
	return &Handler{
		accounts: a,
		sessions: s,
		store:    p,
		cookies:  cookies,
		logger:   l.With("module", "http"),
	}
}

// Home reports who the caller is; user is null when signed out.
func (h *Handler) Home(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.User})
}

// LoginPage and RegisterPage send signed-in users home.
func (h *Handler) LoginPage(c *gin.Context) {
	if _, ok := identityFrom(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": "login", "fields": []string{"email", "password"}})
}

func (h *Handler) RegisterPage(c *gin.Context) {
	if _, ok := identityFrom(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": "register", "fields": []string{"name", "email", "password", "confirmPassword"}})
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.fail(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.internal(c, "login failed", err)
		return
	}

	h.startSession(c, u)
}

func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, http.StatusBadRequest, registerMessage(err))
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), form.Email, form.Password, form.namePtr())
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			h.fail(c, http.StatusBadRequest, msgAccountExists)
			return
		}
		h.internal(c, "registration failed", err)
		return
	}

	h.startSession(c, u)
}

// Logout always succeeds for the caller: the cookie is cleared even if the
// session could not be deleted.
func (h *Handler) Logout(c *gin.Context) {
	if id, ok := identityFrom(c); ok {
		if err := h.sessions.Delete(c.Request.Context(), id.SessionID); err != nil {
			h.logger.Error(c.Request.Context(), "logout failed to delete session",
				"error", err, "request_id", c.GetString(requestIDKey))
		}
	}
	h.cookies.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) startSession(c *gin.Context, u *models.User) {
	s, err := h.sessions.Create(c.Request.Context(), u.ID)
	if err != nil {
		h.internal(c, "session creation failed", err)
		return
	}
	h.cookies.Set(c, s.ID)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg, "request_id": c.GetString(requestIDKey)})
}

// internal logs err in full and sends the client a generic message.
func (h *Handler) internal(c *gin.Context, msg string, err error) {
	h.logger.Error(c.Request.Context(), msg, "error", err, "request_id", c.GetString(requestIDKey))
	if errors.Is(err, common.ErrStoreUnavailable) {
		h.fail(c, http.StatusServiceUnavailable, msgServiceUnavailable)
		return
	}
	h.fail(c, http.StatusInternalServerError, msgInternal)
}
