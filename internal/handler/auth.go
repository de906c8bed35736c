package handler

import (
    "context"             // context with cancellation for DB calls
    "errors"              // sentinel error matching
    "fmt"                 // user-facing message formatting
    "net/http"            // HTTP status codes and cookie type
    "strings"             // input normalization
    "time"                // timeouts for DB calls, cookie lifetimes

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/miravel/authportal/internal/config"
    "github.com/miravel/authportal/internal/middleware"
    "github.com/miravel/authportal/internal/queue"
    "github.com/miravel/authportal/internal/repository"
    queue_publisher "github.com/miravel/authportal/internal/service"
    "github.com/miravel/authportal/internal/session"
    "github.com/miravel/authportal/internal/utils"
)

// loginFailedMsg is the single message for every login failure.  Unknown
// email and wrong password must be indistinguishable to the caller.
const loginFailedMsg = "invalid email or password"

// dummyBcryptHash is a valid bcrypt hash compared against when the email is
// unknown, so both login failure paths cost one hash verification.
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthHandler bundles dependencies for the register/login/logout endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions session.Store
	Events   queue_publisher.Publisher // nil disables event publication
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, sessions session.Store, events queue_publisher.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register: create the user record.  Registration does NOT establish a
// session; the user logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateRegistration(req.Username, req.Email, req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if h.Events != nil {
		_ = h.Events.UserRegistered(ctx, queue.UserRegisteredEvent{
			UserID:       uid,
			Username:     req.Username,
			Email:        req.Email,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": fmt.Sprintf("Account has been created for %s! You are now able to log in.", req.Username),
	})
}

// Login: verify credentials and establish a session bound to the user id.
// The remember flag selects the long session lifetime and a persistent
// cookie.  Both failure modes return the byte-identical generic body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a hash comparison anyway so this path costs the same
			// as a wrong password.
			utils.VerifyPassword(dummyBcryptHash, req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": loginFailedMsg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": loginFailedMsg})
	}

	sess, err := h.Sessions.Create(ctx, u.ID, req.Remember)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	h.writeSessionCookie(c, sess)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged in",
		"user":    userPart{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

// Logout: destroy the session server-side and expire the cookie.  A request
// without a live session still succeeds; logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if cookie, err := c.Cookie(middleware.CookieName); err == nil && cookie.Value != "" {
		if err := h.Sessions.Destroy(ctx, cookie.Value); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	}
	clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// writeSessionCookie sets the opaque session cookie.  Without remember the
// cookie has no MaxAge and dies with the browser session; with remember it
// persists for the long session lifetime.
func (h *AuthHandler) writeSessionCookie(c echo.Context, sess session.Session) {
	cookie := &http.Cookie{
		Name:     middleware.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Remember {
		cookie.MaxAge = h.Cfg.RememberTTLDays * 24 * 60 * 60
	}
	c.SetCookie(cookie)
}

// clearSessionCookie overwrites the session cookie with an expired one.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// validateRegistration applies the form-level constraints.  Returns an
// inline message for the first violation, or "" when the input is valid.
func validateRegistration(username, email, password string) string {
	if username == "" {
		return "username required"
	}
	if email == "" || !strings.Contains(email, "@") {
		return "valid email required"
	}
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}
