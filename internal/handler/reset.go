package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/miravel/authportal/internal/config"
	"github.com/miravel/authportal/internal/mailer"
	"github.com/miravel/authportal/internal/model"
	"github.com/miravel/authportal/internal/queue"
	"github.com/miravel/authportal/internal/repository"
	queue_publisher "github.com/miravel/authportal/internal/service"
	"github.com/miravel/authportal/internal/session"
	"github.com/miravel/authportal/internal/utils"
)

// resetRequestedMsg is returned for every reset request, whether or not the
// email is registered.  Responding differently would let callers probe for
// accounts.
const resetRequestedMsg = "If that email is registered, a reset link has been sent."

// resetInvalidMsg covers expired, tampered and malformed tokens alike.
const resetInvalidMsg = "The password reset link is invalid or has expired."

// ResetHandler bundles dependencies for the password-reset endpoints.
type ResetHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions session.Store
	Mail     mailer.Sender
	Events   queue_publisher.Publisher // nil disables event publication
}

func NewResetHandler(cfg config.Config, users repository.UserStore, sessions session.Store, mail mailer.Sender, events queue_publisher.Publisher) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Users: users, Sessions: sessions, Mail: mail, Events: events}
}

type resetRequestReq struct {
	Email string `json:"email"`
}
type resetConfirmReq struct {
	Password string `json:"password"`
}

// Request: issue a reset token and mail the link.  The response body is the
// same whether or not the email exists; the mailer is only invoked when a
// user was actually found.
func (h *ResetHandler) Request(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusAccepted, echo.Map{"message": resetRequestedMsg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := utils.IssueResetToken(h.Cfg.SecretKey, u.ID, u.PasswordHash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	subject, body := mailer.ResetMessage(h.Cfg.BaseURL, token)
	if err := h.Mail.Send(ctx, u.Email, subject, body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send reset email"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"message": resetRequestedMsg})
}

// Check: report whether a token is currently redeemable so a UI can decide
// whether to show the new-password form.
func (h *ResetHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.verifyToken(ctx, c.Param("token")); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": resetInvalidMsg})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// Confirm: redeem a token, overwrite the password hash and kill every live
// session of the user.  The token itself dies implicitly because its
// fingerprint no longer matches the new hash.
func (h *ResetHandler) Confirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.verifyToken(ctx, c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": resetInvalidMsg})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	// Old cookies must not survive the credential change.
	_ = h.Sessions.DestroyAllForUser(ctx, u.ID)

	if h.Events != nil {
		_ = h.Events.PasswordChanged(ctx, queue.PasswordChangedEvent{
			UserID:    u.ID,
			ChangedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Your password has been reset! You are now able to log in.",
	})
}

// verifyToken runs the full token check: signature and age via the codec,
// then the fingerprint against the user's current password hash.  The hash
// binding is what invalidates outstanding tokens after a password change.
func (h *ResetHandler) verifyToken(ctx context.Context, token string) (model.User, error) {
	maxAge := time.Duration(h.Cfg.ResetTTLMin) * time.Minute
	uid, fp, err := utils.VerifyResetToken(h.Cfg.SecretKey, token, maxAge)
	if err != nil {
		return model.User{}, err
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return model.User{}, utils.ErrResetTokenInvalid
	}
	if fp != utils.PasswordFingerprint(u.PasswordHash) {
		return model.User{}, utils.ErrResetTokenInvalid
	}
	return u, nil
}
