package router // package router defines how HTTP routes are registered for the API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/miravel/authportal/internal/handler"    // handlers implementing the auth workflow
	"github.com/miravel/authportal/internal/middleware" // session middleware guarding account routes
	"github.com/miravel/authportal/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the registration, login, logout and password-reset
// routes.  None of these require an existing session: register and login
// create one, logout tolerates a missing one, and the reset flow is for
// users who cannot log in at all.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.ResetHandler) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)
	e.POST("/logout", a.Logout)
	// Request a reset link by email.  Always answers 202 with the same body.
	e.POST("/reset_password", r.Request)
	// Probe a token before showing the new-password form.
	e.GET("/reset_password/:token", r.Check)
	// Redeem a token and set the new password.
	e.POST("/reset_password/:token", r.Confirm)
}

// RegisterAccount registers the authenticated profile routes.  The session
// middleware runs before either handler, so an unauthenticated request is
// rejected with a typed 401 and never reaches them.
func RegisterAccount(e *echo.Echo, h *handler.AccountHandler, store session.Store) {
	g := e.Group("/account")
	g.Use(middleware.SessionAuth(store))
	g.GET("", h.Show)
	g.POST("", h.Update)
}

// errorMessages maps the status codes rendered by the uniform error view to
// their short messages.
var errorMessages = map[int]string{
	http.StatusNotFound:              "Page not found.",
	http.StatusForbidden:             "Access restricted.",
	http.StatusRequestEntityTooLarge: "Large payload transfer.",
	http.StatusInternalServerError:   "Internal server error.",
}

// HTTPErrorHandler renders every error that escapes a handler as a uniform
// JSON body carrying the numeric code and a short message.  Unknown codes
// fall back to 500.  Set it on the Echo instance at startup.
func HTTPErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	msg, ok := errorMessages[code]
	if !ok {
		msg = http.StatusText(code)
	}
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"code": code, "error": msg})
}
