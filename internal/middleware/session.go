package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/miravel/authportal/internal/session"
)

// CookieName is the name of the session cookie set at login and cleared at
// logout.  The value is an opaque session id; nothing about the user is
// stored client-side.
const CookieName = "session_id"

// SessionAuth returns an Echo middleware that resolves the session cookie
// against the store and injects the authenticated user's id into the
// request context.  Handlers behind it read the id via c.Get("user_id").
// Requests without a live session get a typed 401 JSON response; there is
// no implicit redirect, the handler never runs.
func SessionAuth(store session.Store) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(CookieName)
            if err != nil || cookie.Value == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            sess, err := store.Get(c.Request().Context(), cookie.Value)
            if err != nil {
                if errors.Is(err, session.ErrNotFound) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
            }
            c.Set("user_id", sess.UserID)
            c.Set("session_id", sess.ID)
            return next(c)
        }
    }
}
