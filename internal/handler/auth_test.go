package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miravel/authportal/internal/config"
	"github.com/miravel/authportal/internal/middleware"
	"github.com/miravel/authportal/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		BaseURL:         "http://portal.test",
		SecretKey:       "handler-test-secret",
		BcryptCost:      bcrypt.MinCost,
		ResetTTLMin:     30,
		SessionTTLHours: 12,
		RememberTTLDays: 30,
	}
}

// postJSON runs a handler against a JSON request and returns the recorder.
func postJSON(t *testing.T, h echo.HandlerFunc, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestRegister_CreatesUserWithoutSession(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	h := NewAuthHandler(testConfig(), users, sessions, nil)

	rec := postJSON(t, h.Register, "/register",
		`{"username":"ada","email":"Ada@Example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "Account has been created for ada")

	u, err := users.GetByEmail(t.Context(), "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2hunter2", u.PasswordHash)
	require.True(t, utils.VerifyPassword(u.PasswordHash, "hunter2hunter2"))

	// Registration must not log the user in.
	require.Empty(t, sessions.sessions)
}

func TestRegister_DuplicateEmailRejectedWithoutPartialRow(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := NewAuthHandler(testConfig(), users, newFakeSessionStore(), nil)

	rec := postJSON(t, h.Register, "/register",
		`{"username":"ada","email":"ada@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Register, "/register",
		`{"username":"grace","email":"ada@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email already exists")
	require.Len(t, users.users, 1)

	rec = postJSON(t, h.Register, "/register",
		`{"username":"ada","email":"other@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "username already exists")
	require.Len(t, users.users, 1)
}

func TestRegister_ValidationFailures(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(testConfig(), newFakeUserStore(), newFakeSessionStore(), nil)

	for name, body := range map[string]string{
		"missing username": `{"email":"a@b.c","password":"longenough"}`,
		"bad email":        `{"username":"x","email":"nope","password":"longenough"}`,
		"short password":   `{"username":"x","email":"a@b.c","password":"short"}`,
	} {
		rec := postJSON(t, h.Register, "/register", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	hash, err := utils.HashPassword("the-right-password", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(t.Context(), "ada", "ada@example.com", hash)
	require.NoError(t, err)

	h := NewAuthHandler(testConfig(), users, newFakeSessionStore(), nil)

	wrongPass := postJSON(t, h.Login, "/login",
		`{"email":"ada@example.com","password":"the-wrong-password"}`)
	unknownEmail := postJSON(t, h.Login, "/login",
		`{"email":"nobody@example.com","password":"the-wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
}

func TestLogin_SuccessEstablishesSession(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	hash, err := utils.HashPassword("the-right-password", bcrypt.MinCost)
	require.NoError(t, err)
	uid, err := users.Create(t.Context(), "ada", "ada@example.com", hash)
	require.NoError(t, err)

	sessions := newFakeSessionStore()
	h := NewAuthHandler(testConfig(), users, sessions, nil)

	rec := postJSON(t, h.Login, "/login",
		`{"email":"ada@example.com","password":"the-right-password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, middleware.CookieName)
	sess, err := sessions.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	require.Equal(t, uid, sess.UserID)
	require.False(t, sess.Remember)
	// Non-remember logins get a browser-session cookie.
	require.Equal(t, 0, cookie.MaxAge)
}

func TestLogin_RememberExtendsCookie(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	hash, err := utils.HashPassword("the-right-password", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(t.Context(), "ada", "ada@example.com", hash)
	require.NoError(t, err)

	sessions := newFakeSessionStore()
	h := NewAuthHandler(testConfig(), users, sessions, nil)

	rec := postJSON(t, h.Login, "/login",
		`{"email":"ada@example.com","password":"the-right-password","remember":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, middleware.CookieName)
	require.Equal(t, 30*24*60*60, cookie.MaxAge)
	sess, err := sessions.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	require.True(t, sess.Remember)
}

func TestLogout_DestroysSessionAndIsIdempotent(t *testing.T) {
	t.Parallel()

	sessions := newFakeSessionStore()
	sess, err := sessions.Create(t.Context(), 1, false)
	require.NoError(t, err)

	h := NewAuthHandler(testConfig(), newFakeUserStore(), sessions, nil)

	rec := postJSON(t, h.Logout, "/logout", "",
		&http.Cookie{Name: middleware.CookieName, Value: sess.ID})
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err = sessions.Get(t.Context(), sess.ID)
	require.Error(t, err)

	// No cookie at all still succeeds.
	rec = postJSON(t, h.Logout, "/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

// findCookie pulls a named cookie out of the recorded response.
func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
