package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/tokens"
)

func newTestEcho(codec *tokens.Codec) *echo.Echo {
	e := echo.New()
	whoami := func(c echo.Context) error {
		ident, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"userId": ident.UserID, "role": ident.Role})
	}
	e.GET("/private", whoami, RequireAuth(codec))
	e.GET("/admin", whoami, RequireAdmin(codec)...)
	e.GET("/role-only", whoami, RequireRole(models.RoleAdmin))
	return e
}

func doGet(e *echo.Echo, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	codec := tokens.NewCodec([]byte("test-jwt-secret"), time.Hour)
	e := newTestEcho(codec)

	token, _, err := codec.Issue(5, models.RoleUser)
	require.NoError(t, err)

	t.Run("no token", func(t *testing.T) {
		rec := doGet(e, "/private", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgNoToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := doGet(e, "/private", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgInvalidToken)
	})

	t.Run("token from another secret", func(t *testing.T) {
		foreign, _, err := tokens.NewCodec([]byte("other"), time.Hour).Issue(5, models.RoleUser)
		require.NoError(t, err)
		rec := doGet(e, "/private", "Bearer "+foreign)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := doGet(e, "/private", "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"userId":5,"role":"USER"}`, rec.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	codec := tokens.NewCodec([]byte("test-jwt-secret"), time.Hour)
	e := newTestEcho(codec)

	userToken, _, err := codec.Issue(5, models.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := codec.Issue(6, models.RoleAdmin)
	require.NoError(t, err)

	rec := doGet(e, "/admin", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAdminOnly)

	rec = doGet(e, "/admin", "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":6,"role":"ADMIN"}`, rec.Body.String())

	rec = doGet(e, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGet(e, "/role-only", "Bearer "+adminToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
