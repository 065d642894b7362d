package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzalendo/customer-records/internal/auth"
	"github.com/mzalendo/customer-records/internal/models"
)

var testSecret = []byte("test-secret")

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.LoadHTMLGlob("../../templates/*.html")
	return r
}

func mintFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.Mint(testSecret, user)
	require.NoError(t, err)
	return token
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newTestEngine()
	var seen *Identity
	r.GET("/private", RequireAuth(testSecret), func(c *gin.Context) {
		seen = CurrentIdentity(c)
		c.String(http.StatusOK, "ok")
	})

	t.Run("no cookie redirects to login", func(t *testing.T) {
		w := get(r, "/private", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login/", w.Header().Get("Location"))
	})

	t.Run("garbage token redirects to login", func(t *testing.T) {
		w := get(r, "/private", "garbage")
		assert.Equal(t, http.StatusFound, w.Code)
	})

	t.Run("valid token passes and exposes the identity", func(t *testing.T) {
		token := mintFor(t, &models.User{ID: 3, Username: "wanjiku", Role: models.RoleCustomer})
		w := get(r, "/private", token)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, uint(3), seen.UserID)
		assert.Equal(t, models.RoleCustomer, seen.Role)
	})
}

func TestRequireRoles(t *testing.T) {
	r := newTestEngine()
	r.GET("/admin", RequireAuth(testSecret), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "secret dashboard")
	})

	t.Run("allowed role passes", func(t *testing.T) {
		token := mintFor(t, &models.User{ID: 1, Username: "boss", Role: models.RoleAdmin})
		w := get(r, "/admin", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disallowed role gets 403 page without the content", func(t *testing.T) {
		token := mintFor(t, &models.User{ID: 2, Username: "wanjiku", Role: models.RoleCustomer})
		w := get(r, "/admin", token)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not authorized")
		assert.NotContains(t, w.Body.String(), "secret dashboard")
		assert.Empty(t, w.Header().Get("Location"))
	})
}

func TestRedirectIfAuthenticated(t *testing.T) {
	r := newTestEngine()
	r.GET("/register", RedirectIfAuthenticated(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, "register form")
	})

	t.Run("anonymous caller sees the page", func(t *testing.T) {
		w := get(r, "/register", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("authenticated caller is sent to their dashboard", func(t *testing.T) {
		token := mintFor(t, &models.User{ID: 1, Username: "wanjiku", Role: models.RoleCustomer})
		w := get(r, "/register", token)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/user/", w.Header().Get("Location"))
	})
}
