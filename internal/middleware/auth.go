package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzalendo/customer-records/internal/auth"
	"github.com/mzalendo/customer-records/internal/models"
)

// SessionCookie names the cookie holding the signed session token.
const SessionCookie = "session"

const identityKey = "identity"

// Identity is the authenticated caller, resolved once per request and
// passed to handlers through the gin context.
type Identity struct {
	UserID   uint
	Username string
	Role     models.Role
}

// CurrentIdentity returns the identity stored by RequireAuth, or nil
// on unauthenticated requests.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return id
}

func sessionIdentity(c *gin.Context, secret []byte) *Identity {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return nil
	}
	claims, err := auth.Verify(secret, token)
	if err != nil {
		return nil
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
}

// RequireAuth redirects anonymous requests to the login page and
// stores the resolved identity for the wrapped handlers.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := sessionIdentity(c, secret)
		if identity == nil {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRoles renders a plain "not authorized" page when the caller's
// role is outside the allowed set. No redirect: the caller is logged
// in, just not permitted to see this page.
func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity != nil {
			for _, role := range allowed {
				if identity.Role == role {
					c.Next()
					return
				}
			}
		}
		c.HTML(http.StatusForbidden, "forbidden.html", gin.H{"Identity": identity})
		c.Abort()
	}
}

// RedirectIfAuthenticated sends already-logged-in users to their
// dashboard instead of the registration page.
func RedirectIfAuthenticated(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionIdentity(c, secret) != nil {
			c.Redirect(http.StatusFound, "/user/")
			c.Abort()
			return
		}
		c.Next()
	}
}
