package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"loanledger/internal/auth"
	"loanledger/internal/store"
)

const (
	sessionContextKey = "loanledger.session"
	claimsContextKey  = "loanledger.claims"
)

// Auth verifies the bearer token and binds the request to the caller's live
// session. A valid token without a live session means the user signed out (or
// the process restarted); the client must sign in again.
func Auth(tokens *auth.Manager, sessions *store.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const prefix = "Bearer "
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, prefix) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			claims, err := tokens.VerifyAccessToken(strings.TrimPrefix(header, prefix))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			sess, ok := sessions.Session(claims.UID)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no active session, sign in again"})
			}

			SetSession(c, sess, claims)
			return next(c)
		}
	}
}

// SetSession attaches the session and claims to the request context. Exposed
// for handler tests that bypass the full token round-trip.
func SetSession(c echo.Context, s *store.Session, claims *auth.Claims) {
	c.Set(sessionContextKey, s)
	c.Set(claimsContextKey, claims)
}

func SessionFrom(c echo.Context) *store.Session {
	s, _ := c.Get(sessionContextKey).(*store.Session)
	return s
}

func ClaimsFrom(c echo.Context) *auth.Claims {
	cl, _ := c.Get(claimsContextKey).(*auth.Claims)
	return cl
}
