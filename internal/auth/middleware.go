package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// AdminCookie holds the signed admin session.
const AdminCookie = "admin_session"

const claimsKey = "auth.claims"

type Middleware struct {
	verifier *Verifier
	admins   *Admins
	sessions *AdminSessions
}

func NewMiddleware(verifier *Verifier, admins *Admins, sessions *AdminSessions) *Middleware {
	return &Middleware{verifier: verifier, admins: admins, sessions: sessions}
}

// Optional attaches the caller's claims when a valid bearer token is
// present. Requests without one, or with a bad one, continue anonymously.
func (m *Middleware) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := m.authenticate(c); err == nil {
				c.Set(claimsKey, claims)
			}
			return next(c)
		}
	}
}

func (m *Middleware) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.authenticate(c)
			if err != nil {
				logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("rejected request without valid token")
				return unauthorized(c)
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin admits allow-listed users holding a live admin session cookie.
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.authenticate(c)
			if err != nil {
				return unauthorized(c)
			}
			c.Set(claimsKey, claims)

			if !m.admins.IsAdmin(claims.Email) {
				logging.Ctx(c.Request().Context()).Warn().Str("user_id", claims.UserID()).Msg("admin access denied")
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "forbidden",
					Message: "Administrator access required",
					Code:    http.StatusForbidden,
				})
			}

			cookie, err := c.Cookie(AdminCookie)
			if err != nil || !m.sessions.Valid(cookie.Value, claims.UserID()) {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "admin_password_required",
					Message: "Admin password verification required",
					Code:    http.StatusForbidden,
				})
			}
			return next(c)
		}
	}
}

func (m *Middleware) authenticate(c echo.Context) (*Claims, error) {
	token, err := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return m.verifier.Verify(token)
}

// ClaimsFrom returns the claims attached by one of the middlewares.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "Authentication required",
		Code:    http.StatusUnauthorized,
	})
}
