package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/domain"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

const sessionKey = "auth_session"

// SessionMiddleware resolves the session cookie into a domain.Session.
type SessionMiddleware struct {
	cookies  *CookieManager
	sessions SessionStore
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(cookies *CookieManager, sessions SessionStore) *SessionMiddleware {
	return &SessionMiddleware{cookies: cookies, sessions: sessions}
}

// Handle enforces an authenticated session for protected routes. Every
// failure mode (missing cookie, bad signature, expired or garbled session)
// resolves to unauthenticated.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	value := c.Cookies(m.cookies.CookieName())
	if value == "" {
		return apperrors.NewUnauthorized("login required")
	}
	sessionID, err := m.cookies.Parse(value)
	if err != nil {
		return apperrors.NewUnauthorized("invalid session")
	}
	session, err := m.sessions.Get(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperrors.NewUnauthorized("session expired")
		}
		return apperrors.MapError(err)
	}
	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}

// RequireReviewer gates review routes: the role must be privileged and the
// step-up PIN challenge completed. A privileged session that has not passed
// the challenge is told so distinctly, so the front-end can send it to the
// PIN prompt instead of the login page.
func RequireReviewer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("login required")
		}
		if !session.Role.Privileged() {
			return apperrors.NewForbidden("reviewer role required")
		}
		if !session.StepUpVerified {
			return apperrors.NewForbidden("step-up verification required")
		}
		return c.Next()
	}
}
